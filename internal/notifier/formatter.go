package notifier

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"

	"SwingSentinel/internal/model"
)

// Fixed replies of the bot.
const (
	TextWelcome         = "🤖 <b>Multi-Asset Trading Bot</b>\n\nSelect an asset:"
	TextSelectAsset     = "Select an asset:"
	TextDataUnavailable = "❌ Market data unavailable"
	TextUnknownAction   = "Unknown action"
	TextInternalError   = "❌ Internal error occurred"
)

// FormatRR rounds a risk/reward ratio to two decimals for display.
func FormatRR(rr float64) string {
	return decimal.NewFromFloat(rr).Round(2).StringFixed(2)
}

func formatPrice(p float64) string {
	if p == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", p)
}

// FormatSelected confirms an asset choice above the action keyboard.
func FormatSelected(asset model.Asset) string {
	return fmt.Sprintf("✅ Selected <b>%s</b>\n\nChoose an action:", html.EscapeString(asset.Name))
}

// FormatAnalysis summarizes one analysis pass.
func FormatAnalysis(a *model.Analysis) string {
	var b strings.Builder
	name := html.EscapeString(a.Asset.Name)
	b.WriteString(fmt.Sprintf("📊 <b>%s Analysis (%s)</b>\n\n", name, html.EscapeString(a.Asset.Timeframe)))
	b.WriteString(fmt.Sprintf("Price: %.2f\n", a.Price))
	b.WriteString(fmt.Sprintf("ATR: %.2f | RSI: %.1f\n", a.ATR, a.RSI))
	b.WriteString(fmt.Sprintf("Swings: %d highs / %d lows\n", a.SwingHighs, a.SwingLows))
	b.WriteString(fmt.Sprintf("HTF levels: %d support / %d resistance\n", len(a.Levels.HTFSupport), len(a.Levels.HTFResistance)))
	b.WriteString(fmt.Sprintf("LTF levels: %d support / %d resistance\n", len(a.Levels.LTFSupport), len(a.Levels.LTFResistance)))
	b.WriteString(fmt.Sprintf("Signals: %d", len(a.Signals)))
	return b.String()
}

// FormatSignal renders one signal card.
func FormatSignal(asset string, s model.Signal) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🚨 <b>%s %s SIGNAL</b> (%s)\n\n", html.EscapeString(asset), s.Type, strings.ToLower(string(s.Layer))))
	b.WriteString(fmt.Sprintf("Entry: %.2f\n", s.Entry))
	b.WriteString(fmt.Sprintf("SL: %.2f\n", s.StopLoss))
	b.WriteString(fmt.Sprintf("TP: %.2f\n", s.Target))
	b.WriteString(fmt.Sprintf("RR: %s\n", FormatRR(s.RiskReward)))
	b.WriteString(fmt.Sprintf("Confidence: %d%%\n", s.Confidence))
	b.WriteString(html.EscapeString(s.Label))
	return b.String()
}

// FormatSignals lists every ranked signal, or the no-trade notice.
func FormatSignals(a *model.Analysis) string {
	if len(a.Signals) == 0 {
		return fmt.Sprintf("❌ No valid %s signals", html.EscapeString(a.Asset.Name))
	}
	cards := make([]string, len(a.Signals))
	for i, s := range a.Signals {
		cards[i] = FormatSignal(a.Asset.Name, s)
	}
	return strings.Join(cards, "\n\n")
}

// FormatLevels shows the key support and resistance levels.
func FormatLevels(a *model.Analysis) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>%s Support &amp; Resistance</b>\n\n", html.EscapeString(a.Asset.Name)))
	b.WriteString(fmt.Sprintf("S1: %s\n", formatPrice(a.Key.S1)))
	b.WriteString(fmt.Sprintf("S2: %s\n", formatPrice(a.Key.S2)))
	b.WriteString(fmt.Sprintf("R1: %s\n", formatPrice(a.Key.R1)))
	b.WriteString(fmt.Sprintf("R2: %s", formatPrice(a.Key.R2)))
	return b.String()
}
