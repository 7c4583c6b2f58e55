// Package report renders analyses as plain-text tables for the CLI.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"SwingSentinel/internal/model"
)

var printer = message.NewPrinter(language.English)

func price(v float64) string {
	if v == 0 {
		return "-"
	}
	return printer.Sprintf("%.2f", v)
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetAutoFormatHeaders(false)
	return table
}

// Levels renders the four classified buckets.
func Levels(ls model.LevelSet) string {
	display := &strings.Builder{}
	table := newTable(display, "Bucket", "Price", "Touches", "Volume Weight")

	buckets := []struct {
		name   string
		levels []model.Level
	}{
		{"HTF support", ls.HTFSupport},
		{"HTF resistance", ls.HTFResistance},
		{"LTF support", ls.LTFSupport},
		{"LTF resistance", ls.LTFResistance},
	}
	for _, b := range buckets {
		for _, l := range b.levels {
			table.Append([]string{b.name, price(l.Price), fmt.Sprintf("%d", l.Touches), printer.Sprintf("%.2f", l.VolumeWeight)})
		}
	}
	table.Render()
	return display.String()
}

// KeyLevels renders S1/S2/R1/R2 around the latest price.
func KeyLevels(a *model.Analysis) string {
	display := &strings.Builder{}
	table := newTable(display, "R2", "R1", "Price", "S1", "S2")
	table.Append([]string{price(a.Key.R2), price(a.Key.R1), price(a.Price), price(a.Key.S1), price(a.Key.S2)})
	table.Render()
	return display.String()
}

// Signals renders the ranked signal list.
func Signals(signals []model.Signal) string {
	display := &strings.Builder{}
	if len(signals) == 0 {
		display.WriteString("No valid signals\n")
		return display.String()
	}
	table := newTable(display, "#", "Type", "Layer", "Entry", "Stop", "Target", "RR", "Confidence", "Setup")
	for i, s := range signals {
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			string(s.Type),
			string(s.Layer),
			price(s.Entry),
			price(s.StopLoss),
			price(s.Target),
			fmt.Sprintf("%.2f", s.RiskReward),
			fmt.Sprintf("%d%%", s.Confidence),
			s.Label,
		})
	}
	table.Render()
	return display.String()
}

// Write prints the full report for one analysis.
func Write(w io.Writer, a *model.Analysis) error {
	_, err := fmt.Fprintf(w, "%s (%s %s) bars=%d price=%s ATR=%s RSI=%.1f swings=%d/%d\n\nKey levels:\n%s\nLevels:\n%s\nSignals:\n%s",
		a.Asset.Name, a.Asset.Symbol, a.Asset.Timeframe, a.Bars, price(a.Price), price(a.ATR), a.RSI,
		a.SwingHighs, a.SwingLows,
		KeyLevels(a), Levels(a.Levels), Signals(a.Signals))
	return err
}
