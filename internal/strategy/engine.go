package strategy

import (
	"errors"
	"fmt"
	"math"
	"sort"

	log "github.com/sirupsen/logrus"

	"SwingSentinel/internal/calculator"
	"SwingSentinel/internal/model"
)

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrDegenerateLevel  = errors.New("degenerate bracket")
	ErrArithmeticGuard  = errors.New("zero risk denominator")
	ErrNoStructure      = errors.New("no structural level")
	ErrNoSetup          = errors.New("setup not confirmed")
)

const (
	labelPremium      = "HTF liquidity sweep"
	labelContinuation = "LTF break and hold"
)

// market is the per-call state shared by all candidate builders.
type market struct {
	close         []float64
	price         float64
	prev          float64
	atr           float64
	support       float64
	hasSupport    bool
	resistance    float64
	hasResistance bool
	volConfirmed  bool
}

// GenerateSignals evaluates the layer cascade and returns the ranked signals
// of the first layer that qualifies. Premium HTF confluence is tried first,
// then the continuation fallback. The result is never nil; an empty slice is
// the normal no-trade state.
//
// Risk/reward is compared and stored unrounded. Rounding to two decimals is
// a display concern.
func GenerateSignals(s *model.Series, levels model.LevelSet, p Params) []model.Signal {
	out := []model.Signal{}

	m, err := newMarket(s, levels, p)
	if err != nil {
		log.WithError(err).Debug("signal engine skipped")
		return out
	}

	layers := []struct {
		layer model.Layer
		buy   func(market, model.LevelSet, Params) (model.Signal, error)
		sell  func(market, model.LevelSet, Params) (model.Signal, error)
	}{
		{model.LayerPremium, premiumBuy, premiumSell},
		{model.LayerContinuation, continuationBuy, continuationSell},
	}

	for _, l := range layers {
		for _, build := range []func(market, model.LevelSet, Params) (model.Signal, error){l.buy, l.sell} {
			sig, err := build(m, levels, p)
			if err != nil {
				log.WithError(err).WithField("layer", l.layer).Debug("candidate rejected")
				continue
			}
			out = append(out, sig)
		}
		if len(out) > 0 {
			rank(out)
			return out
		}
	}
	return out
}

func newMarket(s *model.Series, levels model.LevelSet, p Params) (market, error) {
	if s == nil || s.Len() < 2 {
		return market{}, fmt.Errorf("need at least 2 bars: %w", ErrInsufficientData)
	}
	if levels.Empty() {
		return market{}, ErrNoStructure
	}

	atr, err := calculator.TrailingRange(s.High(), s.Low(), p.ATRPeriod)
	if err != nil {
		return market{}, fmt.Errorf("atr: %v: %w", err, ErrInsufficientData)
	}

	closes := s.Close()
	m := market{
		close: closes,
		price: closes[len(closes)-1],
		prev:  closes[len(closes)-2],
		atr:   atr,
	}

	if avg, err := calculator.TrailingMean(s.Volume(), p.VolumeLookback); err == nil {
		vol := s.Volume()
		m.volConfirmed = vol[len(vol)-1] > avg
	}

	for _, l := range levels.HTFSupport {
		if l.Price < m.price && (!m.hasSupport || l.Price > m.support) {
			m.support, m.hasSupport = l.Price, true
		}
	}
	for _, l := range levels.HTFResistance {
		if l.Price > m.price && (!m.hasResistance || l.Price < m.resistance) {
			m.resistance, m.hasResistance = l.Price, true
		}
	}
	return m, nil
}

func premiumBuy(m market, _ model.LevelSet, p Params) (model.Signal, error) {
	if !m.hasSupport || !m.hasResistance {
		return model.Signal{}, fmt.Errorf("buy: %w", ErrNoStructure)
	}
	stop := m.support - m.atr*p.PremiumStopATR
	target := m.resistance
	if !(target > m.price && m.price > stop) {
		return model.Signal{}, fmt.Errorf("buy %.4f/%.4f/%.4f: %w", stop, m.price, target, ErrDegenerateLevel)
	}
	rr, err := riskReward(target-m.price, m.price-stop)
	if err != nil {
		return model.Signal{}, fmt.Errorf("buy: %w", err)
	}
	sweep := m.prev < m.support && m.price > m.support
	return premium(model.Buy, m, stop, target, rr, sweep, p)
}

func premiumSell(m market, _ model.LevelSet, p Params) (model.Signal, error) {
	if !m.hasResistance || !m.hasSupport {
		return model.Signal{}, fmt.Errorf("sell: %w", ErrNoStructure)
	}
	stop := m.resistance + m.atr*p.PremiumStopATR
	target := m.support
	if !(stop > m.price && m.price > target) {
		return model.Signal{}, fmt.Errorf("sell %.4f/%.4f/%.4f: %w", stop, m.price, target, ErrDegenerateLevel)
	}
	rr, err := riskReward(m.price-target, stop-m.price)
	if err != nil {
		return model.Signal{}, fmt.Errorf("sell: %w", err)
	}
	sweep := m.prev > m.resistance && m.price < m.resistance
	return premium(model.Sell, m, stop, target, rr, sweep, p)
}

func premium(typ model.SignalType, m market, stop, target, rr float64, sweep bool, p Params) (model.Signal, error) {
	if !sweep {
		return model.Signal{}, fmt.Errorf("%s: no liquidity sweep: %w", typ, ErrNoSetup)
	}
	confidence := premiumConfidence(rr, sweep, m.volConfirmed, p)
	if rr < p.PremiumMinRR || confidence < p.ConfidenceFloor {
		return model.Signal{}, fmt.Errorf("%s: rr %.2f confidence %d: %w", typ, rr, confidence, ErrNoSetup)
	}
	return model.NewSignal(typ, model.LayerPremium, m.price, stop, target, rr, confidence, labelPremium)
}

func premiumConfidence(rr float64, sweep, volConfirmed bool, p Params) int {
	score := 50
	if rr >= p.PremiumMinRR {
		score += 15
	}
	if sweep {
		score += 15
	}
	if volConfirmed {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	return score
}

// continuationBuy needs the nearest LTF support at or below price to have
// been closed through within the lookback and held on the latest close.
func continuationBuy(m market, levels model.LevelSet, p Params) (model.Signal, error) {
	if !m.hasSupport {
		return model.Signal{}, fmt.Errorf("buy: %w", ErrNoStructure)
	}
	level, ok := nearestAtOrBelow(levels.LTFSupport, m.price)
	if !ok {
		return model.Signal{}, fmt.Errorf("buy: no LTF support below %.4f: %w", m.price, ErrNoStructure)
	}
	if !brokeThrough(m.close, p.BreakHoldLookback, func(c float64) bool { return c <= level }) {
		return model.Signal{}, fmt.Errorf("buy: no break of %.4f: %w", level, ErrNoSetup)
	}
	stop := m.support - m.atr*p.ContinuationStopATR
	target := m.price + m.atr*p.ContinuationTargetATR
	if !(target > m.price && m.price > stop) {
		return model.Signal{}, fmt.Errorf("buy %.4f/%.4f/%.4f: %w", stop, m.price, target, ErrDegenerateLevel)
	}
	rr, err := riskReward(target-m.price, m.price-stop)
	if err != nil {
		return model.Signal{}, fmt.Errorf("buy: %w", err)
	}
	return continuation(model.Buy, m, stop, target, rr, p)
}

func continuationSell(m market, levels model.LevelSet, p Params) (model.Signal, error) {
	if !m.hasResistance {
		return model.Signal{}, fmt.Errorf("sell: %w", ErrNoStructure)
	}
	level, ok := nearestAtOrAbove(levels.LTFResistance, m.price)
	if !ok {
		return model.Signal{}, fmt.Errorf("sell: no LTF resistance above %.4f: %w", m.price, ErrNoStructure)
	}
	if !brokeThrough(m.close, p.BreakHoldLookback, func(c float64) bool { return c >= level }) {
		return model.Signal{}, fmt.Errorf("sell: no break of %.4f: %w", level, ErrNoSetup)
	}
	stop := m.resistance + m.atr*p.ContinuationStopATR
	target := m.price - m.atr*p.ContinuationTargetATR
	if !(stop > m.price && m.price > target) {
		return model.Signal{}, fmt.Errorf("sell %.4f/%.4f/%.4f: %w", stop, m.price, target, ErrDegenerateLevel)
	}
	rr, err := riskReward(m.price-target, stop-m.price)
	if err != nil {
		return model.Signal{}, fmt.Errorf("sell: %w", err)
	}
	return continuation(model.Sell, m, stop, target, rr, p)
}

func continuation(typ model.SignalType, m market, stop, target, rr float64, p Params) (model.Signal, error) {
	if rr < p.ContinuationMinRR {
		return model.Signal{}, fmt.Errorf("%s: rr %.2f: %w", typ, rr, ErrNoSetup)
	}
	return model.NewSignal(typ, model.LayerContinuation, m.price, stop, target, rr, p.ContinuationConfidence, labelContinuation)
}

func riskReward(reward, risk float64) (float64, error) {
	if risk <= 0 || math.IsNaN(risk) {
		return 0, ErrArithmeticGuard
	}
	rr := reward / risk
	if math.IsNaN(rr) || math.IsInf(rr, 0) {
		return 0, ErrArithmeticGuard
	}
	return rr, nil
}

func nearestAtOrBelow(levels []model.Level, price float64) (float64, bool) {
	best, ok := 0.0, false
	for _, l := range levels {
		if l.Price <= price && (!ok || l.Price > best) {
			best, ok = l.Price, true
		}
	}
	return best, ok
}

func nearestAtOrAbove(levels []model.Level, price float64) (float64, bool) {
	best, ok := 0.0, false
	for _, l := range levels {
		if l.Price >= price && (!ok || l.Price < best) {
			best, ok = l.Price, true
		}
	}
	return best, ok
}

// brokeThrough reports whether any of the lookback closes before the latest
// satisfies crossed.
func brokeThrough(closes []float64, lookback int, crossed func(float64) bool) bool {
	last := len(closes) - 1
	start := last - lookback
	if start < 0 {
		start = 0
	}
	for i := start; i < last; i++ {
		if crossed(closes[i]) {
			return true
		}
	}
	return false
}

// rank orders by confidence, then risk/reward, then BUY before SELL.
func rank(signals []model.Signal) {
	sort.SliceStable(signals, func(i, j int) bool {
		a, b := signals[i], signals[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.RiskReward != b.RiskReward {
			return a.RiskReward > b.RiskReward
		}
		return a.Type == model.Buy && b.Type == model.Sell
	})
}
