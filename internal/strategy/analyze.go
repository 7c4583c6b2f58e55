package strategy

import (
	"sort"

	log "github.com/sirupsen/logrus"

	"SwingSentinel/internal/calculator"
	"SwingSentinel/internal/model"
)

// shortExtremesLookback is roughly one trading month of daily bars.
const shortExtremesLookback = 22

// Analyze runs swing detection, level classification and signal generation
// over s in one synchronous pass and collects the display data around them.
func Analyze(asset model.Asset, s *model.Series, p Params) *model.Analysis {
	a := &model.Analysis{Asset: asset, Signals: []model.Signal{}}
	if s == nil || s.Len() == 0 {
		return a
	}
	a.Bars = s.Len()
	a.Price = s.Last()

	if atr, err := calculator.TrailingRange(s.High(), s.Low(), p.ATRPeriod); err == nil {
		a.ATR = atr
	}
	rsi, err := calculator.RSI(s.Close(), p.RSIPeriod)
	if err != nil {
		log.WithError(err).WithField("asset", asset.Name).Warn("rsi unavailable")
		rsi = 50
	}
	a.RSI = rsi

	d := p.Detector()
	highs := d.Highs(s)
	lows := d.Lows(s)
	a.SwingHighs = len(highs)
	a.SwingLows = len(lows)

	a.Levels = p.Classifier().Classify(s, highs, lows)
	a.Key = keyLevels(s, a.Levels, p.ExtremesLookback)
	a.Signals = GenerateSignals(s, a.Levels, p)

	log.WithFields(log.Fields{
		"asset":   asset.Name,
		"bars":    a.Bars,
		"highs":   a.SwingHighs,
		"lows":    a.SwingLows,
		"signals": len(a.Signals),
	}).Debug("analysis complete")
	return a
}

// keyLevels picks the two nearest distinct supports below and resistances
// above the latest close. With enough history the long and short range
// extremes join the classified levels as candidates.
func keyLevels(s *model.Series, levels model.LevelSet, lookback int) model.KeyLevels {
	price := s.Last()
	var below, above []float64
	for _, l := range levels.Supports() {
		below = append(below, l.Price)
	}
	for _, l := range levels.Resistances() {
		above = append(above, l.Price)
	}
	if lookback > 0 && s.Len() >= lookback {
		for _, n := range []int{lookback, shortExtremesLookback} {
			hi, lo, err := calculator.Range(s.High(), s.Low(), n)
			if err != nil {
				continue
			}
			below = append(below, lo)
			above = append(above, hi)
		}
	}

	s1, s2 := nearestTwo(below, func(v float64) bool { return v < price }, func(a, b float64) bool { return a > b })
	r1, r2 := nearestTwo(above, func(v float64) bool { return v > price }, func(a, b float64) bool { return a < b })
	return model.KeyLevels{S1: s1, S2: s2, R1: r1, R2: r2}
}

func nearestTwo(candidates []float64, keep func(float64) bool, closer func(a, b float64) bool) (float64, float64) {
	var picked []float64
	for _, c := range candidates {
		if keep(c) {
			picked = append(picked, c)
		}
	}
	sort.Slice(picked, func(i, j int) bool { return closer(picked[i], picked[j]) })

	var out [2]float64
	n := 0
	for _, c := range picked {
		if n > 0 && c == out[n-1] {
			continue
		}
		out[n] = c
		n++
		if n == len(out) {
			break
		}
	}
	return out[0], out[1]
}
