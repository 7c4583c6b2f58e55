package model

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidSignal = errors.New("invalid signal")

// SignalType is the trade direction.
type SignalType string

const (
	Buy  SignalType = "BUY"
	Sell SignalType = "SELL"
)

// Layer identifies which stage of the decision cascade produced a signal.
type Layer string

const (
	LayerPremium      Layer = "PREMIUM"
	LayerContinuation Layer = "CONTINUATION"
)

// Signal is a bracketed trade idea. RiskReward is kept unrounded.
type Signal struct {
	Type       SignalType
	Layer      Layer
	Entry      float64
	StopLoss   float64
	Target     float64
	RiskReward float64
	Confidence int
	Label      string
}

// NewSignal validates the bracket geometry and the score ranges.
func NewSignal(typ SignalType, layer Layer, entry, stop, target, rr float64, confidence int, label string) (Signal, error) {
	for _, v := range []float64{entry, stop, target, rr} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Signal{}, fmt.Errorf("non-finite value %v: %w", v, ErrInvalidSignal)
		}
	}
	switch typ {
	case Buy:
		if !(target > entry && entry > stop) {
			return Signal{}, fmt.Errorf("buy bracket %.4f/%.4f/%.4f: %w", stop, entry, target, ErrInvalidSignal)
		}
	case Sell:
		if !(stop > entry && entry > target) {
			return Signal{}, fmt.Errorf("sell bracket %.4f/%.4f/%.4f: %w", stop, entry, target, ErrInvalidSignal)
		}
	default:
		return Signal{}, fmt.Errorf("type %q: %w", typ, ErrInvalidSignal)
	}
	if rr <= 0 {
		return Signal{}, fmt.Errorf("risk/reward %v: %w", rr, ErrInvalidSignal)
	}
	if confidence < 0 || confidence > 100 {
		return Signal{}, fmt.Errorf("confidence %d: %w", confidence, ErrInvalidSignal)
	}
	return Signal{
		Type:       typ,
		Layer:      layer,
		Entry:      entry,
		StopLoss:   stop,
		Target:     target,
		RiskReward: rr,
		Confidence: confidence,
		Label:      label,
	}, nil
}
