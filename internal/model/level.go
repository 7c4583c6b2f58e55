package model

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidLevel = errors.New("invalid level")

// SwingKind tells whether a swing point was found in highs or lows.
type SwingKind string

const (
	SwingHigh SwingKind = "HIGH"
	SwingLow  SwingKind = "LOW"
)

// SwingPoint is a local extremum at a bar index.
type SwingPoint struct {
	Index int
	Kind  SwingKind
	Price float64
}

type Side string

const (
	Support    Side = "SUPPORT"
	Resistance Side = "RESISTANCE"
)

type Strength string

const (
	Strong Strength = "STRONG" // HTF
	Weak   Strength = "WEAK"   // LTF
)

// Level is a classified price level derived from one swing point.
type Level struct {
	Price        float64
	Side         Side
	Touches      int
	VolumeWeight float64
	Strength     Strength
}

// NewLevel validates and builds a Level.
func NewLevel(price float64, side Side, touches int, volumeWeight float64, strength Strength) (Level, error) {
	switch {
	case math.IsNaN(price) || math.IsInf(price, 0):
		return Level{}, fmt.Errorf("price %v: %w", price, ErrInvalidLevel)
	case side != Support && side != Resistance:
		return Level{}, fmt.Errorf("side %q: %w", side, ErrInvalidLevel)
	case touches < 0:
		return Level{}, fmt.Errorf("touches %d: %w", touches, ErrInvalidLevel)
	case volumeWeight < 0 || math.IsNaN(volumeWeight) || math.IsInf(volumeWeight, 0):
		return Level{}, fmt.Errorf("volume weight %v: %w", volumeWeight, ErrInvalidLevel)
	case strength != Strong && strength != Weak:
		return Level{}, fmt.Errorf("strength %q: %w", strength, ErrInvalidLevel)
	}
	return Level{Price: price, Side: side, Touches: touches, VolumeWeight: volumeWeight, Strength: strength}, nil
}

// LevelSet holds the four classified buckets. It is rebuilt on every analysis.
type LevelSet struct {
	HTFSupport    []Level
	HTFResistance []Level
	LTFSupport    []Level
	LTFResistance []Level
}

// Empty reports whether both HTF buckets are empty.
func (ls LevelSet) Empty() bool {
	return len(ls.HTFSupport) == 0 && len(ls.HTFResistance) == 0
}

// Supports returns HTF then LTF support levels.
func (ls LevelSet) Supports() []Level {
	out := make([]Level, 0, len(ls.HTFSupport)+len(ls.LTFSupport))
	out = append(out, ls.HTFSupport...)
	return append(out, ls.LTFSupport...)
}

// Resistances returns HTF then LTF resistance levels.
func (ls LevelSet) Resistances() []Level {
	out := make([]Level, 0, len(ls.HTFResistance)+len(ls.LTFResistance))
	out = append(out, ls.HTFResistance...)
	return append(out, ls.LTFResistance...)
}
