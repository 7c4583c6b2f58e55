package model

// KeyLevels are the nearest two supports below and resistances above price.
// A zero value means no candidate was available.
type KeyLevels struct {
	S1 float64
	S2 float64
	R1 float64
	R2 float64
}

// Analysis is the display-ready result of one pipeline pass for an asset.
type Analysis struct {
	Asset      Asset
	Bars       int
	Price      float64
	ATR        float64
	RSI        float64
	SwingHighs int
	SwingLows  int
	Levels     LevelSet
	Key        KeyLevels
	Signals    []Signal
}
