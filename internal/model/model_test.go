package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeries(t *testing.T) {
	ok := []float64{1, 2, 3}
	tests := []struct {
		name    string
		cols    [5][]float64
		wantErr error
	}{
		{"valid", [5][]float64{ok, ok, ok, ok, ok}, nil},
		{"empty", [5][]float64{{}, {}, {}, {}, {}}, ErrEmptySeries},
		{"short volume", [5][]float64{ok, ok, ok, ok, {1, 2}}, ErrLengthMismatch},
		{"nan high", [5][]float64{ok, {1, math.NaN(), 3}, ok, ok, ok}, ErrNonFinite},
		{"inf low", [5][]float64{ok, ok, {math.Inf(-1), 2, 3}, ok, ok}, ErrNonFinite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSeries(tt.cols[0], tt.cols[1], tt.cols[2], tt.cols[3], tt.cols[4])
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 3, s.Len())
			assert.Equal(t, 3.0, s.Last())
		})
	}
}

func TestNewSeries_CopiesInput(t *testing.T) {
	c := []float64{1, 2, 3}
	s, err := NewSeries(c, c, c, c, c)
	require.NoError(t, err)
	c[2] = 99
	assert.Equal(t, 3.0, s.Last())
}

func TestSeriesFromBars(t *testing.T) {
	bars := []OHLCV{
		{Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
		{Open: 1.5, High: 3, Low: 1, Close: 2.5, Volume: 20},
	}
	s, err := SeriesFromBars(bars)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, s.High())
	assert.Equal(t, []float64{0.5, 1}, s.Low())
	assert.Equal(t, []float64{10, 20}, s.Volume())

	_, err = SeriesFromBars(nil)
	assert.ErrorIs(t, err, ErrEmptySeries)
}

func TestNewSignal(t *testing.T) {
	tests := []struct {
		name             string
		typ              SignalType
		entry, stop, tgt float64
		rr               float64
		confidence       int
		wantErr          bool
	}{
		{"buy", Buy, 100, 99, 102, 2, 70, false},
		{"sell", Sell, 100, 101, 98, 2, 70, false},
		{"buy inverted", Buy, 100, 101, 102, 2, 70, true},
		{"sell inverted", Sell, 100, 99, 98, 2, 70, true},
		{"zero rr", Buy, 100, 99, 102, 0, 70, true},
		{"confidence above range", Buy, 100, 99, 102, 2, 101, true},
		{"nan target", Buy, 100, 99, math.NaN(), 2, 70, true},
		{"unknown type", SignalType("HOLD"), 100, 99, 102, 2, 70, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := NewSignal(tt.typ, LayerPremium, tt.entry, tt.stop, tt.tgt, tt.rr, tt.confidence, "test")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSignal)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.typ, sig.Type)
			assert.Equal(t, tt.rr, sig.RiskReward)
		})
	}
}

func TestNewLevel(t *testing.T) {
	l, err := NewLevel(100, Support, 3, 1.2, Strong)
	require.NoError(t, err)
	assert.Equal(t, 3, l.Touches)

	_, err = NewLevel(math.NaN(), Support, 3, 1, Strong)
	assert.ErrorIs(t, err, ErrInvalidLevel)
	_, err = NewLevel(100, Side("MIDDLE"), 3, 1, Strong)
	assert.ErrorIs(t, err, ErrInvalidLevel)
	_, err = NewLevel(100, Resistance, -1, 1, Weak)
	assert.ErrorIs(t, err, ErrInvalidLevel)
	_, err = NewLevel(100, Resistance, 1, -0.5, Weak)
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestLevelSet(t *testing.T) {
	ls := LevelSet{
		HTFSupport:    []Level{{Price: 90}},
		LTFSupport:    []Level{{Price: 95}},
		LTFResistance: []Level{{Price: 105}},
	}
	assert.False(t, ls.Empty())
	assert.Equal(t, []Level{{Price: 90}, {Price: 95}}, ls.Supports())
	assert.Equal(t, []Level{{Price: 105}}, ls.Resistances())
	assert.True(t, LevelSet{}.Empty())
}
