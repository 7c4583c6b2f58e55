package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrEmptySeries    = errors.New("series has no bars")
	ErrLengthMismatch = errors.New("series columns differ in length")
	ErrNonFinite      = errors.New("series contains a non-finite value")
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series is a read-only columnar view over chronologically ordered bars.
// Index 0 is the oldest bar, Len()-1 the current one.
type Series struct {
	open   []float64
	high   []float64
	low    []float64
	close  []float64
	volume []float64
}

// NewSeries validates the columns and copies them into a Series.
func NewSeries(open, high, low, close, volume []float64) (*Series, error) {
	n := len(close)
	if n == 0 {
		return nil, ErrEmptySeries
	}
	cols := [][]float64{open, high, low, close, volume}
	names := []string{"open", "high", "low", "close", "volume"}
	for c, col := range cols {
		if len(col) != n {
			return nil, fmt.Errorf("%s has %d values, close has %d: %w", names[c], len(col), n, ErrLengthMismatch)
		}
		for i, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%s[%d]: %w", names[c], i, ErrNonFinite)
			}
		}
	}
	return &Series{
		open:   append([]float64(nil), open...),
		high:   append([]float64(nil), high...),
		low:    append([]float64(nil), low...),
		close:  append([]float64(nil), close...),
		volume: append([]float64(nil), volume...),
	}, nil
}

// SeriesFromBars builds a Series from bars already in chronological order.
func SeriesFromBars(bars []OHLCV) (*Series, error) {
	n := len(bars)
	o, h, l, c, v := make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
	for i, b := range bars {
		o[i], h[i], l[i], c[i], v[i] = b.Open, b.High, b.Low, b.Close, b.Volume
	}
	return NewSeries(o, h, l, c, v)
}

func (s *Series) Len() int { return len(s.close) }

// The accessors return the underlying slices; callers must not modify them.
func (s *Series) Open() []float64   { return s.open }
func (s *Series) High() []float64   { return s.high }
func (s *Series) Low() []float64    { return s.low }
func (s *Series) Close() []float64  { return s.close }
func (s *Series) Volume() []float64 { return s.volume }

// Last returns the latest close.
func (s *Series) Last() float64 { return s.close[len(s.close)-1] }
