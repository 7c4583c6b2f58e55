package calculator

import (
	"errors"
	"fmt"

	"github.com/montanaflynn/stats"
)

var ErrNotEnoughData = errors.New("not enough data")

// Mean returns the arithmetic mean of values.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrNotEnoughData
	}
	m, err := stats.Mean(values)
	if err != nil {
		return 0, fmt.Errorf("mean: %w", err)
	}
	return m, nil
}

// TrailingMean computes the simple moving average of the last period values.
func TrailingMean(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, fmt.Errorf("sma(%d) over %d values: %w", period, len(values), ErrNotEnoughData)
	}
	return Mean(values[len(values)-period:])
}

// TrailingRange is the ATR proxy: the mean of high-low over the last period bars.
func TrailingRange(high, low []float64, period int) (float64, error) {
	if len(high) != len(low) {
		return 0, errors.New("high and low differ in length")
	}
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(high) < period {
		return 0, fmt.Errorf("range(%d) over %d bars: %w", period, len(high), ErrNotEnoughData)
	}
	start := len(high) - period
	ranges := make([]float64, period)
	for i := range ranges {
		ranges[i] = high[start+i] - low[start+i]
	}
	return Mean(ranges)
}
