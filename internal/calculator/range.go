package calculator

import "math"

// Range scans the most recent lookback bars and returns the highest high and lowest low.
// A lookback <= 0 or larger than the series scans everything.
func Range(high, low []float64, lookback int) (hi, lo float64, err error) {
	n := len(high)
	if n == 0 || len(low) != n {
		return 0, 0, ErrNotEnoughData
	}
	start := 0
	if lookback > 0 && lookback < n {
		start = n - lookback
	}
	hi = math.Inf(-1)
	lo = math.Inf(1)
	for i := start; i < n; i++ {
		if high[i] > hi {
			hi = high[i]
		}
		if low[i] < lo {
			lo = low[i]
		}
	}
	return hi, lo, nil
}
