package calculator

import "fmt"

// RSI is Wilder's relative strength index of closes. With fewer than
// period+1 closes it reports the neutral 50.
func RSI(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("rsi period %d must be positive", period)
	}
	if len(closes) <= period {
		return 50, nil
	}

	ups, downs := moves(closes)
	up, err := Mean(ups[:period])
	if err != nil {
		return 0, err
	}
	down, err := Mean(downs[:period])
	if err != nil {
		return 0, err
	}

	n := float64(period)
	for i := period; i < len(ups); i++ {
		up = (up*(n-1) + ups[i]) / n
		down = (down*(n-1) + downs[i]) / n
	}

	switch {
	case up == 0 && down == 0:
		return 50, nil
	case down == 0:
		return 100, nil
	}
	return 100 - 100/(1+up/down), nil
}

// moves splits bar-to-bar changes into non-negative up and down legs.
func moves(closes []float64) (ups, downs []float64) {
	ups = make([]float64, len(closes)-1)
	downs = make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if d := closes[i] - closes[i-1]; d > 0 {
			ups[i-1] = d
		} else {
			downs[i-1] = -d
		}
	}
	return ups, downs
}
