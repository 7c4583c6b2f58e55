package structure

import (
	"sort"

	"SwingSentinel/internal/model"
)

const (
	DefaultMinSeparation = 5
	// DefaultMinSamples is the shortest series that is scanned for swings.
	DefaultMinSamples = 20
)

// Detector finds swing points with minimum-distance suppression.
type Detector struct {
	MinSeparation int
	MinSamples    int
}

// NewDetector returns a Detector, replacing non-positive settings with defaults.
func NewDetector(minSeparation, minSamples int) Detector {
	if minSeparation <= 0 {
		minSeparation = DefaultMinSeparation
	}
	if minSamples <= 0 {
		minSamples = DefaultMinSamples
	}
	return Detector{MinSeparation: minSeparation, MinSamples: minSamples}
}

// FindSwings returns the indices of local maxima in values, at least
// minSeparation samples apart, using the default sample floor.
func FindSwings(values []float64, minSeparation int) []int {
	return NewDetector(minSeparation, DefaultMinSamples).Find(values)
}

// Find returns ascending indices of local maxima. When two candidates are
// closer than MinSeparation the higher one is kept; ties keep the earlier.
// Series shorter than MinSamples yield no swings.
func (d Detector) Find(values []float64) []int {
	if len(values) < d.MinSamples || len(values) < 3 {
		return []int{}
	}
	peaks := localMaxima(values)
	if d.MinSeparation <= 1 || len(peaks) < 2 {
		return peaks
	}

	order := make([]int, len(peaks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[peaks[order[a]]] > values[peaks[order[b]]]
	})

	keep := make([]bool, len(peaks))
	for i := range keep {
		keep[i] = true
	}
	for _, j := range order {
		if !keep[j] {
			continue
		}
		for k := j - 1; k >= 0 && peaks[j]-peaks[k] < d.MinSeparation; k-- {
			keep[k] = false
		}
		for k := j + 1; k < len(peaks) && peaks[k]-peaks[j] < d.MinSeparation; k++ {
			keep[k] = false
		}
	}

	out := make([]int, 0, len(peaks))
	for i, p := range peaks {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

// localMaxima finds strict local maxima. A flat top counts once, at its
// midpoint, and only when both of its edges are strictly lower. The first and
// last samples are never maxima.
func localMaxima(x []float64) []int {
	var peaks []int
	last := len(x) - 1
	for i := 1; i < last; i++ {
		if x[i-1] >= x[i] {
			continue
		}
		ahead := i + 1
		for ahead < last && x[ahead] == x[i] {
			ahead++
		}
		if x[ahead] < x[i] {
			peaks = append(peaks, (i+ahead-1)/2)
			i = ahead
		}
	}
	return peaks
}

// Highs returns swing highs found in the high column.
func (d Detector) Highs(s *model.Series) []model.SwingPoint {
	high := s.High()
	idx := d.Find(high)
	out := make([]model.SwingPoint, len(idx))
	for i, j := range idx {
		out[i] = model.SwingPoint{Index: j, Kind: model.SwingHigh, Price: high[j]}
	}
	return out
}

// Lows returns swing lows, found as maxima of the negated low column.
func (d Detector) Lows(s *model.Series) []model.SwingPoint {
	low := s.Low()
	neg := make([]float64, len(low))
	for i, v := range low {
		neg[i] = -v
	}
	idx := d.Find(neg)
	out := make([]model.SwingPoint, len(idx))
	for i, j := range idx {
		out[i] = model.SwingPoint{Index: j, Kind: model.SwingLow, Price: low[j]}
	}
	return out
}
