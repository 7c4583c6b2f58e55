package structure

import (
	"math"
	"sort"

	log "github.com/sirupsen/logrus"

	"SwingSentinel/internal/calculator"
	"SwingSentinel/internal/model"
)

const (
	DefaultTouchTolerancePct = 0.002
	// DefaultStrengthThreshold is the touches*volumeWeight score separating
	// HTF (strong) from LTF (weak) levels.
	DefaultStrengthThreshold = 2.5
	DefaultRecentSwings      = 10
	DefaultBucketSize        = 2
)

// Classifier turns swing points into scored levels and buckets them.
type Classifier struct {
	TouchTolerancePct float64
	StrengthThreshold float64
	RecentSwings      int
	HTFBucketSize     int
	LTFBucketSize     int
}

// DefaultClassifier returns a Classifier with the stock thresholds.
func DefaultClassifier() Classifier {
	return Classifier{
		TouchTolerancePct: DefaultTouchTolerancePct,
		StrengthThreshold: DefaultStrengthThreshold,
		RecentSwings:      DefaultRecentSwings,
		HTFBucketSize:     DefaultBucketSize,
		LTFBucketSize:     DefaultBucketSize,
	}
}

// Classify scores the most recent swing highs (resistance) and swing lows
// (support) against the whole series and partitions them into a LevelSet.
//
// HTF buckets keep the two lowest-priced strong levels on each side, LTF
// support keeps the first two weak supports and LTF resistance the last two
// weak resistances, in detection order.
func (c Classifier) Classify(s *model.Series, highs, lows []model.SwingPoint) model.LevelSet {
	meanVol, err := calculator.Mean(s.Volume())
	if err != nil {
		meanVol = 0
	}

	res := c.score(s.High(), s.Volume(), recent(highs, c.RecentSwings), model.Resistance, meanVol)
	sup := c.score(s.Low(), s.Volume(), recent(lows, c.RecentSwings), model.Support, meanVol)

	strongRes, weakRes := split(res)
	strongSup, weakSup := split(sup)

	sortByPrice(strongRes)
	sortByPrice(strongSup)

	ltfSup := head(weakSup, c.LTFBucketSize)
	sortByPrice(ltfSup)

	return model.LevelSet{
		HTFSupport:    head(strongSup, c.HTFBucketSize),
		HTFResistance: head(strongRes, c.HTFBucketSize),
		LTFSupport:    ltfSup,
		LTFResistance: tail(weakRes, c.LTFBucketSize),
	}
}

func (c Classifier) score(extremes, volume []float64, points []model.SwingPoint, side model.Side, meanVol float64) []model.Level {
	levels := make([]model.Level, 0, len(points))
	for _, p := range points {
		if p.Index < 0 || p.Index >= len(extremes) {
			continue
		}
		tol := math.Abs(p.Price) * c.TouchTolerancePct
		touches := 0
		for _, x := range extremes {
			if math.Abs(x-p.Price) <= tol {
				touches++
			}
		}

		weight := 1.0
		if meanVol != 0 {
			weight = volume[p.Index] / meanVol
		}

		strength := model.Weak
		if float64(touches)*weight >= c.StrengthThreshold {
			strength = model.Strong
		}

		lvl, err := model.NewLevel(p.Price, side, touches, weight, strength)
		if err != nil {
			log.WithError(err).WithField("index", p.Index).Debug("level dropped")
			continue
		}
		levels = append(levels, lvl)
	}
	return levels
}

func recent(points []model.SwingPoint, n int) []model.SwingPoint {
	if n > 0 && len(points) > n {
		return points[len(points)-n:]
	}
	return points
}

func split(levels []model.Level) (strong, weak []model.Level) {
	for _, l := range levels {
		if l.Strength == model.Strong {
			strong = append(strong, l)
		} else {
			weak = append(weak, l)
		}
	}
	return strong, weak
}

// sortByPrice sorts ascending; equal prices keep detection order.
func sortByPrice(levels []model.Level) {
	sort.SliceStable(levels, func(i, j int) bool { return levels[i].Price < levels[j].Price })
}

func head(levels []model.Level, n int) []model.Level {
	if len(levels) > n {
		levels = levels[:n]
	}
	return append([]model.Level{}, levels...)
}

func tail(levels []model.Level, n int) []model.Level {
	if len(levels) > n {
		levels = levels[len(levels)-n:]
	}
	return append([]model.Level{}, levels...)
}
