package strategy

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SwingSentinel/internal/model"
)

// sweepSeries is a 120 bar zigzag between 100 and 110 with a period of ten
// bars. The last two bars dip through the 100 lows and close back above them
// on heavy volume.
func sweepSeries(t *testing.T) *model.Series {
	t.Helper()
	mids := []float64{100, 102, 104, 106, 108, 110, 108, 106, 104, 102}
	n := 120
	o, h, l, c, v := make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		m := mids[i%10]
		o[i], c[i], h[i], l[i], v[i] = m, m, m+0.5, m-0.5, 1000
	}
	c[118], h[118], l[118] = 99.0, 100.0, 98.8
	c[119], h[119], l[119], v[119] = 100.5, 100.8, 99.0, 3000

	s, err := model.NewSeries(o, h, l, c, v)
	require.NoError(t, err)
	return s
}

// mirrored reflects a series around 100 so supports become resistances.
func mirrored(t *testing.T, s *model.Series) *model.Series {
	t.Helper()
	n := s.Len()
	o, h, l, c := make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		o[i] = 200 - s.Open()[i]
		c[i] = 200 - s.Close()[i]
		h[i] = 200 - s.Low()[i]
		l[i] = 200 - s.High()[i]
	}
	out, err := model.NewSeries(o, h, l, c, s.Volume())
	require.NoError(t, err)
	return out
}

func constSeries(t *testing.T, n int, price float64) *model.Series {
	t.Helper()
	p, v := make([]float64, n), make([]float64, n)
	for i := range p {
		p[i], v[i] = price, 1000
	}
	s, err := model.NewSeries(p, p, p, p, v)
	require.NoError(t, err)
	return s
}

func TestAnalyze_SweepReclaimBuy(t *testing.T) {
	a := Analyze(model.Asset{Name: "TEST"}, sweepSeries(t), DefaultParams())

	require.Len(t, a.Levels.HTFSupport, 2)
	assert.InDelta(t, 99.5, a.Levels.HTFSupport[0].Price, 1e-9)
	require.Len(t, a.Levels.HTFResistance, 2)
	assert.InDelta(t, 110.5, a.Levels.HTFResistance[0].Price, 1e-9)

	require.Len(t, a.Signals, 1)
	sig := a.Signals[0]
	assert.Equal(t, model.Buy, sig.Type)
	assert.Equal(t, model.LayerPremium, sig.Layer)
	assert.InDelta(t, 100.5, sig.Entry, 1e-9)
	assert.InDelta(t, 99.5-0.4*15.0/14.0, sig.StopLoss, 1e-9)
	assert.InDelta(t, 110.5, sig.Target, 1e-9)
	assert.InDelta(t, 7.0, sig.RiskReward, 1e-9)
	assert.Equal(t, 90, sig.Confidence)
	assert.GreaterOrEqual(t, sig.RiskReward, 1.3)
}

func TestAnalyze_SweepRejectSell(t *testing.T) {
	a := Analyze(model.Asset{Name: "TEST"}, mirrored(t, sweepSeries(t)), DefaultParams())

	require.Len(t, a.Signals, 1)
	sig := a.Signals[0]
	assert.Equal(t, model.Sell, sig.Type)
	assert.Equal(t, model.LayerPremium, sig.Layer)
	assert.InDelta(t, 99.5, sig.Entry, 1e-9)
	assert.InDelta(t, 89.5, sig.Target, 1e-9)
	assert.InDelta(t, 7.0, sig.RiskReward, 1e-9)
	assert.Equal(t, 90, sig.Confidence)
}

func TestAnalyze_KeyLevels(t *testing.T) {
	a := Analyze(model.Asset{Name: "TEST"}, sweepSeries(t), DefaultParams())

	assert.InDelta(t, 99.5, a.Key.S1, 1e-9)
	assert.InDelta(t, 98.8, a.Key.S2, 1e-9)
	assert.InDelta(t, 110.5, a.Key.R1, 1e-9)
	assert.Zero(t, a.Key.R2)
	assert.Equal(t, 120, a.Bars)
	assert.Equal(t, 12, a.SwingHighs)
	assert.Equal(t, 12, a.SwingLows)
}

func TestAnalyze_FlatSeries(t *testing.T) {
	a := Analyze(model.Asset{Name: "FLAT"}, constSeries(t, 300, 100), DefaultParams())
	assert.Zero(t, a.SwingHighs)
	assert.Zero(t, a.SwingLows)
	assert.True(t, a.Levels.Empty())
	assert.NotNil(t, a.Signals)
	assert.Empty(t, a.Signals)
}

func TestAnalyze_ShortSeries(t *testing.T) {
	n := 15
	o, h, l, c, v := make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		base := 100.0
		if i%4 == 2 {
			base = 104
		}
		o[i], c[i], h[i], l[i], v[i] = base, base, base+1, base-1, 1000
	}
	s, err := model.NewSeries(o, h, l, c, v)
	require.NoError(t, err)

	a := Analyze(model.Asset{Name: "SHORT"}, s, DefaultParams())
	assert.Zero(t, a.SwingHighs)
	assert.Empty(t, a.Levels.HTFSupport)
	assert.Empty(t, a.Levels.HTFResistance)
	assert.Empty(t, a.Levels.LTFSupport)
	assert.Empty(t, a.Levels.LTFResistance)
	assert.Empty(t, a.Signals)
}

func TestAnalyze_UptrendWithoutPullback(t *testing.T) {
	n := 150
	o, h, l, c, v := make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		p := 100 + float64(i)
		o[i], c[i], h[i], l[i], v[i] = p, p, p+0.5, p-0.5, 1000
	}
	s, err := model.NewSeries(o, h, l, c, v)
	require.NoError(t, err)

	a := Analyze(model.Asset{Name: "TREND"}, s, DefaultParams())
	assert.Empty(t, a.Signals)
}

func TestAnalyze_SingleBar(t *testing.T) {
	a := Analyze(model.Asset{Name: "ONE"}, constSeries(t, 1, 100), DefaultParams())
	assert.Equal(t, 1, a.Bars)
	assert.Empty(t, a.Signals)

	assert.Empty(t, Analyze(model.Asset{}, nil, DefaultParams()).Signals)
}

func TestGenerateSignals_ContinuationBuy(t *testing.T) {
	n := 30
	o, h, l, c, v := make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		p := 98.8
		if i == n-1 {
			p = 99.5
		}
		o[i], c[i], h[i], l[i], v[i] = p, p, p+1, p-1, 1000
	}
	s, err := model.NewSeries(o, h, l, c, v)
	require.NoError(t, err)

	levels := model.LevelSet{
		HTFSupport: []model.Level{{Price: 98, Side: model.Support, Touches: 3, VolumeWeight: 1, Strength: model.Strong}},
		LTFSupport: []model.Level{{Price: 99, Side: model.Support, Touches: 1, VolumeWeight: 1, Strength: model.Weak}},
	}

	got := GenerateSignals(s, levels, DefaultParams())
	require.Len(t, got, 1)
	sig := got[0]
	assert.Equal(t, model.Buy, sig.Type)
	assert.Equal(t, model.LayerContinuation, sig.Layer)
	assert.InDelta(t, 97.4, sig.StopLoss, 1e-9)
	assert.InDelta(t, 101.9, sig.Target, 1e-9)
	assert.InDelta(t, 2.4/2.1, sig.RiskReward, 1e-9)
	assert.Equal(t, 55, sig.Confidence)
}

func TestGenerateSignals_ContinuationSell(t *testing.T) {
	n := 30
	o, h, l, c, v := make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		p := 101.2
		if i == n-1 {
			p = 100.5
		}
		o[i], c[i], h[i], l[i], v[i] = p, p, p+1, p-1, 1000
	}
	s, err := model.NewSeries(o, h, l, c, v)
	require.NoError(t, err)

	levels := model.LevelSet{
		HTFResistance: []model.Level{{Price: 102, Side: model.Resistance, Touches: 3, VolumeWeight: 1, Strength: model.Strong}},
		LTFResistance: []model.Level{{Price: 101, Side: model.Resistance, Touches: 1, VolumeWeight: 1, Strength: model.Weak}},
	}

	got := GenerateSignals(s, levels, DefaultParams())
	require.Len(t, got, 1)
	sig := got[0]
	assert.Equal(t, model.Sell, sig.Type)
	assert.Equal(t, model.LayerContinuation, sig.Layer)
	assert.Equal(t, 100.5, sig.Entry)
	assert.InDelta(t, 102.6, sig.StopLoss, 1e-9)
	assert.InDelta(t, 98.1, sig.Target, 1e-9)
	assert.InDelta(t, 2.4/2.1, sig.RiskReward, 1e-9)
	assert.Equal(t, 55, sig.Confidence)
	assert.Equal(t, labelContinuation, sig.Label)
}

// Both layers qualify on the sweep series once an LTF support has been
// closed through; only the premium layer may answer.
func TestGenerateSignals_FirstQualifyingLayerWins(t *testing.T) {
	s := sweepSeries(t)
	p := DefaultParams()
	p.ContinuationTargetATR = 3

	htfSupport := model.Level{Price: 99.5, Side: model.Support, Touches: 6, VolumeWeight: 1, Strength: model.Strong}
	htfResistance := model.Level{Price: 110.5, Side: model.Resistance, Touches: 6, VolumeWeight: 1, Strength: model.Strong}
	ltfSupport := model.Level{Price: 100, Side: model.Support, Touches: 1, VolumeWeight: 1, Strength: model.Weak}

	// without HTF resistance the premium layer has no target and the
	// continuation layer answers alone
	fallback := GenerateSignals(s, model.LevelSet{
		HTFSupport: []model.Level{htfSupport},
		LTFSupport: []model.Level{ltfSupport},
	}, p)
	require.Len(t, fallback, 1)
	assert.Equal(t, model.LayerContinuation, fallback[0].Layer)
	assert.Equal(t, model.Buy, fallback[0].Type)

	got := GenerateSignals(s, model.LevelSet{
		HTFSupport:    []model.Level{htfSupport},
		HTFResistance: []model.Level{htfResistance},
		LTFSupport:    []model.Level{ltfSupport},
	}, p)
	require.Len(t, got, 1)
	for _, sig := range got {
		assert.Equal(t, model.LayerPremium, sig.Layer)
	}
	assert.Equal(t, model.Buy, got[0].Type)
	assert.Equal(t, 90, got[0].Confidence)
	assert.InDelta(t, 110.5, got[0].Target, 1e-9)
}

func TestGenerateSignals_ContinuationNeedsBreak(t *testing.T) {
	n := 30
	o, h, l, c, v := make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		p := 99.5
		o[i], c[i], h[i], l[i], v[i] = p, p, p+1, p-1, 1000
	}
	s, err := model.NewSeries(o, h, l, c, v)
	require.NoError(t, err)

	levels := model.LevelSet{
		HTFSupport: []model.Level{{Price: 98, Side: model.Support, Strength: model.Strong}},
		LTFSupport: []model.Level{{Price: 99, Side: model.Support, Strength: model.Weak}},
	}
	assert.Empty(t, GenerateSignals(s, levels, DefaultParams()))
}

func TestGenerateSignals_EmptyStructure(t *testing.T) {
	s := sweepSeries(t)
	levels := model.LevelSet{
		LTFSupport:    []model.Level{{Price: 99, Side: model.Support, Strength: model.Weak}},
		LTFResistance: []model.Level{{Price: 101, Side: model.Resistance, Strength: model.Weak}},
	}
	got := GenerateSignals(s, levels, DefaultParams())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRank(t *testing.T) {
	signals := []model.Signal{
		{Type: model.Sell, Confidence: 70, RiskReward: 2},
		{Type: model.Buy, Confidence: 70, RiskReward: 2},
		{Type: model.Sell, Confidence: 80, RiskReward: 1.5},
		{Type: model.Buy, Confidence: 70, RiskReward: 3},
	}
	rank(signals)
	assert.Equal(t, model.Sell, signals[0].Type)
	assert.Equal(t, 80, signals[0].Confidence)
	assert.Equal(t, 3.0, signals[1].RiskReward)
	assert.Equal(t, model.Buy, signals[2].Type)
	assert.Equal(t, model.Sell, signals[3].Type)
}

func TestRiskReward_Guard(t *testing.T) {
	_, err := riskReward(1, 0)
	assert.ErrorIs(t, err, ErrArithmeticGuard)
	_, err = riskReward(1, -2)
	assert.ErrorIs(t, err, ErrArithmeticGuard)
	rr, err := riskReward(3, 2)
	require.NoError(t, err)
	assert.Equal(t, 1.5, rr)
}

func TestGenerateSignals_RandomWalkInvariants(t *testing.T) {
	p := DefaultParams()
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		n := 60 + rng.Intn(240)
		o, h, l, c, v := make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
		price := 100.0
		for i := 0; i < n; i++ {
			open := price
			price += rng.NormFloat64()
			if price < 1 {
				price = 1
			}
			o[i], c[i] = open, price
			h[i] = max(open, price) + rng.Float64()
			l[i] = min(open, price) - rng.Float64()
			v[i] = 500 + rng.Float64()*1500
		}
		s, err := model.NewSeries(o, h, l, c, v)
		require.NoError(t, err)

		first := Analyze(model.Asset{Name: "RW"}, s, p)
		second := Analyze(model.Asset{Name: "RW"}, s, p)
		require.Equal(t, first, second, "trial %d not deterministic", trial)

		for _, sig := range first.Signals {
			switch sig.Type {
			case model.Buy:
				assert.Greater(t, sig.Target, sig.Entry)
				assert.Greater(t, sig.Entry, sig.StopLoss)
			case model.Sell:
				assert.Greater(t, sig.StopLoss, sig.Entry)
				assert.Greater(t, sig.Entry, sig.Target)
			}
			switch sig.Layer {
			case model.LayerPremium:
				assert.GreaterOrEqual(t, sig.RiskReward, p.PremiumMinRR)
				assert.GreaterOrEqual(t, sig.Confidence, p.ConfidenceFloor)
			case model.LayerContinuation:
				assert.GreaterOrEqual(t, sig.RiskReward, p.ContinuationMinRR)
			}
		}
		if first.Levels.Empty() {
			assert.Empty(t, first.Signals)
		}
	}
}
