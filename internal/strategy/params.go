package strategy

import "SwingSentinel/internal/structure"

// Params holds every tunable constant of the structure and signal stages.
// Zero values are not substituted; start from DefaultParams.
type Params struct {
	SwingMinSeparation int     `yaml:"swing_min_separation"`
	SwingMinSamples    int     `yaml:"swing_min_samples"`
	TouchTolerancePct  float64 `yaml:"touch_tolerance_pct"`
	StrengthThreshold  float64 `yaml:"strength_threshold"`
	RecentSwings       int     `yaml:"recent_swings"`
	HTFBucketSize      int     `yaml:"htf_bucket_size"`
	LTFBucketSize      int     `yaml:"ltf_bucket_size"`

	ATRPeriod      int `yaml:"atr_period"`
	VolumeLookback int `yaml:"volume_lookback"`
	RSIPeriod      int `yaml:"rsi_period"`

	PremiumMinRR    float64 `yaml:"premium_min_rr"`
	PremiumStopATR  float64 `yaml:"premium_stop_atr"`
	ConfidenceFloor int     `yaml:"confidence_floor"`

	ContinuationMinRR      float64 `yaml:"continuation_min_rr"`
	ContinuationStopATR    float64 `yaml:"continuation_stop_atr"`
	ContinuationTargetATR  float64 `yaml:"continuation_target_atr"`
	ContinuationConfidence int     `yaml:"continuation_confidence"`
	BreakHoldLookback      int     `yaml:"break_hold_lookback"`

	// ExtremesLookback is the minimum history for the long and short range
	// extremes used as key level candidates.
	ExtremesLookback int `yaml:"extremes_lookback"`
}

// DefaultParams returns the stock configuration.
func DefaultParams() Params {
	return Params{
		SwingMinSeparation: structure.DefaultMinSeparation,
		SwingMinSamples:    structure.DefaultMinSamples,
		TouchTolerancePct:  structure.DefaultTouchTolerancePct,
		StrengthThreshold:  structure.DefaultStrengthThreshold,
		RecentSwings:       structure.DefaultRecentSwings,
		HTFBucketSize:      structure.DefaultBucketSize,
		LTFBucketSize:      structure.DefaultBucketSize,

		ATRPeriod:      14,
		VolumeLookback: 20,
		RSIPeriod:      14,

		PremiumMinRR:    1.3,
		PremiumStopATR:  0.4,
		ConfidenceFloor: 60,

		ContinuationMinRR:      1.1,
		ContinuationStopATR:    0.3,
		ContinuationTargetATR:  1.2,
		ContinuationConfidence: 55,
		BreakHoldLookback:      10,

		ExtremesLookback: 100,
	}
}

// Detector builds the swing detector for these params.
func (p Params) Detector() structure.Detector {
	return structure.NewDetector(p.SwingMinSeparation, p.SwingMinSamples)
}

// Classifier builds the level classifier for these params.
func (p Params) Classifier() structure.Classifier {
	return structure.Classifier{
		TouchTolerancePct: p.TouchTolerancePct,
		StrengthThreshold: p.StrengthThreshold,
		RecentSwings:      p.RecentSwings,
		HTFBucketSize:     p.HTFBucketSize,
		LTFBucketSize:     p.LTFBucketSize,
	}
}
