package domain

import "math"

// ThresholdUnit says how a cutoff is expressed.
type ThresholdUnit int

const (
	// ThresholdNone scores the full population.
	ThresholdNone ThresholdUnit = iota
	// ThresholdPercentile selects the top percentage of ranked rows.
	ThresholdPercentile
	// ThresholdTopN selects an absolute number of ranked rows.
	ThresholdTopN
)

// Parameter keys appended to the identifier for thresholded evaluations.
const (
	PercentileParamKey = "pct"
	TopNParamKey       = "abs"
)

const fullPopulationPercentile = 100.0

// Threshold describes how binary predictions were derived from ranked scores.
type Threshold struct {
	Unit       ThresholdUnit
	Percentile float64
	TopN       int

	// WholePercentile marks a percentile configured as an integer; its
	// identifier renders without a decimal part ("50_pct").
	WholePercentile bool
}

// NoThreshold describes a full-population evaluation.
func NoThreshold() Threshold {
	return Threshold{Unit: ThresholdNone}
}

// PercentileThreshold selects the top pct percent of rows.
func PercentileThreshold(pct float64) Threshold {
	return Threshold{Unit: ThresholdPercentile, Percentile: pct}
}

// WholePercentileThreshold selects the top pct percent of rows, pct given as an integer.
func WholePercentileThreshold(pct int) Threshold {
	return Threshold{Unit: ThresholdPercentile, Percentile: float64(pct), WholePercentile: true}
}

// TopNThreshold selects the top n rows.
func TopNThreshold(n int) Threshold {
	return Threshold{Unit: ThresholdTopN, TopN: n}
}

// CutoffIndex returns how many of n ranked rows are marked positive.
// The result is clamped to [0, n].
func (t Threshold) CutoffIndex(n int) int {
	var cutoff int

	switch t.Unit {
	case ThresholdPercentile:
		cutoff = int(math.Floor(float64(n) * (t.Percentile / 100.0)))
	case ThresholdTopN:
		cutoff = t.TopN
	default:
		cutoff = int(math.Floor(float64(n) * (fullPopulationPercentile / 100.0)))
	}

	if cutoff < 0 {
		return 0
	}

	if cutoff > n {
		return n
	}

	return cutoff
}

// Params returns the threshold as identifier parameters: empty, {pct: v} or {abs: v}.
func (t Threshold) Params() Params {
	switch t.Unit {
	case ThresholdPercentile:
		if t.WholePercentile {
			return Params{{Key: PercentileParamKey, Value: int(t.Percentile)}}
		}

		return Params{{Key: PercentileParamKey, Value: t.Percentile}}
	case ThresholdTopN:
		return Params{{Key: TopNParamKey, Value: t.TopN}}
	default:
		return nil
	}
}
