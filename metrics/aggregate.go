package metrics

import (
	"github.com/montanaflynn/stats"

	probregErrors "github.com/ezoic/probreg/pkg/errors"
)

// Aggregator reduces a vector of per-fold (or per-dataset) scores to one
// scalar. Cross-validation returns score vectors and leaves aggregation to
// the caller; the tuning objective composes an Aggregator over them.
type Aggregator func(scores []float64) (float64, error)

// MeanAggregator averages the scores.
func MeanAggregator(scores []float64) (float64, error) {
	if len(scores) == 0 {
		return 0, probregErrors.NewValueError("metrics.MeanAggregator", "no scores to aggregate")
	}
	mean, err := stats.Mean(stats.Float64Data(scores))
	if err != nil {
		return 0, probregErrors.Wrap(err, "aggregating scores")
	}
	return mean, nil
}

// MedianAggregator takes the median score, which is robust to a single
// pathological fold.
func MedianAggregator(scores []float64) (float64, error) {
	if len(scores) == 0 {
		return 0, probregErrors.NewValueError("metrics.MedianAggregator", "no scores to aggregate")
	}
	median, err := stats.Median(stats.Float64Data(scores))
	if err != nil {
		return 0, probregErrors.Wrap(err, "aggregating scores")
	}
	return median, nil
}

// ScoreSummary describes a score vector for logging and reporting.
type ScoreSummary struct {
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summarize computes descriptive statistics over a score vector.
func Summarize(scores []float64) (ScoreSummary, error) {
	if len(scores) == 0 {
		return ScoreSummary{}, probregErrors.NewValueError("metrics.Summarize", "no scores to summarize")
	}

	data := stats.Float64Data(scores)
	mean, err := stats.Mean(data)
	if err != nil {
		return ScoreSummary{}, probregErrors.Wrap(err, "summarizing scores")
	}
	median, err := stats.Median(data)
	if err != nil {
		return ScoreSummary{}, probregErrors.Wrap(err, "summarizing scores")
	}
	stddev, err := stats.StandardDeviation(data)
	if err != nil {
		return ScoreSummary{}, probregErrors.Wrap(err, "summarizing scores")
	}
	min, err := stats.Min(data)
	if err != nil {
		return ScoreSummary{}, probregErrors.Wrap(err, "summarizing scores")
	}
	max, err := stats.Max(data)
	if err != nil {
		return ScoreSummary{}, probregErrors.Wrap(err, "summarizing scores")
	}

	return ScoreSummary{Mean: mean, Median: median, StdDev: stddev, Min: min, Max: max}, nil
}
