package tune

import (
	"math"

	"github.com/ezoic/probreg/core/dataset"
	"github.com/ezoic/probreg/core/model"
	"github.com/ezoic/probreg/core/params"
	"github.com/ezoic/probreg/crossval"
	"github.com/ezoic/probreg/metrics"
	probregErrors "github.com/ezoic/probreg/pkg/errors"
	"github.com/ezoic/probreg/pkg/log"
)

// invalidPenalty stands in for NaN or infinite objective values when
// reporting to the optimizer, which requires finite function values to
// keep its simplex ordered. Genuine objectives must stay below this
// value; an aggregated score at or above it would be indistinguishable
// from a rejected candidate. Best-point tracking in Func only ever
// records valid evaluations, so the penalty can never leak into a
// Result.
const invalidPenalty = 1e10

// objective evaluates one candidate point in unconstrained space. It owns
// the bookkeeping the tuner reads back after optimization finishes.
type objective[F comparable] struct {
	estimator *model.Estimator[F]
	datasets  []*dataset.Dataset[F]
	metric    metrics.MarginalMetric
	aggregate metrics.Aggregator
	logger    log.Logger

	names       []string
	transforms  []Transform
	concurrency int

	evaluations int
	invalid     int
	bestValue   float64
	bestParams  map[string]float64
}

func newObjective[F comparable](t *Tuner[F]) *objective[F] {
	return &objective[F]{
		estimator:   t.estimator,
		datasets:    t.datasets,
		metric:      t.metric,
		aggregate:   t.aggregate,
		logger:      t.logger,
		names:       t.tunable,
		transforms:  t.transforms,
		concurrency: t.cfg.Concurrency,
		bestValue:   math.Inf(1),
	}
}

// evaluate computes the raw objective at a candidate point: the aggregated
// cross-validation score over every dataset minus the prior log likelihood
// of the full parameter store. NaN propagates out untouched so the caller
// can decide how to report it.
func (o *objective[F]) evaluate(x []float64) float64 {
	values := make(map[string]float64, len(o.names))
	for i, name := range o.names {
		values[name] = o.transforms[i].From(x[i])
	}

	store := o.estimator.Params()
	if !validCandidate(store, values) {
		return math.NaN()
	}
	if err := store.SetValues(values); err != nil {
		return math.NaN()
	}

	scores := make([]float64, 0, totalSize(o.datasets))
	cv := crossval.New(o.estimator, crossval.WithConcurrency(o.concurrency))
	for _, ds := range o.datasets {
		foldScores, err := cv.ScoresMarginal(o.metric, ds, crossval.LeaveOneOut(ds.Size()))
		if err != nil {
			return math.NaN()
		}
		scores = append(scores, foldScores...)
	}

	aggregated, err := o.aggregate(scores)
	if err != nil {
		return math.NaN()
	}
	return aggregated - store.PriorLogLikelihood()
}

// Func adapts evaluate for the optimizer: invalid values become a large
// finite penalty and the best valid point seen so far is recorded.
func (o *objective[F]) Func(x []float64) float64 {
	o.evaluations++
	value := o.evaluate(x)
	if probregErrors.IsInvalid(value) {
		o.invalid++
		o.logger.Debug("objective evaluation invalid",
			log.EvaluationKey, o.evaluations,
			log.ObjectiveKey, value)
		return invalidPenalty
	}
	if value < o.bestValue {
		o.bestValue = value
		o.bestParams = make(map[string]float64, len(o.names))
		for i, name := range o.names {
			o.bestParams[name] = o.transforms[i].From(x[i])
		}
	}
	o.logger.Debug("objective evaluated",
		log.EvaluationKey, o.evaluations,
		log.ObjectiveKey, value)
	return value
}

// validCandidate checks each proposed value against its parameter's prior
// before any of them is written into the store.
func validCandidate(store *params.Store, values map[string]float64) bool {
	for name, value := range values {
		param, ok := store.Get(name)
		if !ok {
			return false
		}
		if param.Prior != nil && !param.Prior.IsValid(value) {
			return false
		}
	}
	return true
}

func totalSize[F comparable](datasets []*dataset.Dataset[F]) int {
	n := 0
	for _, ds := range datasets {
		n += ds.Size()
	}
	return n
}
