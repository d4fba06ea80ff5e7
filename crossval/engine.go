package crossval

import (
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/probreg/core/dataset"
	"github.com/ezoic/probreg/core/distribution"
	"github.com/ezoic/probreg/core/model"
	"github.com/ezoic/probreg/metrics"
	probregErrors "github.com/ezoic/probreg/pkg/errors"
	"github.com/ezoic/probreg/pkg/log"
)

// CrossValidator fits and predicts a model independently on every fold of a
// partition. Folds share no mutable state, so they may be evaluated
// concurrently; only the collection of results into the shared-by-name map
// is serialized.
type CrossValidator[F comparable] struct {
	estimator   *model.Estimator[F]
	logger      log.Logger
	concurrency int
}

// Option configures a CrossValidator.
type Option func(*config)

type config struct {
	logger      log.Logger
	concurrency int
}

// WithLogger injects a structured logger for per-fold progress records.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithConcurrency sets the maximum number of folds evaluated at once. The
// default of 1 keeps evaluation sequential; values above 1 opt in to
// parallel fold evaluation.
func WithConcurrency(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// New creates a CrossValidator around an estimator.
func New[F comparable](estimator *model.Estimator[F], opts ...Option) *CrossValidator[F] {
	cfg := config{concurrency: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &CrossValidator[F]{
		estimator:   estimator,
		logger:      cfg.logger,
		concurrency: cfg.concurrency,
	}
}

// Predictions fits the model on each fold's training set and predicts on
// its test set, returning lazy predictions keyed by fold name. No fidelity
// is computed yet; callers pick mean, marginal or joint per fold afterwards.
func (cv *CrossValidator[F]) Predictions(ds *dataset.Dataset[F], indexer *FoldIndexer) (map[string]*model.Prediction[F], error) {
	folds, err := Folds(ds, indexer)
	if err != nil {
		return nil, err
	}
	return cv.foldPredictions(folds)
}

func (cv *CrossValidator[F]) foldPredictions(folds []Fold[F]) (map[string]*model.Prediction[F], error) {
	start := time.Now()
	predictions := make(map[string]*model.Prediction[F], len(folds))

	var mu sync.Mutex
	var group errgroup.Group
	group.SetLimit(cv.concurrency)

	for _, fold := range folds {
		group.Go(func() error {
			pred, err := cv.estimator.FitAndPredict(fold.Train.Features, fold.Train.Targets, fold.Test.Features)
			if err != nil {
				return probregErrors.Wrapf(err, "fold %q", fold.Name)
			}
			mu.Lock()
			predictions[fold.Name] = pred
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if cv.logger != nil {
		cv.logger.Info("Cross-validation predictions completed",
			log.ModelNameKey, cv.estimator.Name(),
			log.OperationKey, "fit_and_predict",
			log.FoldCountKey, len(folds),
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	}
	return predictions, nil
}

// ScoresMean computes per-fold scores of a mean metric, ordered consistently
// with the indexer's iteration order. The result is a score vector, not an
// aggregate; aggregation is the caller's choice.
func (cv *CrossValidator[F]) ScoresMean(metric metrics.MeanMetric, ds *dataset.Dataset[F], indexer *FoldIndexer) ([]float64, error) {
	folds, err := Folds(ds, indexer)
	if err != nil {
		return nil, err
	}
	predictions, err := cv.foldPredictions(folds)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, 0, len(folds))
	for _, fold := range folds {
		mean, err := predictions[fold.Name].Mean()
		if err != nil {
			return nil, err
		}
		score, err := metric(mean, fold.Test.Targets)
		if err != nil {
			return nil, probregErrors.Wrapf(err, "scoring fold %q", fold.Name)
		}
		scores = append(scores, score)
	}
	return scores, nil
}

// ScoresMarginal computes per-fold scores of a marginal metric in indexer
// order.
func (cv *CrossValidator[F]) ScoresMarginal(metric metrics.MarginalMetric, ds *dataset.Dataset[F], indexer *FoldIndexer) ([]float64, error) {
	folds, err := Folds(ds, indexer)
	if err != nil {
		return nil, err
	}
	predictions, err := cv.foldPredictions(folds)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, 0, len(folds))
	for _, fold := range folds {
		marginal, err := predictions[fold.Name].Marginal()
		if err != nil {
			return nil, err
		}
		score, err := metric(marginal, fold.Test.Targets)
		if err != nil {
			return nil, probregErrors.Wrapf(err, "scoring fold %q", fold.Name)
		}
		scores = append(scores, score)
	}
	return scores, nil
}

// ScoresJoint computes per-fold scores of a joint metric in indexer order.
func (cv *CrossValidator[F]) ScoresJoint(metric metrics.JointMetric, ds *dataset.Dataset[F], indexer *FoldIndexer) ([]float64, error) {
	if err := cv.estimator.RequireFidelity(model.FidelityJoint); err != nil {
		return nil, err
	}

	folds, err := Folds(ds, indexer)
	if err != nil {
		return nil, err
	}
	predictions, err := cv.foldPredictions(folds)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, 0, len(folds))
	for _, fold := range folds {
		joint, err := predictions[fold.Name].Joint()
		if err != nil {
			return nil, err
		}
		score, err := metric(joint, fold.Test.Targets)
		if err != nil {
			return nil, probregErrors.Wrapf(err, "scoring fold %q", fold.Name)
		}
		scores = append(scores, score)
	}
	return scores, nil
}

// LeaveOneOutNLL is a convenience wrapper computing the summed negative log
// likelihood of each held-out point under leave-one-out cross-validation.
// This is the default objective used when comparing model configurations.
func (cv *CrossValidator[F]) LeaveOneOutNLL(ds *dataset.Dataset[F]) (float64, error) {
	scores, err := cv.ScoresMarginal(metrics.NegativeLogLikelihood, ds, LeaveOneOut(ds.Size()))
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, s := range scores {
		total += s
	}
	return total, nil
}

// Means extracts the mean prediction of every fold.
func Means[F comparable](predictions map[string]*model.Prediction[F]) (map[string]*mat.VecDense, error) {
	means := make(map[string]*mat.VecDense, len(predictions))
	for name, pred := range predictions {
		mean, err := pred.Mean()
		if err != nil {
			return nil, probregErrors.Wrapf(err, "fold %q", name)
		}
		means[name] = mean
	}
	return means, nil
}

// Marginals extracts the marginal prediction of every fold.
func Marginals[F comparable](predictions map[string]*model.Prediction[F]) (map[string]*distribution.Marginal, error) {
	marginals := make(map[string]*distribution.Marginal, len(predictions))
	for name, pred := range predictions {
		marginal, err := pred.Marginal()
		if err != nil {
			return nil, probregErrors.Wrapf(err, "fold %q", name)
		}
		marginals[name] = marginal
	}
	return marginals, nil
}

// Joints extracts the joint prediction of every fold.
func Joints[F comparable](predictions map[string]*model.Prediction[F]) (map[string]*distribution.Joint, error) {
	joints := make(map[string]*distribution.Joint, len(predictions))
	for name, pred := range predictions {
		joint, err := pred.Joint()
		if err != nil {
			return nil, probregErrors.Wrapf(err, "fold %q", name)
		}
		joints[name] = joint
	}
	return joints, nil
}
