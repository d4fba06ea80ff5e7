package tune

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/ezoic/probreg/core/dataset"
	"github.com/ezoic/probreg/core/model"
	"github.com/ezoic/probreg/core/params"
	"github.com/ezoic/probreg/metrics"
	probregErrors "github.com/ezoic/probreg/pkg/errors"
	"github.com/ezoic/probreg/pkg/log"
)

// Config controls the optimization loop. It is supplied once at tuner
// construction; a zero value selects the defaults below.
type Config struct {
	// MaxEvaluations caps the number of objective evaluations. Defaults
	// to 100.
	MaxEvaluations int

	// Tolerance is the absolute change in objective value below which the
	// search is considered converged. Defaults to 1e-6.
	Tolerance float64

	// Concurrency bounds the number of folds fitted in parallel inside a
	// single objective evaluation. Defaults to 1.
	Concurrency int
}

func (c Config) withDefaults() Config {
	if c.MaxEvaluations <= 0 {
		c.MaxEvaluations = 100
	}
	if c.Tolerance <= 0 {
		c.Tolerance = 1e-6
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	return c
}

// Result reports the outcome of a tuning run.
type Result struct {
	// Params holds the best parameter values found, keyed by name. Fixed
	// parameters are included at their held values.
	Params map[string]float64

	// Objective is the objective value at Params.
	Objective float64

	// Evaluations counts objective evaluations performed.
	Evaluations int

	// InvalidEvaluations counts evaluations whose objective came back NaN
	// or infinite and was reported to the optimizer as a penalty.
	InvalidEvaluations int
}

// Tuner searches an estimator's parameter space for the values minimizing
// a cross-validated objective over one or more training datasets.
//
// The objective for a candidate point is the aggregated per-fold metric
// under leave-one-out cross-validation, summed over every dataset, minus
// the prior log likelihood of the parameter store. Parameters whose prior
// is marked fixed are excluded from the search vector and held at their
// current values.
type Tuner[F comparable] struct {
	estimator *model.Estimator[F]
	metric    metrics.MarginalMetric
	aggregate metrics.Aggregator
	datasets  []*dataset.Dataset[F]
	cfg       Config
	logger    log.Logger

	tunable    []string
	transforms []Transform
}

// Option configures a Tuner.
type Option func(*tunerOptions)

type tunerOptions struct {
	logger log.Logger
}

// WithLogger routes the tuner's diagnostics to the given logger.
func WithLogger(logger log.Logger) Option {
	return func(o *tunerOptions) { o.logger = logger }
}

// New builds a tuner for the estimator over the given datasets. The metric
// scores each held-out fold and the aggregator collapses the per-fold
// scores into a scalar; at least one non-empty dataset and one tunable
// parameter are required.
func New[F comparable](estimator *model.Estimator[F], metric metrics.MarginalMetric, aggregate metrics.Aggregator, datasets []*dataset.Dataset[F], cfg Config, opts ...Option) (*Tuner[F], error) {
	if len(datasets) == 0 {
		return nil, probregErrors.NewValueError("tune.New", "at least one dataset is required")
	}
	for _, ds := range datasets {
		if ds.Size() == 0 {
			return nil, probregErrors.Wrap(probregErrors.ErrEmptyData, "tune.New")
		}
	}

	options := tunerOptions{logger: log.GetLoggerWithName("tune")}
	for _, opt := range opts {
		opt(&options)
	}

	store := estimator.Params()
	var tunable []string
	var transforms []Transform
	for _, name := range store.Names() {
		param, _ := store.Get(name)
		if params.IsFixed(param.Prior) {
			continue
		}
		tunable = append(tunable, name)
		transforms = append(transforms, transformFor(param.Prior))
	}
	if len(tunable) == 0 {
		return nil, probregErrors.NewValueError("tune.New", "no tunable parameters: every prior is fixed")
	}

	return &Tuner[F]{
		estimator:  estimator,
		metric:     metric,
		aggregate:  aggregate,
		datasets:   datasets,
		cfg:        cfg.withDefaults(),
		logger:     options.logger,
		tunable:    tunable,
		transforms: transforms,
	}, nil
}

// Tune runs the search and returns the best parameters found. The
// estimator's parameter store is restored to its pre-search values before
// returning; apply the result explicitly with SetValues.
func (t *Tuner[F]) Tune() (_ *Result, err error) {
	defer probregErrors.Recover(&err, "Tuner.Tune")

	store := t.estimator.Params()
	initial := store.Values()
	defer func() {
		if restoreErr := store.SetValues(initial); restoreErr != nil && err == nil {
			err = restoreErr
		}
	}()

	x0 := make([]float64, len(t.tunable))
	for i, name := range t.tunable {
		x0[i] = t.transforms[i].To(store.Value(name))
		if probregErrors.IsInvalid(x0[i]) {
			// A start point on the support boundary (e.g. exactly 0 under a
			// lower-bounded prior) maps to -Inf and the simplex can never
			// move off it.
			return nil, probregErrors.NewValueError("Tuner.Tune",
				fmt.Sprintf("parameter %q = %v transforms to a non-finite start point", name, store.Value(name)))
		}
	}

	obj := newObjective(t)
	start := time.Now()
	t.logger.Info("tuning started",
		log.ModelNameKey, t.estimator.Name(),
		log.DatasetsKey, len(t.datasets),
		log.OperationKey, "tune")

	problem := optimize.Problem{Func: obj.Func}
	settings := &optimize.Settings{
		FuncEvaluations: t.cfg.MaxEvaluations,
		Converger: &optimize.FunctionConverge{
			Absolute:   t.cfg.Tolerance,
			Iterations: t.cfg.MaxEvaluations,
		},
	}
	optResult, optErr := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if optErr != nil && obj.bestParams == nil {
		return nil, probregErrors.Wrap(optErr, "Tuner.Tune: optimization failed")
	}

	best := obj.bestParams
	objective := obj.bestValue
	if best == nil {
		// Every evaluation was invalid. Fall back to the optimizer's final
		// point so the caller still sees where the search ended up.
		best = make(map[string]float64, len(t.tunable))
		for i, name := range t.tunable {
			best[name] = t.transforms[i].From(optResult.X[i])
		}
		objective = math.NaN()
	}
	for name, value := range initial {
		if _, ok := best[name]; !ok {
			best[name] = value
		}
	}

	t.logger.Info("tuning finished",
		log.ModelNameKey, t.estimator.Name(),
		log.ObjectiveKey, objective,
		log.EvaluationKey, obj.evaluations,
		log.InvalidEvalsKey, obj.invalid,
		log.DurationMsKey, time.Since(start).Milliseconds())

	return &Result{
		Params:             best,
		Objective:          objective,
		Evaluations:        obj.evaluations,
		InvalidEvaluations: obj.invalid,
	}, nil
}
