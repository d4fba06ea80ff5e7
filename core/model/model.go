// Package model provides the capability-dispatching contract every
// probabilistic regression model satisfies.
//
// A concrete model implements Fit plus whichever of the three prediction
// fidelities (mean, marginal, joint) it can produce efficiently. The
// Estimator wrapper detects the implemented fidelities once at construction
// and records them in an explicit Capabilities descriptor; requests for a
// missing fidelity are served by deriving from a richer one the model does
// provide (marginal from the joint covariance diagonal, mean from either),
// or rejected with a CapabilityError when no derivation chain exists.
//
// Derivations can be asymptotically worse than a dedicated implementation,
// so every fallback is reported at Warn level through the injected logger.
// Model authors opt in to the cost by omission, never by silent error.
//
// Example usage:
//
//	est, err := model.NewEstimator[float64](gp.New())
//	if err != nil {
//		log.Fatal(err)
//	}
//	fit, err := est.Fit(features, targets)
//	pred, err := fit.Predict(queryFeatures)
//	marginal, err := pred.Marginal()
package model

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/probreg/core/dataset"
	"github.com/ezoic/probreg/core/distribution"
	"github.com/ezoic/probreg/core/params"
	probregErrors "github.com/ezoic/probreg/pkg/errors"
	"github.com/ezoic/probreg/pkg/log"
)

// FitState is the opaque, model-specific state produced by fitting and
// consumed by the prediction methods. It may be large (e.g. a factorized
// covariance), so ownership transfers into the FitModel handle and must
// never be copied.
type FitState interface{}

// Model is the contract every concrete model satisfies. A Model on its own
// can only be fit; prediction fidelities are declared by additionally
// implementing MeanPredictor, MarginalPredictor and/or JointPredictor.
type Model[F comparable] interface {
	// Name returns a human-readable model identifier.
	Name() string

	// Params returns the model's named hyperparameters. The returned
	// store is live: the tuning engine mutates it through SetValues.
	Params() *params.Store

	// Fit trains on features and targets and returns the opaque fit
	// state. Implementations may assume the framework has already
	// validated that features is non-empty and matches targets in length.
	Fit(features []F, targets *distribution.Marginal) (FitState, error)
}

// MeanPredictor is implemented by models with a dedicated mean-only
// prediction path.
type MeanPredictor[F comparable] interface {
	PredictMean(state FitState, features []F) (*mat.VecDense, error)
}

// MarginalPredictor is implemented by models that can produce per-element
// variances without building a full covariance.
type MarginalPredictor[F comparable] interface {
	PredictMarginal(state FitState, features []F) (*distribution.Marginal, error)
}

// JointPredictor is implemented by models that can produce a full joint
// covariance over the query features.
type JointPredictor[F comparable] interface {
	PredictJoint(state FitState, features []F) (*distribution.Joint, error)
}

// FitPredictor is an optional interface for models that can compute test
// predictions during fitting more cheaply than the fit-then-predict
// composition (e.g. incremental refits across leave-one-out folds). An
// override must be observably equivalent to the default composition.
type FitPredictor[F comparable] interface {
	FitAndPredict(trainFeatures []F, trainTargets *distribution.Marginal, testFeatures []F) (FitState, *distribution.Marginal, error)
}

// StateComparer is an optional interface a model may implement to give
// post-fit equality a meaningful definition. Without it, comparing two fit
// models is an error: fitting may mutate derived internal state invisibly
// to the generic framework.
type StateComparer interface {
	StateEqual(a, b FitState) (bool, error)
}

// Option configures an Estimator.
type Option func(*options)

type options struct {
	logger log.Logger
}

// WithLogger injects a structured logger. Without one the estimator is
// silent, including on fallback derivation paths.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Estimator wraps a concrete Model with precondition checks and
// capability-based prediction dispatch.
type Estimator[F comparable] struct {
	model  Model[F]
	caps   Capabilities
	logger log.Logger
}

// NewEstimator wraps a model, detecting its prediction capabilities. It
// fails with a CapabilityError if the model implements neither marginal nor
// joint prediction: a mean-only model has no way to back-derive
// uncertainty, so it cannot satisfy the framework contract.
func NewEstimator[F comparable](m Model[F], opts ...Option) (*Estimator[F], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	caps := detectCapabilities(m)
	if !caps.Usable() {
		return nil, probregErrors.NewCapabilityError(m.Name(), "marginal or joint", caps.Names())
	}

	return &Estimator[F]{
		model:  m,
		caps:   caps,
		logger: o.logger,
	}, nil
}

// detectCapabilities probes the optional predictor interfaces exactly once.
func detectCapabilities[F comparable](m Model[F]) Capabilities {
	var caps Capabilities
	if _, ok := m.(MeanPredictor[F]); ok {
		caps |= CapMean
	}
	if _, ok := m.(MarginalPredictor[F]); ok {
		caps |= CapMarginal
	}
	if _, ok := m.(JointPredictor[F]); ok {
		caps |= CapJoint
	}
	return caps
}

// Model returns the wrapped model.
func (e *Estimator[F]) Model() Model[F] {
	return e.model
}

// Name returns the wrapped model's name.
func (e *Estimator[F]) Name() string {
	return e.model.Name()
}

// Params returns the wrapped model's parameter store.
func (e *Estimator[F]) Params() *params.Store {
	return e.model.Params()
}

// Capabilities returns the detected capability descriptor.
func (e *Estimator[F]) Capabilities() Capabilities {
	return e.caps
}

// RequireFidelity fails with a CapabilityError if the given fidelity can be
// produced neither directly nor by derivation. Callers that know which
// fidelity they will request should call this at model-selection time so
// capability errors surface before any computation runs.
func (e *Estimator[F]) RequireFidelity(f Fidelity) error {
	if !e.caps.Supports(f) {
		return probregErrors.NewCapabilityError(e.model.Name(), f.String(), e.caps.Names())
	}
	return nil
}

// Fit trains the model and returns an immutable FitModel handle. It fails
// with a precondition violation if features is empty or does not match
// targets in length.
func (e *Estimator[F]) Fit(features []F, targets *distribution.Marginal) (_ *FitModel[F], err error) {
	defer probregErrors.Recover(&err, "Estimator.Fit")

	if len(features) == 0 {
		return nil, probregErrors.NewValueError("Estimator.Fit", "empty feature set")
	}
	if targets == nil {
		return nil, probregErrors.NewValueError("Estimator.Fit", "nil targets")
	}
	if len(features) != targets.Size() {
		return nil, probregErrors.NewDimensionError("Estimator.Fit", len(features), targets.Size())
	}

	start := time.Now()
	state, err := e.model.Fit(features, targets)
	if err != nil {
		return nil, probregErrors.Wrapf(err, "fitting %s", e.model.Name())
	}

	if e.logger != nil {
		e.logger.Info("Training completed",
			log.ModelNameKey, e.model.Name(),
			log.OperationKey, "fit",
			log.SamplesKey, len(features),
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	}

	return &FitModel[F]{estimator: e, state: state}, nil
}

// FitDataset is a convenience wrapper unpacking a dataset into features and
// targets.
func (e *Estimator[F]) FitDataset(ds *dataset.Dataset[F]) (*FitModel[F], error) {
	return e.Fit(ds.Features, ds.Targets)
}

// FitAndPredict fits on the training data and predicts on the test
// features. The default is fit followed by predict; models implementing
// FitPredictor override the composition with an equivalent but cheaper
// path, and the returned Prediction comes preloaded with their marginal.
func (e *Estimator[F]) FitAndPredict(trainFeatures []F, trainTargets *distribution.Marginal, testFeatures []F) (*Prediction[F], error) {
	if fp, ok := e.model.(FitPredictor[F]); ok {
		if len(trainFeatures) == 0 {
			return nil, probregErrors.NewValueError("Estimator.FitAndPredict", "empty feature set")
		}
		if trainTargets == nil {
			return nil, probregErrors.NewValueError("Estimator.FitAndPredict", "nil targets")
		}
		if len(trainFeatures) != trainTargets.Size() {
			return nil, probregErrors.NewDimensionError("Estimator.FitAndPredict", len(trainFeatures), trainTargets.Size())
		}
		state, marginal, err := fp.FitAndPredict(trainFeatures, trainTargets, testFeatures)
		if err != nil {
			return nil, probregErrors.Wrapf(err, "fit-and-predict %s", e.model.Name())
		}
		if marginal.Size() != len(testFeatures) {
			return nil, probregErrors.NewDimensionError("Estimator.FitAndPredict", len(testFeatures), marginal.Size())
		}
		fm := &FitModel[F]{estimator: e, state: state}
		return &Prediction[F]{fitModel: fm, features: testFeatures, marginal: marginal}, nil
	}

	fm, err := e.Fit(trainFeatures, trainTargets)
	if err != nil {
		return nil, err
	}
	return fm.Predict(testFeatures)
}

// Equal compares two unfit estimators by model name and parameters. Fit
// state never enters: a FitModel carries its own equality contract.
func (e *Estimator[F]) Equal(other *Estimator[F]) bool {
	return e.model.Name() == other.model.Name() &&
		e.model.Params().Equal(other.model.Params())
}
