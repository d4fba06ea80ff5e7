package model

import (
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/probreg/core/distribution"
	probregErrors "github.com/ezoic/probreg/pkg/errors"
	"github.com/ezoic/probreg/pkg/log"
)

// FitModel is an immutable snapshot pairing a model configuration with the
// opaque state produced by fitting. It is created only by Estimator.Fit and
// cannot be mutated in place, only replaced by fitting again. The fit state
// is owned exclusively by the handle; it is moved in, never copied.
type FitModel[F comparable] struct {
	estimator *Estimator[F]
	state     FitState
}

// State returns the opaque fit state. Callers must treat it as read-only.
func (fm *FitModel[F]) State() FitState {
	return fm.state
}

// Name returns the underlying model's name.
func (fm *FitModel[F]) Name() string {
	return fm.estimator.Name()
}

// Predict returns a lazy Prediction bound to this fit and the given query
// features. No model computation happens until a fidelity accessor is
// called, so callers never pay for a joint covariance when only a mean is
// needed downstream.
func (fm *FitModel[F]) Predict(features []F) (*Prediction[F], error) {
	if fm.state == nil {
		return nil, probregErrors.NewNotFittedError(fm.estimator.Name(), "Predict")
	}
	return &Prediction[F]{fitModel: fm, features: features}, nil
}

// Equal compares two fit models. Fitting may mutate derived internal state
// invisibly to the generic framework, so equality after fitting is
// undefined unless the concrete model implements StateComparer; without it
// this returns ErrPostFitEquality.
func (fm *FitModel[F]) Equal(other *FitModel[F]) (bool, error) {
	if fm.estimator.Name() != other.estimator.Name() ||
		!fm.estimator.Params().Equal(other.estimator.Params()) {
		return false, nil
	}
	sc, ok := fm.estimator.model.(StateComparer)
	if !ok {
		return false, probregErrors.WithStack(probregErrors.ErrPostFitEquality)
	}
	return sc.StateEqual(fm.state, other.state)
}

// Prediction is a transient, lazily evaluated view bound to a FitModel and
// a query feature sequence. Each fidelity accessor either calls a direct
// model implementation or derives the result from a cached richer one; the
// richest computed result is cached so one Prediction can serve several
// fidelity queries without recomputation.
type Prediction[F comparable] struct {
	fitModel *FitModel[F]
	features []F

	mu       sync.Mutex
	joint    *distribution.Joint
	marginal *distribution.Marginal
	mean     *mat.VecDense
}

// Size returns the number of query features.
func (p *Prediction[F]) Size() int {
	return len(p.features)
}

// Features returns the query features this prediction is bound to.
func (p *Prediction[F]) Features() []F {
	return p.features
}

// Joint returns the full joint prediction. It fails with a CapabilityError
// when the model does not implement joint prediction: there is no richer
// fidelity to derive a covariance from.
func (p *Prediction[F]) Joint() (_ *distribution.Joint, err error) {
	defer probregErrors.Recover(&err, "Prediction.Joint")

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jointLocked()
}

func (p *Prediction[F]) jointLocked() (*distribution.Joint, error) {
	if p.joint != nil {
		return p.joint, nil
	}

	est := p.fitModel.estimator
	jp, ok := est.model.(JointPredictor[F])
	if !ok {
		return nil, probregErrors.NewCapabilityError(est.Name(), FidelityJoint.String(), est.caps.Names())
	}

	joint, err := jp.PredictJoint(p.fitModel.state, p.features)
	if err != nil {
		return nil, probregErrors.Wrapf(err, "joint prediction from %s", est.Name())
	}
	if joint.Size() != len(p.features) {
		return nil, probregErrors.NewDimensionError("Prediction.Joint", len(p.features), joint.Size())
	}

	p.joint = joint
	return joint, nil
}

// Marginal returns the per-element marginal prediction. When the model does
// not implement marginal prediction directly, the result is derived from
// the joint covariance diagonal, which may be far more expensive than a
// dedicated implementation; the derivation is reported at Warn level.
func (p *Prediction[F]) Marginal() (_ *distribution.Marginal, err error) {
	defer probregErrors.Recover(&err, "Prediction.Marginal")

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.marginalLocked()
}

func (p *Prediction[F]) marginalLocked() (*distribution.Marginal, error) {
	if p.marginal != nil {
		return p.marginal, nil
	}

	est := p.fitModel.estimator
	if mp, ok := est.model.(MarginalPredictor[F]); ok {
		marginal, err := mp.PredictMarginal(p.fitModel.state, p.features)
		if err != nil {
			return nil, probregErrors.Wrapf(err, "marginal prediction from %s", est.Name())
		}
		if marginal.Size() != len(p.features) {
			return nil, probregErrors.NewDimensionError("Prediction.Marginal", len(p.features), marginal.Size())
		}
		p.marginal = marginal
		return marginal, nil
	}

	// Derive from the joint covariance diagonal.
	p.warnFallback(FidelityMarginal, FidelityJoint)
	joint, err := p.jointLocked()
	if err != nil {
		return nil, err
	}
	p.marginal = joint.Marginal()
	return p.marginal, nil
}

// Mean returns the point-estimate prediction, deriving it from whichever
// richer fidelity is available when the model has no dedicated mean path.
func (p *Prediction[F]) Mean() (_ *mat.VecDense, err error) {
	defer probregErrors.Recover(&err, "Prediction.Mean")

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mean != nil {
		return p.mean, nil
	}

	est := p.fitModel.estimator
	if mp, ok := est.model.(MeanPredictor[F]); ok {
		mean, meanErr := mp.PredictMean(p.fitModel.state, p.features)
		if meanErr != nil {
			return nil, probregErrors.Wrapf(meanErr, "mean prediction from %s", est.Name())
		}
		if mean.Len() != len(p.features) {
			return nil, probregErrors.NewDimensionError("Prediction.Mean", len(p.features), mean.Len())
		}
		p.mean = mean
		return mean, nil
	}

	// Derive from a cached richer result first, then from whichever richer
	// fidelity the model implements, preferring the cheaper marginal.
	if p.marginal != nil {
		p.mean = p.marginal.Mean
		return p.mean, nil
	}
	if p.joint != nil {
		p.mean = p.joint.Mean
		return p.mean, nil
	}

	if est.caps.Has(CapMarginal) {
		p.warnFallback(FidelityMean, FidelityMarginal)
		marginal, marginalErr := p.marginalLocked()
		if marginalErr != nil {
			return nil, marginalErr
		}
		p.mean = marginal.Mean
		return p.mean, nil
	}

	p.warnFallback(FidelityMean, FidelityJoint)
	joint, jointErr := p.jointLocked()
	if jointErr != nil {
		return nil, jointErr
	}
	p.mean = joint.Mean
	return p.mean, nil
}

// warnFallback reports a fallback derivation through the injected logger.
func (p *Prediction[F]) warnFallback(requested, derivedFrom Fidelity) {
	logger := p.fitModel.estimator.logger
	if logger == nil {
		return
	}
	logger.Warn("Prediction fidelity derived through fallback path",
		log.ModelNameKey, p.fitModel.estimator.Name(),
		log.FidelityKey, requested.String(),
		log.DerivedFromKey, derivedFrom.String(),
		log.FeaturesKey, len(p.features),
	)
}
