// Package linear implements Bayesian linear regression over scalar
// features with an intercept term.
//
// The model implements mean and marginal prediction. It does not build a
// joint covariance over query points, so joint requests fail with a
// capability error rather than silently dropping cross covariances.
package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/probreg/core/distribution"
	"github.com/ezoic/probreg/core/model"
	"github.com/ezoic/probreg/core/params"
	probregErrors "github.com/ezoic/probreg/pkg/errors"
)

// Parameter names exposed through the model's store.
const (
	ParamPriorVariance = "prior_variance"
	ParamNoise         = "noise"
)

// Bayesian is a linear regressor with a zero-mean Gaussian prior on the
// intercept and slope.
type Bayesian struct {
	params *params.Store
}

// fitState holds the weight posterior: its mean and 2x2 covariance over
// (intercept, slope).
type fitState struct {
	weights    *mat.VecDense
	covariance *mat.SymDense
	noise      float64
}

// New constructs a Bayesian linear model with a broad weight prior and a
// small default noise floor.
func New() *Bayesian {
	store := params.NewStore()
	store.Set(ParamPriorVariance, params.Parameter{Value: 100})
	store.Set(ParamNoise, params.Parameter{Value: 1e-2})
	return &Bayesian{params: store}
}

// Name implements model.Model.
func (b *Bayesian) Name() string { return "BayesianLinear" }

// Params implements model.Model.
func (b *Bayesian) Params() *params.Store { return b.params }

// Fit implements model.Model. It computes the Gaussian weight posterior in
// closed form, weighting each observation by its combined measurement and
// model noise.
func (b *Bayesian) Fit(features []float64, targets *distribution.Marginal) (model.FitState, error) {
	priorVariance := b.params.Value(ParamPriorVariance)
	noise := b.params.Value(ParamNoise)
	if priorVariance <= 0 {
		return nil, probregErrors.NewValidationError(ParamPriorVariance, "must be positive", priorVariance)
	}

	// Precision of the weight posterior: X^T W X + I / priorVariance, with
	// W the per-observation inverse noise variance.
	var p00, p01, p11, b0, b1 float64
	for i, x := range features {
		w := 1 / (noise*noise + targets.Variance.AtVec(i))
		y := targets.Mean.AtVec(i)
		p00 += w
		p01 += w * x
		p11 += w * x * x
		b0 += w * y
		b1 += w * x * y
	}
	precision := mat.NewSymDense(2, []float64{
		p00 + 1/priorVariance, p01,
		p01, p11 + 1/priorVariance,
	})

	chol := &mat.Cholesky{}
	if !chol.Factorize(precision) {
		return nil, probregErrors.Wrap(probregErrors.ErrSingularMatrix, "Bayesian.Fit: weight precision is not positive definite")
	}

	weights := mat.NewVecDense(2, nil)
	if err := chol.SolveVecTo(weights, mat.NewVecDense(2, []float64{b0, b1})); err != nil {
		return nil, probregErrors.Wrap(err, "Bayesian.Fit: solving for weight posterior mean")
	}

	var inverse mat.SymDense
	if err := chol.InverseTo(&inverse); err != nil {
		return nil, probregErrors.Wrap(err, "Bayesian.Fit: inverting weight precision")
	}

	return &fitState{weights: weights, covariance: &inverse, noise: noise}, nil
}

// PredictMean implements model.MeanPredictor.
func (b *Bayesian) PredictMean(state model.FitState, features []float64) (*mat.VecDense, error) {
	fs, ok := state.(*fitState)
	if !ok {
		return nil, probregErrors.NewValueError("Bayesian.PredictMean", "fit state does not belong to this model")
	}
	mean := mat.NewVecDense(len(features), nil)
	for i, x := range features {
		mean.SetVec(i, fs.weights.AtVec(0)+fs.weights.AtVec(1)*x)
	}
	return mean, nil
}

// PredictMarginal implements model.MarginalPredictor. The predictive
// variance combines weight uncertainty with the observation noise.
func (b *Bayesian) PredictMarginal(state model.FitState, features []float64) (*distribution.Marginal, error) {
	fs, ok := state.(*fitState)
	if !ok {
		return nil, probregErrors.NewValueError("Bayesian.PredictMarginal", "fit state does not belong to this model")
	}
	mean := mat.NewVecDense(len(features), nil)
	variance := mat.NewVecDense(len(features), nil)
	for i, x := range features {
		mean.SetVec(i, fs.weights.AtVec(0)+fs.weights.AtVec(1)*x)
		// phi^T Sigma phi with phi = (1, x).
		v := fs.covariance.At(0, 0) + 2*x*fs.covariance.At(0, 1) + x*x*fs.covariance.At(1, 1)
		variance.SetVec(i, v+fs.noise*fs.noise)
	}
	return distribution.NewMarginal(mean, variance)
}

// FitAndPredict implements model.FitPredictor as the plain fit-then-predict
// composition. The closed-form posterior makes fitting cheap enough that no
// incremental shortcut is worth the added state.
func (b *Bayesian) FitAndPredict(trainFeatures []float64, trainTargets *distribution.Marginal, testFeatures []float64) (model.FitState, *distribution.Marginal, error) {
	state, err := b.Fit(trainFeatures, trainTargets)
	if err != nil {
		return nil, nil, err
	}
	marginal, err := b.PredictMarginal(state, testFeatures)
	if err != nil {
		return nil, nil, err
	}
	return state, marginal, nil
}

// StateEqual implements model.StateComparer by comparing weight posteriors.
func (b *Bayesian) StateEqual(a, other model.FitState) (bool, error) {
	fa, okA := a.(*fitState)
	fb, okB := other.(*fitState)
	if !okA || !okB {
		return false, probregErrors.NewValueError("Bayesian.StateEqual", "fit state does not belong to this model")
	}
	return mat.Equal(fa.weights, fb.weights) && mat.Equal(fa.covariance, fb.covariance), nil
}
