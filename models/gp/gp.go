// Package gp implements Gaussian process regression over scalar features
// with a squared-exponential kernel.
//
// The model implements joint prediction only. Marginal and mean requests are
// served by the framework's derivation chain, which for a Gaussian process
// is exact: the marginal variances are the diagonal of the posterior
// covariance.
package gp

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/probreg/core/distribution"
	"github.com/ezoic/probreg/core/model"
	"github.com/ezoic/probreg/core/parallel"
	"github.com/ezoic/probreg/core/params"
	probregErrors "github.com/ezoic/probreg/pkg/errors"
)

// Parameter names exposed through the model's store.
const (
	ParamAmplitude   = "amplitude"
	ParamLengthScale = "length_scale"
	ParamNoise       = "noise"
)

// parallelThreshold is the kernel-row count above which matrix assembly is
// split across goroutines.
const parallelThreshold = 64

// GP is a Gaussian process regressor with a squared-exponential covariance
// function plus independent observation noise.
type GP struct {
	params *params.Store
}

// fitState holds the factorized training covariance. It references the
// training features, so it must outlive any prediction made from it.
type fitState struct {
	features []float64
	chol     *mat.Cholesky
	alpha    *mat.VecDense

	amplitude   float64
	lengthScale float64
}

// New constructs a GP with unit amplitude and length scale and a small
// default noise floor.
func New() *GP {
	store := params.NewStore()
	store.Set(ParamAmplitude, params.Parameter{Value: 1})
	store.Set(ParamLengthScale, params.Parameter{Value: 1})
	store.Set(ParamNoise, params.Parameter{Value: 1e-2})
	return &GP{params: store}
}

// Name implements model.Model.
func (g *GP) Name() string { return "GaussianProcess" }

// Params implements model.Model.
func (g *GP) Params() *params.Store { return g.params }

// Fit implements model.Model. It assembles the training covariance with
// observation noise and per-target measurement variance on the diagonal,
// factorizes it and precomputes the weight vector used by prediction.
func (g *GP) Fit(features []float64, targets *distribution.Marginal) (model.FitState, error) {
	amplitude := g.params.Value(ParamAmplitude)
	lengthScale := g.params.Value(ParamLengthScale)
	noise := g.params.Value(ParamNoise)
	if lengthScale <= 0 {
		return nil, probregErrors.NewValidationError(ParamLengthScale, "must be positive", lengthScale)
	}

	n := len(features)
	cov := mat.NewSymDense(n, nil)
	parallel.ParallelizeWithThreshold(n, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := i; j < n; j++ {
				cov.SetSym(i, j, kernel(features[i], features[j], amplitude, lengthScale))
			}
		}
	})
	for i := 0; i < n; i++ {
		cov.SetSym(i, i, cov.At(i, i)+noise*noise+targets.Variance.AtVec(i))
	}

	chol := &mat.Cholesky{}
	if !chol.Factorize(cov) {
		return nil, probregErrors.Wrap(probregErrors.ErrSingularMatrix, "GP.Fit: training covariance is not positive definite")
	}

	alpha := mat.NewVecDense(n, nil)
	if err := chol.SolveVecTo(alpha, targets.Mean); err != nil {
		return nil, probregErrors.Wrap(err, "GP.Fit: solving for weights")
	}
	if err := probregErrors.CheckNumericalStability("GP.Fit", alpha.RawVector().Data); err != nil {
		return nil, err
	}

	trainFeatures := make([]float64, n)
	copy(trainFeatures, features)
	return &fitState{
		features:    trainFeatures,
		chol:        chol,
		alpha:       alpha,
		amplitude:   amplitude,
		lengthScale: lengthScale,
	}, nil
}

// PredictJoint implements model.JointPredictor. It returns the full
// posterior over the query features.
func (g *GP) PredictJoint(state model.FitState, features []float64) (*distribution.Joint, error) {
	fs, ok := state.(*fitState)
	if !ok {
		return nil, probregErrors.NewValueError("GP.PredictJoint", "fit state does not belong to this model")
	}

	m := len(features)
	n := len(fs.features)

	cross := mat.NewDense(m, n, nil)
	parallel.ParallelizeWithThreshold(m, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < n; j++ {
				cross.Set(i, j, kernel(features[i], fs.features[j], fs.amplitude, fs.lengthScale))
			}
		}
	})

	mean := mat.NewVecDense(m, nil)
	mean.MulVec(cross, fs.alpha)

	// Posterior covariance: prior(test) - cross * K^-1 * cross^T.
	solved := mat.NewDense(n, m, nil)
	if err := fs.chol.SolveTo(solved, cross.T()); err != nil {
		return nil, probregErrors.Wrap(err, "GP.PredictJoint: solving against training covariance")
	}
	var explained mat.Dense
	explained.Mul(cross, solved)

	covariance := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			prior := kernel(features[i], features[j], fs.amplitude, fs.lengthScale)
			// Average the off-diagonal pair to keep the result symmetric
			// under floating point roundoff.
			reduction := 0.5 * (explained.At(i, j) + explained.At(j, i))
			covariance.SetSym(i, j, prior-reduction)
		}
	}

	return distribution.NewJoint(mean, covariance)
}

// StateEqual implements model.StateComparer by comparing the training
// features and precomputed weights of two fit states.
func (g *GP) StateEqual(a, b model.FitState) (bool, error) {
	fa, okA := a.(*fitState)
	fb, okB := b.(*fitState)
	if !okA || !okB {
		return false, probregErrors.NewValueError("GP.StateEqual", "fit state does not belong to this model")
	}
	if len(fa.features) != len(fb.features) {
		return false, nil
	}
	for i := range fa.features {
		if fa.features[i] != fb.features[i] {
			return false, nil
		}
	}
	return mat.Equal(fa.alpha, fb.alpha), nil
}

func kernel(x, y, amplitude, lengthScale float64) float64 {
	d := (x - y) / lengthScale
	return amplitude * amplitude * math.Exp(-0.5*d*d)
}
