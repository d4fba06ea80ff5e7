// Package metrics provides evaluation metrics for probabilistic predictions.
//
// Metrics come in three flavors matching the prediction fidelities:
//
//   - MeanMetric consumes a point-estimate vector.
//   - MarginalMetric consumes a marginal (per-element variance) prediction.
//   - JointMetric consumes a full joint prediction.
//
// All metrics score a prediction against the observed target distribution
// and return a scalar where lower is better. The same callables are used by
// ad-hoc evaluation, the cross-validation engine and the tuning objective.
//
// Numerically undefined scores (e.g. the log likelihood of a non
// positive-definite covariance) are returned as NaN rather than an error:
// the tuning engine treats NaN as a rejected candidate and keeps searching,
// per the framework's error taxonomy.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ezoic/probreg/core/distribution"
	probregErrors "github.com/ezoic/probreg/pkg/errors"
)

// MeanMetric scores a point-estimate prediction against the target.
type MeanMetric func(pred *mat.VecDense, target *distribution.Marginal) (float64, error)

// MarginalMetric scores a marginal prediction against the target.
type MarginalMetric func(pred *distribution.Marginal, target *distribution.Marginal) (float64, error)

// JointMetric scores a joint prediction against the target.
type JointMetric func(pred *distribution.Joint, target *distribution.Marginal) (float64, error)

// RootMeanSquaredError computes the root of the mean squared difference
// between the predicted means and the target means.
func RootMeanSquaredError(pred *mat.VecDense, target *distribution.Marginal) (float64, error) {
	n := pred.Len()
	if n == 0 {
		return 0, probregErrors.NewValueError("metrics.RootMeanSquaredError", "empty prediction")
	}
	if target.Size() != n {
		return 0, probregErrors.NewDimensionError("metrics.RootMeanSquaredError", n, target.Size())
	}

	var sum float64
	for i := 0; i < n; i++ {
		diff := pred.AtVec(i) - target.Mean.AtVec(i)
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(n)), nil
}

// StandardizedMeanSquaredError computes the mean squared error divided by
// the variance of the target means. A score below 1 beats predicting the
// target average.
func StandardizedMeanSquaredError(pred *mat.VecDense, target *distribution.Marginal) (float64, error) {
	n := pred.Len()
	if n == 0 {
		return 0, probregErrors.NewValueError("metrics.StandardizedMeanSquaredError", "empty prediction")
	}
	if target.Size() != n {
		return 0, probregErrors.NewDimensionError("metrics.StandardizedMeanSquaredError", n, target.Size())
	}

	var targetMean float64
	for i := 0; i < n; i++ {
		targetMean += target.Mean.AtVec(i)
	}
	targetMean /= float64(n)

	var mse, targetVar float64
	for i := 0; i < n; i++ {
		diff := pred.AtVec(i) - target.Mean.AtVec(i)
		mse += diff * diff
		centered := target.Mean.AtVec(i) - targetMean
		targetVar += centered * centered
	}

	if targetVar == 0 {
		return math.NaN(), nil
	}
	return mse / targetVar, nil
}

// NegativeLogLikelihood computes the negative log likelihood of the target
// means under the predicted marginal, treating elements as independent
// Gaussians. Non-positive predicted variances yield NaN.
func NegativeLogLikelihood(pred *distribution.Marginal, target *distribution.Marginal) (float64, error) {
	n := pred.Size()
	if n == 0 {
		return 0, probregErrors.NewValueError("metrics.NegativeLogLikelihood", "empty prediction")
	}
	if target.Size() != n {
		return 0, probregErrors.NewDimensionError("metrics.NegativeLogLikelihood", n, target.Size())
	}

	var nll float64
	for i := 0; i < n; i++ {
		variance := pred.Variance.AtVec(i)
		if variance <= 0 {
			return math.NaN(), nil
		}
		normal := distuv.Normal{Mu: pred.Mean.AtVec(i), Sigma: math.Sqrt(variance)}
		nll -= normal.LogProb(target.Mean.AtVec(i))
	}
	return nll, nil
}

// JointNegativeLogLikelihood computes the negative log likelihood of the
// target means under the predicted multivariate Gaussian. A covariance that
// cannot be factorized yields NaN.
func JointNegativeLogLikelihood(pred *distribution.Joint, target *distribution.Marginal) (float64, error) {
	n := pred.Size()
	if n == 0 {
		return 0, probregErrors.NewValueError("metrics.JointNegativeLogLikelihood", "empty prediction")
	}
	if target.Size() != n {
		return 0, probregErrors.NewDimensionError("metrics.JointNegativeLogLikelihood", n, target.Size())
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(pred.Covariance); !ok {
		return math.NaN(), nil
	}

	residual := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		residual.SetVec(i, target.Mean.AtVec(i)-pred.Mean.AtVec(i))
	}

	solved := mat.NewVecDense(n, nil)
	if err := chol.SolveVecTo(solved, residual); err != nil {
		return math.NaN(), nil
	}

	mahalanobis := mat.Dot(residual, solved)
	logDet := chol.LogDet()
	nll := 0.5 * (float64(n)*math.Log(2*math.Pi) + logDet + mahalanobis)
	return nll, nil
}
