package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/probreg/core/distribution"
	probregErrors "github.com/ezoic/probreg/pkg/errors"
)

// MeanAbsoluteError scores a mean prediction by the average absolute
// deviation from the target means. More robust to outliers than RMSE since
// the residuals are not squared.
//
// Parameters:
//   - pred: Predicted values as a vector
//   - target: Held-out targets; only the means are consulted
//
// Returns:
//   - float64: MAE value (non-negative)
//   - error: nil if successful, otherwise an error describing the failure
//
// Errors:
//   - ErrEmptyData: if pred is empty
//   - DimensionError: if pred and target have different lengths
func MeanAbsoluteError(pred *mat.VecDense, target *distribution.Marginal) (float64, error) {
	n := pred.Len()
	if n == 0 {
		return 0, probregErrors.Wrap(probregErrors.ErrEmptyData, "MeanAbsoluteError")
	}
	if target.Size() != n {
		return 0, probregErrors.NewDimensionError("MeanAbsoluteError", n, target.Size())
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(target.Mean.AtVec(i) - pred.AtVec(i))
	}
	return sum / float64(n), nil
}

// RSquared scores a mean prediction by the coefficient of determination:
// the proportion of target variance the prediction explains. The best
// possible score is 1; a prediction no better than the target mean scores
// 0, and worse predictions go negative.
//
// When the targets have no variance the score is undefined and NaN is
// returned.
//
// Parameters:
//   - pred: Predicted values as a vector
//   - target: Held-out targets; only the means are consulted
//
// Returns:
//   - float64: R² score (best possible score is 1.0, NaN when undefined)
//   - error: nil if successful, otherwise an error describing the failure
//
// Errors:
//   - ErrEmptyData: if pred is empty
//   - DimensionError: if pred and target have different lengths
func RSquared(pred *mat.VecDense, target *distribution.Marginal) (float64, error) {
	n := pred.Len()
	if n == 0 {
		return 0, probregErrors.Wrap(probregErrors.ErrEmptyData, "RSquared")
	}
	if target.Size() != n {
		return 0, probregErrors.NewDimensionError("RSquared", n, target.Size())
	}

	var mean float64
	for i := 0; i < n; i++ {
		mean += target.Mean.AtVec(i)
	}
	mean /= float64(n)

	var tss, rss float64
	for i := 0; i < n; i++ {
		y := target.Mean.AtVec(i)
		tss += (y - mean) * (y - mean)
		r := y - pred.AtVec(i)
		rss += r * r
	}
	if tss == 0 {
		return math.NaN(), nil
	}
	return 1 - rss/tss, nil
}

// MeanAbsolutePercentageError scores a mean prediction as a percentage of
// the target magnitude, making it scale independent. Elements whose target
// mean is zero are skipped; if every target mean is zero the score is
// undefined and NaN is returned.
//
// Parameters:
//   - pred: Predicted values as a vector
//   - target: Held-out targets; only the means are consulted
//
// Returns:
//   - float64: MAPE value as a percentage (non-negative, NaN when undefined)
//   - error: nil if successful, otherwise an error describing the failure
//
// Errors:
//   - ErrEmptyData: if pred is empty
//   - DimensionError: if pred and target have different lengths
func MeanAbsolutePercentageError(pred *mat.VecDense, target *distribution.Marginal) (float64, error) {
	n := pred.Len()
	if n == 0 {
		return 0, probregErrors.Wrap(probregErrors.ErrEmptyData, "MeanAbsolutePercentageError")
	}
	if target.Size() != n {
		return 0, probregErrors.NewDimensionError("MeanAbsolutePercentageError", n, target.Size())
	}

	var sum float64
	valid := 0
	for i := 0; i < n; i++ {
		y := target.Mean.AtVec(i)
		if y == 0 {
			continue
		}
		sum += math.Abs(y-pred.AtVec(i)) / math.Abs(y)
		valid++
	}
	if valid == 0 {
		return math.NaN(), nil
	}
	return (sum / float64(valid)) * 100, nil
}
