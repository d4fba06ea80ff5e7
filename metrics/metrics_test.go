package metrics_test

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/probreg/core/distribution"
	"github.com/ezoic/probreg/metrics"
)

const epsilon = 1e-10

func deterministic(values ...float64) *distribution.Marginal {
	return distribution.NewDeterministic(mat.NewVecDense(len(values), values))
}

func TestRootMeanSquaredError(t *testing.T) {
	pred := mat.NewVecDense(3, []float64{1, 2, 3})
	target := deterministic(1, 2, 5)

	// Residuals 0, 0, -2: RMSE = sqrt(4/3).
	got, err := metrics.RootMeanSquaredError(pred, target)
	if err != nil {
		t.Fatalf("RootMeanSquaredError failed: %v", err)
	}
	want := math.Sqrt(4.0 / 3.0)
	if math.Abs(got-want) > epsilon {
		t.Errorf("RMSE = %v, want %v", got, want)
	}
}

func TestRootMeanSquaredError_Preconditions(t *testing.T) {
	if _, err := metrics.RootMeanSquaredError(mat.NewVecDense(2, nil), deterministic(1, 2, 3)); err == nil {
		t.Error("expected error for length mismatch")
	}
}

func TestStandardizedMeanSquaredError(t *testing.T) {
	pred := mat.NewVecDense(2, []float64{0, 0})
	target := deterministic(-1, 1)

	// Squared residuals sum to 2 and the centered targets also sum to 2,
	// so the standardized score is 1: no better than predicting the mean.
	got, err := metrics.StandardizedMeanSquaredError(pred, target)
	if err != nil {
		t.Fatalf("StandardizedMeanSquaredError failed: %v", err)
	}
	if math.Abs(got-1.0) > epsilon {
		t.Errorf("SMSE = %v, want 1", got)
	}
}

func TestStandardizedMeanSquaredError_NoTargetVariance(t *testing.T) {
	pred := mat.NewVecDense(2, []float64{1, 2})
	target := deterministic(5, 5)

	got, err := metrics.StandardizedMeanSquaredError(pred, target)
	if err != nil {
		t.Fatalf("StandardizedMeanSquaredError failed: %v", err)
	}
	if !math.IsNaN(got) {
		t.Errorf("expected NaN for constant targets, got %v", got)
	}
}

func TestNegativeLogLikelihood_StandardNormal(t *testing.T) {
	pred, err := distribution.NewMarginal(
		mat.NewVecDense(1, []float64{0}),
		mat.NewVecDense(1, []float64{1}))
	if err != nil {
		t.Fatalf("NewMarginal failed: %v", err)
	}
	target := deterministic(0)

	// -log N(0; 0, 1) = 0.5*log(2*pi).
	got, err := metrics.NegativeLogLikelihood(pred, target)
	if err != nil {
		t.Fatalf("NegativeLogLikelihood failed: %v", err)
	}
	want := 0.5 * math.Log(2*math.Pi)
	if math.Abs(got-want) > epsilon {
		t.Errorf("NLL = %v, want %v", got, want)
	}
}

func TestNegativeLogLikelihood_NonPositiveVariance(t *testing.T) {
	pred, err := distribution.NewMarginal(
		mat.NewVecDense(1, []float64{0}),
		mat.NewVecDense(1, []float64{0}))
	if err != nil {
		t.Fatalf("NewMarginal failed: %v", err)
	}

	got, err := metrics.NegativeLogLikelihood(pred, deterministic(0))
	if err != nil {
		t.Fatalf("NegativeLogLikelihood failed: %v", err)
	}
	if !math.IsNaN(got) {
		t.Errorf("expected NaN for zero variance, got %v", got)
	}
}

func TestJointNegativeLogLikelihood_DiagonalMatchesIndependent(t *testing.T) {
	mean := mat.NewVecDense(2, []float64{1, -1})
	cov := mat.NewSymDense(2, []float64{2, 0, 0, 3})
	joint, err := distribution.NewJoint(mean, cov)
	if err != nil {
		t.Fatalf("NewJoint failed: %v", err)
	}
	marginal := joint.Marginal()
	target := deterministic(1.5, -0.5)

	jointNLL, err := metrics.JointNegativeLogLikelihood(joint, target)
	if err != nil {
		t.Fatalf("JointNegativeLogLikelihood failed: %v", err)
	}
	marginalNLL, err := metrics.NegativeLogLikelihood(marginal, target)
	if err != nil {
		t.Fatalf("NegativeLogLikelihood failed: %v", err)
	}

	if math.Abs(jointNLL-marginalNLL) > epsilon {
		t.Errorf("diagonal joint NLL %v should equal independent NLL %v", jointNLL, marginalNLL)
	}
}

func TestJointNegativeLogLikelihood_SingularCovariance(t *testing.T) {
	mean := mat.NewVecDense(2, nil)
	cov := mat.NewSymDense(2, []float64{1, 1, 1, 1})
	joint, err := distribution.NewJoint(mean, cov)
	if err != nil {
		t.Fatalf("NewJoint failed: %v", err)
	}

	got, err := metrics.JointNegativeLogLikelihood(joint, deterministic(0, 0))
	if err != nil {
		t.Fatalf("JointNegativeLogLikelihood failed: %v", err)
	}
	if !math.IsNaN(got) {
		t.Errorf("expected NaN for singular covariance, got %v", got)
	}
}

func TestMeanAbsoluteError(t *testing.T) {
	pred := mat.NewVecDense(3, []float64{1, 2, 3})
	target := deterministic(2, 2, 1)

	got, err := metrics.MeanAbsoluteError(pred, target)
	if err != nil {
		t.Fatalf("MeanAbsoluteError failed: %v", err)
	}
	if math.Abs(got-1.0) > epsilon {
		t.Errorf("MAE = %v, want 1", got)
	}
}

func TestRSquared(t *testing.T) {
	target := deterministic(1, 2, 3)

	perfect := mat.NewVecDense(3, []float64{1, 2, 3})
	got, err := metrics.RSquared(perfect, target)
	if err != nil {
		t.Fatalf("RSquared failed: %v", err)
	}
	if math.Abs(got-1.0) > epsilon {
		t.Errorf("perfect prediction R² = %v, want 1", got)
	}

	constant := mat.NewVecDense(3, []float64{2, 2, 2})
	got, err = metrics.RSquared(constant, target)
	if err != nil {
		t.Fatalf("RSquared failed: %v", err)
	}
	if math.Abs(got) > epsilon {
		t.Errorf("mean prediction R² = %v, want 0", got)
	}

	flat := deterministic(4, 4, 4)
	got, err = metrics.RSquared(constant, flat)
	if err != nil {
		t.Fatalf("RSquared failed: %v", err)
	}
	if !math.IsNaN(got) {
		t.Errorf("expected NaN for targets without variance, got %v", got)
	}
}

func TestMeanAbsolutePercentageError(t *testing.T) {
	pred := mat.NewVecDense(2, []float64{90, 110})
	target := deterministic(100, 100)

	got, err := metrics.MeanAbsolutePercentageError(pred, target)
	if err != nil {
		t.Fatalf("MeanAbsolutePercentageError failed: %v", err)
	}
	if math.Abs(got-10.0) > epsilon {
		t.Errorf("MAPE = %v, want 10", got)
	}

	allZero := deterministic(0, 0)
	got, err = metrics.MeanAbsolutePercentageError(pred, allZero)
	if err != nil {
		t.Fatalf("MeanAbsolutePercentageError failed: %v", err)
	}
	if !math.IsNaN(got) {
		t.Errorf("expected NaN when every target is zero, got %v", got)
	}
}

func TestAggregators(t *testing.T) {
	scores := []float64{1, 2, 3, 10}

	mean, err := metrics.MeanAggregator(scores)
	if err != nil {
		t.Fatalf("MeanAggregator failed: %v", err)
	}
	if math.Abs(mean-4.0) > epsilon {
		t.Errorf("mean = %v, want 4", mean)
	}

	median, err := metrics.MedianAggregator(scores)
	if err != nil {
		t.Fatalf("MedianAggregator failed: %v", err)
	}
	if math.Abs(median-2.5) > epsilon {
		t.Errorf("median = %v, want 2.5", median)
	}
}

func TestSummarize(t *testing.T) {
	summary, err := metrics.Summarize([]float64{1, 2, 3})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if math.Abs(summary.Mean-2.0) > epsilon {
		t.Errorf("summary mean = %v, want 2", summary.Mean)
	}
	if summary.Min != 1 || summary.Max != 3 {
		t.Errorf("summary min/max = %v/%v, want 1/3", summary.Min, summary.Max)
	}
}
