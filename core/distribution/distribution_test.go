package distribution_test

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/probreg/core/distribution"
)

const epsilon = 1e-12

func TestNewMarginal_Validation(t *testing.T) {
	mean := mat.NewVecDense(3, []float64{1, 2, 3})
	variance := mat.NewVecDense(2, []float64{0.1, 0.2})

	if _, err := distribution.NewMarginal(mean, variance); err == nil {
		t.Error("expected error for mismatched mean and variance lengths")
	}
}

func TestNewDeterministic_ZeroVariance(t *testing.T) {
	mean := mat.NewVecDense(3, []float64{1, 2, 3})
	m := distribution.NewDeterministic(mean)

	if m.Size() != 3 {
		t.Fatalf("expected size 3, got %d", m.Size())
	}
	for i := 0; i < 3; i++ {
		if m.Variance.AtVec(i) != 0 {
			t.Errorf("deterministic variance[%d] = %v, want 0", i, m.Variance.AtVec(i))
		}
	}
}

func TestMarginal_Subset(t *testing.T) {
	mean := mat.NewVecDense(4, []float64{10, 20, 30, 40})
	variance := mat.NewVecDense(4, []float64{1, 2, 3, 4})
	m, err := distribution.NewMarginal(mean, variance)
	if err != nil {
		t.Fatalf("NewMarginal failed: %v", err)
	}

	sub := m.Subset([]int{3, 1})
	if sub.Size() != 2 {
		t.Fatalf("expected size 2, got %d", sub.Size())
	}
	if sub.Mean.AtVec(0) != 40 || sub.Mean.AtVec(1) != 20 {
		t.Errorf("subset must preserve index order: got %v", mat.Formatted(sub.Mean))
	}
	if sub.Variance.AtVec(0) != 4 || sub.Variance.AtVec(1) != 2 {
		t.Errorf("subset variances wrong: got %v", mat.Formatted(sub.Variance))
	}
}

func TestJoint_MarginalIsDiagonal(t *testing.T) {
	mean := mat.NewVecDense(3, []float64{1, 2, 3})
	cov := mat.NewSymDense(3, []float64{
		2.0, 0.5, 0.1,
		0.5, 3.0, 0.2,
		0.1, 0.2, 4.0,
	})
	j, err := distribution.NewJoint(mean, cov)
	if err != nil {
		t.Fatalf("NewJoint failed: %v", err)
	}

	m := j.Marginal()
	if m.Size() != 3 {
		t.Fatalf("expected size 3, got %d", m.Size())
	}
	wantVar := []float64{2, 3, 4}
	for i := 0; i < 3; i++ {
		if math.Abs(m.Mean.AtVec(i)-mean.AtVec(i)) > epsilon {
			t.Errorf("mean[%d] changed during marginalization", i)
		}
		if math.Abs(m.Variance.AtVec(i)-wantVar[i]) > epsilon {
			t.Errorf("variance[%d] = %v, want %v", i, m.Variance.AtVec(i), wantVar[i])
		}
	}
}

func TestNewJoint_DimensionMismatch(t *testing.T) {
	mean := mat.NewVecDense(2, []float64{1, 2})
	cov := mat.NewSymDense(3, nil)

	if _, err := distribution.NewJoint(mean, cov); err == nil {
		t.Error("expected error for mean and covariance of different sizes")
	}
}

func TestMarginal_Equal(t *testing.T) {
	a, _ := distribution.NewMarginal(
		mat.NewVecDense(2, []float64{1, 2}),
		mat.NewVecDense(2, []float64{0.1, 0.2}))
	b, _ := distribution.NewMarginal(
		mat.NewVecDense(2, []float64{1, 2}),
		mat.NewVecDense(2, []float64{0.1, 0.2}))
	c, _ := distribution.NewMarginal(
		mat.NewVecDense(2, []float64{1, 2.5}),
		mat.NewVecDense(2, []float64{0.1, 0.2}))

	if !a.Equal(b) {
		t.Error("identical marginals should be equal")
	}
	if a.Equal(c) {
		t.Error("different means should not be equal")
	}
}
