// Package distribution defines the probability-distribution values exchanged
// between models, the cross-validation engine and metrics.
//
// Two fidelities of uncertainty are represented:
//
//   - Marginal: a mean vector plus an independent per-element variance vector.
//   - Joint: a mean vector plus a full covariance matrix.
//
// A Marginal can always be derived from a Joint by taking the covariance
// diagonal; the reverse is not possible, which is what drives the
// capability-dispatch rules in core/model.
package distribution

import (
	"gonum.org/v1/gonum/mat"

	probregErrors "github.com/ezoic/probreg/pkg/errors"
)

// Marginal is a distribution with independent per-element uncertainty.
type Marginal struct {
	Mean     *mat.VecDense
	Variance *mat.VecDense
}

// NewMarginal creates a Marginal from a mean and a variance vector of the
// same length.
func NewMarginal(mean, variance *mat.VecDense) (*Marginal, error) {
	if mean == nil {
		return nil, probregErrors.NewValueError("distribution.NewMarginal", "mean must not be nil")
	}
	if variance == nil {
		return nil, probregErrors.NewValueError("distribution.NewMarginal", "variance must not be nil")
	}
	if mean.Len() != variance.Len() {
		return nil, probregErrors.NewDimensionError("distribution.NewMarginal", mean.Len(), variance.Len())
	}
	return &Marginal{Mean: mean, Variance: variance}, nil
}

// NewDeterministic creates a Marginal with zero variance, representing
// targets that are treated as exactly observed.
func NewDeterministic(mean *mat.VecDense) *Marginal {
	return &Marginal{
		Mean:     mean,
		Variance: mat.NewVecDense(mean.Len(), nil),
	}
}

// Size returns the number of elements.
func (m *Marginal) Size() int {
	if m == nil || m.Mean == nil {
		return 0
	}
	return m.Mean.Len()
}

// Subset returns a new Marginal containing the elements at the given
// indices, in the order given.
func (m *Marginal) Subset(indices []int) *Marginal {
	mean := mat.NewVecDense(len(indices), nil)
	variance := mat.NewVecDense(len(indices), nil)
	for i, idx := range indices {
		mean.SetVec(i, m.Mean.AtVec(idx))
		variance.SetVec(i, m.Variance.AtVec(idx))
	}
	return &Marginal{Mean: mean, Variance: variance}
}

// Equal reports elementwise equality of mean and variance.
func (m *Marginal) Equal(other *Marginal) bool {
	if m.Size() != other.Size() {
		return false
	}
	return mat.Equal(m.Mean, other.Mean) && mat.Equal(m.Variance, other.Variance)
}

// Joint is a distribution with a full covariance matrix.
type Joint struct {
	Mean       *mat.VecDense
	Covariance *mat.SymDense
}

// NewJoint creates a Joint from a mean vector and a covariance matrix whose
// order matches the mean length.
func NewJoint(mean *mat.VecDense, covariance *mat.SymDense) (*Joint, error) {
	if mean == nil {
		return nil, probregErrors.NewValueError("distribution.NewJoint", "mean must not be nil")
	}
	if covariance == nil {
		return nil, probregErrors.NewValueError("distribution.NewJoint", "covariance must not be nil")
	}
	if mean.Len() != covariance.SymmetricDim() {
		return nil, probregErrors.NewDimensionError("distribution.NewJoint", mean.Len(), covariance.SymmetricDim())
	}
	return &Joint{Mean: mean, Covariance: covariance}, nil
}

// Size returns the number of elements.
func (j *Joint) Size() int {
	if j == nil || j.Mean == nil {
		return 0
	}
	return j.Mean.Len()
}

// Marginal derives the marginal distribution by taking the covariance
// diagonal. Off-diagonal covariance is discarded.
func (j *Joint) Marginal() *Marginal {
	n := j.Size()
	variance := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		variance.SetVec(i, j.Covariance.At(i, i))
	}
	return &Marginal{
		Mean:     mat.VecDenseCopyOf(j.Mean),
		Variance: variance,
	}
}
