package crossval

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/probreg/core/distribution"
	probregErrors "github.com/ezoic/probreg/pkg/errors"
)

// ConcatenateMeans scatters per-fold mean predictions back into a
// full-length vector at the original row positions recorded in the indexer.
// Every row must be written exactly once; anything else is a fatal
// consistency failure pointing at a bug in fold construction.
func ConcatenateMeans(indexer *FoldIndexer, means map[string]*mat.VecDense) (*mat.VecDense, error) {
	n := indexer.DatasetSize()
	result := mat.NewVecDense(n, nil)
	written := make([]bool, n)

	for _, name := range indexer.Names() {
		indices, _ := indexer.Indices(name)
		mean, ok := means[name]
		if !ok {
			return nil, probregErrors.NewConsistencyError("crossval.ConcatenateMeans",
				fmt.Sprintf("no prediction for fold %q", name))
		}
		if mean.Len() != len(indices) {
			return nil, probregErrors.NewDimensionError("crossval.ConcatenateMeans", len(indices), mean.Len())
		}
		for i, idx := range indices {
			if err := checkWrite(written, idx, n, "crossval.ConcatenateMeans"); err != nil {
				return nil, err
			}
			result.SetVec(idx, mean.AtVec(i))
		}
	}

	if err := checkCoverage(written, "crossval.ConcatenateMeans"); err != nil {
		return nil, err
	}
	return result, nil
}

// ConcatenateMarginals scatters per-fold marginal predictions back into a
// full-length marginal distribution. Cross-fold covariance is discarded by
// construction: folds are fit independently, so off-diagonal terms between
// rows of different folds are taken as zero. This is a documented
// approximation, not a bug.
func ConcatenateMarginals(indexer *FoldIndexer, marginals map[string]*distribution.Marginal) (*distribution.Marginal, error) {
	n := indexer.DatasetSize()
	mean := mat.NewVecDense(n, nil)
	variance := mat.NewVecDense(n, nil)
	written := make([]bool, n)

	for _, name := range indexer.Names() {
		indices, _ := indexer.Indices(name)
		marginal, ok := marginals[name]
		if !ok {
			return nil, probregErrors.NewConsistencyError("crossval.ConcatenateMarginals",
				fmt.Sprintf("no prediction for fold %q", name))
		}
		if marginal.Size() != len(indices) {
			return nil, probregErrors.NewDimensionError("crossval.ConcatenateMarginals", len(indices), marginal.Size())
		}
		for i, idx := range indices {
			if err := checkWrite(written, idx, n, "crossval.ConcatenateMarginals"); err != nil {
				return nil, err
			}
			mean.SetVec(idx, marginal.Mean.AtVec(i))
			variance.SetVec(idx, marginal.Variance.AtVec(i))
		}
	}

	if err := checkCoverage(written, "crossval.ConcatenateMarginals"); err != nil {
		return nil, err
	}
	return &distribution.Marginal{Mean: mean, Variance: variance}, nil
}

func checkWrite(written []bool, idx, n int, op string) error {
	if idx < 0 || idx >= n {
		return probregErrors.NewConsistencyError(op,
			fmt.Sprintf("row index %d outside reassembled size %d", idx, n))
	}
	if written[idx] {
		return probregErrors.NewConsistencyError(op,
			fmt.Sprintf("row %d written more than once", idx))
	}
	written[idx] = true
	return nil
}

func checkCoverage(written []bool, op string) error {
	for idx, ok := range written {
		if !ok {
			return probregErrors.NewConsistencyError(op,
				fmt.Sprintf("row %d never written during reassembly", idx))
		}
	}
	return nil
}
