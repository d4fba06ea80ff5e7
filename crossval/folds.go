package crossval

import (
	"github.com/ezoic/probreg/core/dataset"
)

// Fold is one train/test split derived from a parent dataset. TestIndices
// records the original-dataset positions covered by the test set, which is
// what reassembly uses to scatter per-fold outputs back into place.
type Fold[F comparable] struct {
	Name        string
	Train       *dataset.Dataset[F]
	Test        *dataset.Dataset[F]
	TestIndices []int
}

// Folds materializes the train/test datasets for every fold in the indexer,
// preserving relative row order in both subsets. The indexer is validated
// against the dataset size first.
func Folds[F comparable](ds *dataset.Dataset[F], indexer *FoldIndexer) ([]Fold[F], error) {
	n := ds.Size()
	if err := indexer.Validate(n); err != nil {
		return nil, err
	}

	folds := make([]Fold[F], 0, indexer.Len())
	for _, name := range indexer.Names() {
		testIndices, _ := indexer.Indices(name)

		inTest := make(map[int]bool, len(testIndices))
		for _, idx := range testIndices {
			inTest[idx] = true
		}
		trainIndices := make([]int, 0, n-len(testIndices))
		for i := 0; i < n; i++ {
			if !inTest[i] {
				trainIndices = append(trainIndices, i)
			}
		}

		folds = append(folds, Fold[F]{
			Name:        name,
			Train:       ds.Subset(trainIndices),
			Test:        ds.Subset(testIndices),
			TestIndices: testIndices,
		})
	}
	return folds, nil
}
