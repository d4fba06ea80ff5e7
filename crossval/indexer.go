// Package crossval provides dataset partitioning and the cross-validation
// engine: it splits a dataset into named folds, fits and predicts per fold,
// reassembles per-row results into the original ordering and computes
// per-fold metric scores.
package crossval

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/ezoic/probreg/core/dataset"
	probregErrors "github.com/ezoic/probreg/pkg/errors"
)

// FoldIndexer maps fold names to the ordered row indices belonging to each
// fold's test partition. It is the single source of truth for reassembling
// per-fold outputs into the parent dataset's ordering. Iteration follows
// insertion order so results are deterministic.
type FoldIndexer struct {
	names   []string
	indices map[string][]int
}

// NewFoldIndexer creates an empty indexer.
func NewFoldIndexer() *FoldIndexer {
	return &FoldIndexer{indices: make(map[string][]int)}
}

// Add registers a fold's test indices under a name. Duplicate names are an
// error.
func (fi *FoldIndexer) Add(name string, indices []int) error {
	if _, exists := fi.indices[name]; exists {
		return probregErrors.NewValueError("FoldIndexer.Add", fmt.Sprintf("duplicate fold name %q", name))
	}
	fi.names = append(fi.names, name)
	fi.indices[name] = indices
	return nil
}

// Names returns the fold names in iteration order.
func (fi *FoldIndexer) Names() []string {
	return fi.names
}

// Indices returns the test indices registered under a name.
func (fi *FoldIndexer) Indices(name string) ([]int, bool) {
	indices, ok := fi.indices[name]
	return indices, ok
}

// Len returns the number of folds.
func (fi *FoldIndexer) Len() int {
	return len(fi.names)
}

// DatasetSize returns the total number of indexed rows.
func (fi *FoldIndexer) DatasetSize() int {
	var total int
	for _, indices := range fi.indices {
		total += len(indices)
	}
	return total
}

// Validate checks the partition invariant against a dataset of size n: the
// folds' test indices must be pairwise disjoint and cover [0, n) exactly
// once. A violation is a ConsistencyError since it indicates a defect in
// fold construction, not a data problem.
func (fi *FoldIndexer) Validate(n int) error {
	seen := make([]bool, n)
	var count int
	for _, name := range fi.names {
		for _, idx := range fi.indices[name] {
			if idx < 0 || idx >= n {
				return probregErrors.NewConsistencyError("FoldIndexer.Validate",
					fmt.Sprintf("fold %q indexes row %d outside dataset of size %d", name, idx, n))
			}
			if seen[idx] {
				return probregErrors.NewConsistencyError("FoldIndexer.Validate",
					fmt.Sprintf("row %d appears in more than one fold", idx))
			}
			seen[idx] = true
			count++
		}
	}
	if count != n {
		return probregErrors.NewConsistencyError("FoldIndexer.Validate",
			fmt.Sprintf("folds cover %d of %d rows", count, n))
	}
	return nil
}

// LeaveOneOut builds an indexer with one single-row fold per dataset row.
func LeaveOneOut(n int) *FoldIndexer {
	fi := NewFoldIndexer()
	for i := 0; i < n; i++ {
		// Names cannot collide, so Add cannot fail here.
		_ = fi.Add(fmt.Sprintf("%d", i), []int{i})
	}
	return fi
}

// KFold builds an indexer with k roughly equal folds over n rows. With
// shuffle enabled, rows are permuted with a PCG source seeded from seed so
// the same seed always produces the same partition.
func KFold(n, k int, shuffle bool, seed int) (*FoldIndexer, error) {
	if k < 2 {
		return nil, probregErrors.NewValueError("crossval.KFold", fmt.Sprintf("need at least 2 folds, got %d", k))
	}
	if k > n {
		return nil, probregErrors.NewValueError("crossval.KFold", fmt.Sprintf("cannot split %d rows into %d folds", n, k))
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if shuffle {
		r := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
		r.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	fi := NewFoldIndexer()
	foldSize := n / k
	remainder := n % k
	start := 0
	for i := 0; i < k; i++ {
		size := foldSize
		if i < remainder {
			size++
		}
		indices := make([]int, size)
		copy(indices, order[start:start+size])
		_ = fi.Add(fmt.Sprintf("fold_%d", i), indices)
		start += size
	}
	return fi, nil
}

// GroupBy builds an indexer with one fold per distinct key, where key is
// computed from each row's feature. Folds are ordered by sorted key so the
// partition is deterministic regardless of row order within groups.
func GroupBy[F comparable](ds *dataset.Dataset[F], key func(F) string) *FoldIndexer {
	groups := make(map[string][]int)
	for i, feature := range ds.Features {
		k := key(feature)
		groups[k] = append(groups[k], i)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	fi := NewFoldIndexer()
	for _, name := range names {
		_ = fi.Add(name, groups[name])
	}
	return fi
}
