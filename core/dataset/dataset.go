// Package dataset provides the container pairing features with a target
// distribution.
//
// A Dataset holds an ordered slice of features, where a single feature can
// be any comparable type carrying the information used to predict a target,
// and a marginal target distribution of the same length. Datasets are
// constructed once per experiment and treated as read-only afterwards,
// except for metadata annotations.
package dataset

import (
	"maps"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/probreg/core/distribution"
	probregErrors "github.com/ezoic/probreg/pkg/errors"
)

// Dataset pairs features with a target distribution and free-form metadata.
// Invariant: len(Features) == Targets.Size().
type Dataset[F comparable] struct {
	Features []F
	Targets  *distribution.Marginal
	Metadata map[string]string
}

// New creates a Dataset after validating that features and targets have the
// same length.
func New[F comparable](features []F, targets *distribution.Marginal) (*Dataset[F], error) {
	if targets == nil {
		return nil, probregErrors.NewValueError("dataset.New", "targets must not be nil")
	}
	if len(features) != targets.Size() {
		return nil, probregErrors.NewDimensionError("dataset.New", len(features), targets.Size())
	}
	return &Dataset[F]{
		Features: features,
		Targets:  targets,
		Metadata: make(map[string]string),
	}, nil
}

// FromValues creates a Dataset whose targets are treated as exactly
// observed, i.e. a marginal distribution with zero variance.
func FromValues[F comparable](features []F, targets *mat.VecDense) (*Dataset[F], error) {
	return New(features, distribution.NewDeterministic(targets))
}

// Size returns the number of rows.
func (d *Dataset[F]) Size() int {
	return len(d.Features)
}

// Subset returns a new Dataset containing the rows at the given indices,
// preserving the order of indices. Metadata is shared with the parent since
// it describes the experiment, not individual rows.
func (d *Dataset[F]) Subset(indices []int) *Dataset[F] {
	features := make([]F, len(indices))
	for i, idx := range indices {
		features[i] = d.Features[idx]
	}
	return &Dataset[F]{
		Features: features,
		Targets:  d.Targets.Subset(indices),
		Metadata: d.Metadata,
	}
}

// Equal reports whether two datasets hold the same features, targets and
// metadata.
func (d *Dataset[F]) Equal(other *Dataset[F]) bool {
	if d.Size() != other.Size() {
		return false
	}
	for i := range d.Features {
		if d.Features[i] != other.Features[i] {
			return false
		}
	}
	if !d.Targets.Equal(other.Targets) {
		return false
	}
	return maps.Equal(d.Metadata, other.Metadata)
}
