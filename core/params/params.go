// Package params provides named hyperparameter bookkeeping for models.
//
// A Store maps parameter names to values and optional priors. Models expose
// their Store through the core model contract, which is how the tuning
// engine discovers what it can vary, how each value is constrained, and how
// probable a candidate setting is under the priors.
package params

import (
	"fmt"
	"sort"
	"strings"

	probregErrors "github.com/ezoic/probreg/pkg/errors"
)

// Prior constrains and weights a single parameter value. Implementations
// live in the tune package; absence of a prior means unconstrained and
// uninformative.
type Prior interface {
	// IsValid reports whether value lies in the prior's support.
	IsValid(value float64) bool

	// LogLikelihood returns the log density of value under the prior.
	LogLikelihood(value float64) float64
}

// Bounded is an optional interface a Prior may implement to expose its
// support. The tuning engine uses the bounds to pick an invertible
// transform into unconstrained space. Either bound may be infinite.
type Bounded interface {
	Bounds() (lower, upper float64)
}

// IsFixed reports whether a prior marks its parameter as held constant
// during tuning. Fixed parameters still contribute to prior likelihood
// accounting.
func IsFixed(p Prior) bool {
	f, ok := p.(interface{ Fixed() bool })
	return ok && f.Fixed()
}

// Parameter is one named value with an optional prior.
type Parameter struct {
	Value float64
	Prior Prior
}

// IsValid reports whether the value satisfies the prior. A parameter
// without a prior is always valid.
func (p Parameter) IsValid() bool {
	if p.Prior == nil {
		return true
	}
	return p.Prior.IsValid(p.Value)
}

// PriorLogLikelihood returns the log density of the value under the prior,
// or zero when no prior is attached.
func (p Parameter) PriorLogLikelihood() float64 {
	if p.Prior == nil {
		return 0
	}
	return p.Prior.LogLikelihood(p.Value)
}

// Store holds a model's parameters keyed by name. Iteration order is the
// sorted name order so that tuning and serialization are deterministic.
type Store struct {
	params map[string]Parameter
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{params: make(map[string]Parameter)}
}

// Set adds or replaces a parameter.
func (s *Store) Set(name string, p Parameter) {
	s.params[name] = p
}

// SetValue updates the value of an existing parameter, keeping its prior.
func (s *Store) SetValue(name string, value float64) error {
	p, ok := s.params[name]
	if !ok {
		return probregErrors.NewValueError("params.SetValue", fmt.Sprintf("unknown parameter %q", name))
	}
	p.Value = value
	s.params[name] = p
	return nil
}

// SetPrior attaches a prior to an existing parameter, keeping its value.
func (s *Store) SetPrior(name string, prior Prior) error {
	p, ok := s.params[name]
	if !ok {
		return probregErrors.NewValueError("params.SetPrior", fmt.Sprintf("unknown parameter %q", name))
	}
	p.Prior = prior
	s.params[name] = p
	return nil
}

// Get returns the parameter with the given name.
func (s *Store) Get(name string) (Parameter, bool) {
	p, ok := s.params[name]
	return p, ok
}

// Value returns the value of the named parameter, or zero if absent.
func (s *Store) Value(name string) float64 {
	return s.params[name].Value
}

// Names returns the parameter names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.params))
	for name := range s.params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of parameters.
func (s *Store) Len() int {
	return len(s.params)
}

// Values returns a name-to-value map snapshot.
func (s *Store) Values() map[string]float64 {
	values := make(map[string]float64, len(s.params))
	for name, p := range s.params {
		values[name] = p.Value
	}
	return values
}

// SetValues updates the values of the named parameters. Unknown names are
// an error; priors are preserved.
func (s *Store) SetValues(values map[string]float64) error {
	for name, value := range values {
		if err := s.SetValue(name, value); err != nil {
			return err
		}
	}
	return nil
}

// AreValid reports whether every parameter satisfies its prior.
func (s *Store) AreValid() bool {
	for _, p := range s.params {
		if !p.IsValid() {
			return false
		}
	}
	return true
}

// PriorLogLikelihood returns the sum of prior log likelihoods over all
// parameters, including fixed ones.
func (s *Store) PriorLogLikelihood() float64 {
	var sum float64
	for _, p := range s.params {
		sum += p.PriorLogLikelihood()
	}
	return sum
}

// Clone returns a deep copy of the store. Priors are shared since they are
// immutable by contract.
func (s *Store) Clone() *Store {
	clone := NewStore()
	for name, p := range s.params {
		clone.params[name] = p
	}
	return clone
}

// Equal reports whether two stores hold the same names and values. Priors
// are not compared; they influence tuning, not model identity.
func (s *Store) Equal(other *Store) bool {
	if s.Len() != other.Len() {
		return false
	}
	for name, p := range s.params {
		op, ok := other.params[name]
		if !ok || op.Value != p.Value {
			return false
		}
	}
	return true
}

// String renders the parameters in sorted order for diagnostics.
func (s *Store) String() string {
	var b strings.Builder
	for i, name := range s.Names() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%g", name, s.params[name].Value)
	}
	return b.String()
}
