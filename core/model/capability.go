package model

import "strings"

// Fidelity identifies the richness of a prediction's uncertainty
// representation.
type Fidelity int

const (
	// FidelityMean is a point estimate with no uncertainty.
	FidelityMean Fidelity = iota
	// FidelityMarginal carries an independent variance per element.
	FidelityMarginal
	// FidelityJoint carries a full covariance matrix.
	FidelityJoint
)

// String returns the fidelity name used in errors and log records.
func (f Fidelity) String() string {
	switch f {
	case FidelityMean:
		return "mean"
	case FidelityMarginal:
		return "marginal"
	case FidelityJoint:
		return "joint"
	default:
		return "unknown"
	}
}

// Capabilities is an explicit, inspectable descriptor of the prediction
// fidelities a model implements directly. It is computed once when an
// Estimator is constructed, never re-derived per call.
type Capabilities uint8

const (
	// CapMean marks a direct mean-only implementation.
	CapMean Capabilities = 1 << iota
	// CapMarginal marks a direct marginal implementation.
	CapMarginal
	// CapJoint marks a direct joint implementation.
	CapJoint
)

// Has reports whether the descriptor includes the given capability.
func (c Capabilities) Has(cap Capabilities) bool {
	return c&cap != 0
}

// Implements reports whether the model provides the fidelity directly,
// without derivation.
func (c Capabilities) Implements(f Fidelity) bool {
	switch f {
	case FidelityMean:
		return c.Has(CapMean)
	case FidelityMarginal:
		return c.Has(CapMarginal)
	case FidelityJoint:
		return c.Has(CapJoint)
	}
	return false
}

// Supports reports whether the fidelity can be produced at all, either
// directly or by deriving from a richer implemented fidelity. Marginal can
// be derived from joint by taking the covariance diagonal; mean can be
// derived from either. A mean-only model has no way to back-derive
// uncertainty, so marginal and joint are unsupported for it.
func (c Capabilities) Supports(f Fidelity) bool {
	switch f {
	case FidelityMean:
		return c.Has(CapMean | CapMarginal | CapJoint)
	case FidelityMarginal:
		return c.Has(CapMarginal | CapJoint)
	case FidelityJoint:
		return c.Has(CapJoint)
	}
	return false
}

// Usable reports whether the capability set is sufficient for the framework:
// at least one of marginal or joint must be implemented.
func (c Capabilities) Usable() bool {
	return c.Has(CapMarginal | CapJoint)
}

// Names lists the directly implemented fidelities, for error messages.
func (c Capabilities) Names() []string {
	var names []string
	if c.Has(CapMean) {
		names = append(names, "mean")
	}
	if c.Has(CapMarginal) {
		names = append(names, "marginal")
	}
	if c.Has(CapJoint) {
		names = append(names, "joint")
	}
	return names
}

// String renders the capability set for diagnostics.
func (c Capabilities) String() string {
	names := c.Names()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}
