package tune

import (
	"math"

	"github.com/ezoic/probreg/core/params"
)

// Transform maps a parameter between its native support and the
// unconstrained space the optimizer searches in. From must be the inverse
// of To everywhere on the parameter's support.
type Transform interface {
	// To maps a native parameter value into unconstrained space.
	To(value float64) float64
	// From maps an unconstrained coordinate back to the native support.
	From(u float64) float64
}

type identityTransform struct{}

func (identityTransform) To(value float64) float64 { return value }
func (identityTransform) From(u float64) float64   { return u }

// logTransform maps a half-open interval (lower, inf) onto the real line.
type logTransform struct {
	lower float64
}

func (t logTransform) To(value float64) float64 { return math.Log(value - t.lower) }
func (t logTransform) From(u float64) float64   { return t.lower + math.Exp(u) }

// logitTransform maps a bounded interval (lower, upper) onto the real line.
type logitTransform struct {
	lower float64
	upper float64
}

func (t logitTransform) To(value float64) float64 {
	ratio := (value - t.lower) / (t.upper - value)
	return math.Log(ratio)
}

func (t logitTransform) From(u float64) float64 {
	sigma := 1 / (1 + math.Exp(-u))
	return t.lower + (t.upper-t.lower)*sigma
}

// transformFor chooses the transform matching a prior's support. Priors
// bounded below map through a shifted log, priors bounded on both sides
// through a scaled logit, everything else passes through unchanged.
func transformFor(prior params.Prior) Transform {
	bounded, ok := prior.(params.Bounded)
	if !ok {
		return identityTransform{}
	}
	lower, upper := bounded.Bounds()
	lowerFinite := !math.IsInf(lower, 0)
	upperFinite := !math.IsInf(upper, 0)
	switch {
	case lowerFinite && upperFinite:
		return logitTransform{lower: lower, upper: upper}
	case lowerFinite:
		return logTransform{lower: lower}
	default:
		return identityTransform{}
	}
}
