// Package tune provides the hyperparameter tuning engine: priors over
// parameters, invertible transforms into unconstrained space, construction
// of a cross-validated objective and the loop driving an external optimizer
// over it.
package tune

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Uninformative is the prior of an unconstrained parameter. It accepts
// every value and contributes nothing to the prior likelihood.
type Uninformative struct{}

// IsValid implements params.Prior.
func (Uninformative) IsValid(float64) bool { return true }

// LogLikelihood implements params.Prior.
func (Uninformative) LogLikelihood(float64) float64 { return 0 }

// Fixed marks a parameter as held constant during tuning. The tuning engine
// removes fixed parameters from the search vector; their values still
// contribute to prior likelihood accounting (trivially, zero).
type Fixed struct{}

// IsValid implements params.Prior.
func (Fixed) IsValid(float64) bool { return true }

// LogLikelihood implements params.Prior.
func (Fixed) LogLikelihood(float64) float64 { return 0 }

// Fixed marks the prior as removing its parameter from the search.
func (Fixed) Fixed() bool { return true }

// Positive constrains a parameter to strictly positive values with no
// preference among them.
type Positive struct{}

// IsValid implements params.Prior.
func (Positive) IsValid(value float64) bool { return value > 0 }

// LogLikelihood implements params.Prior.
func (Positive) LogLikelihood(value float64) float64 {
	if value > 0 {
		return 0
	}
	return math.Inf(-1)
}

// Bounds implements params.Bounded.
func (Positive) Bounds() (float64, float64) { return 0, math.Inf(1) }

// NonNegative constrains a parameter to values greater than or equal to
// zero.
type NonNegative struct{}

// IsValid implements params.Prior.
func (NonNegative) IsValid(value float64) bool { return value >= 0 }

// LogLikelihood implements params.Prior.
func (NonNegative) LogLikelihood(value float64) float64 {
	if value >= 0 {
		return 0
	}
	return math.Inf(-1)
}

// Bounds implements params.Bounded.
func (NonNegative) Bounds() (float64, float64) { return 0, math.Inf(1) }

// Uniform is a flat prior over a bounded interval.
type Uniform struct {
	Lower float64
	Upper float64
}

// IsValid implements params.Prior.
func (u Uniform) IsValid(value float64) bool {
	return value >= u.Lower && value <= u.Upper
}

// LogLikelihood implements params.Prior.
func (u Uniform) LogLikelihood(value float64) float64 {
	if !u.IsValid(value) {
		return math.Inf(-1)
	}
	return -math.Log(u.Upper - u.Lower)
}

// Bounds implements params.Bounded.
func (u Uniform) Bounds() (float64, float64) { return u.Lower, u.Upper }

// Gaussian pulls a parameter towards Mu with strength set by Sigma.
type Gaussian struct {
	Mu    float64
	Sigma float64
}

// IsValid implements params.Prior.
func (Gaussian) IsValid(float64) bool { return true }

// LogLikelihood implements params.Prior.
func (g Gaussian) LogLikelihood(value float64) float64 {
	return distuv.Normal{Mu: g.Mu, Sigma: g.Sigma}.LogProb(value)
}

// LogNormal constrains a parameter to positive values whose logarithm is
// normally distributed.
type LogNormal struct {
	Mu    float64
	Sigma float64
}

// IsValid implements params.Prior.
func (LogNormal) IsValid(value float64) bool { return value > 0 }

// LogLikelihood implements params.Prior.
func (l LogNormal) LogLikelihood(value float64) float64 {
	if value <= 0 {
		return math.Inf(-1)
	}
	return distuv.LogNormal{Mu: l.Mu, Sigma: l.Sigma}.LogProb(value)
}

// Bounds implements params.Bounded.
func (LogNormal) Bounds() (float64, float64) { return 0, math.Inf(1) }
