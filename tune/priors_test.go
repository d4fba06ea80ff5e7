package tune

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezoic/probreg/core/params"
)

func TestPriorSupports(t *testing.T) {
	tests := []struct {
		name    string
		prior   params.Prior
		valid   []float64
		invalid []float64
	}{
		{"uninformative", Uninformative{}, []float64{-1e10, 0, 1e10}, nil},
		{"positive", Positive{}, []float64{1e-300, 1, 1e10}, []float64{0, -1}},
		{"non-negative", NonNegative{}, []float64{0, 1}, []float64{-1e-12}},
		{"uniform", Uniform{Lower: -1, Upper: 1}, []float64{-1, 0, 1}, []float64{-1.1, 1.1}},
		{"gaussian", Gaussian{Mu: 0, Sigma: 1}, []float64{-100, 0, 100}, nil},
		{"log-normal", LogNormal{Mu: 0, Sigma: 1}, []float64{0.1, 10}, []float64{0, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, v := range tt.valid {
				assert.True(t, tt.prior.IsValid(v), "value %v should be valid", v)
			}
			for _, v := range tt.invalid {
				assert.False(t, tt.prior.IsValid(v), "value %v should be invalid", v)
				assert.True(t, math.IsInf(tt.prior.LogLikelihood(v), -1),
					"invalid value %v should have -Inf log likelihood", v)
			}
		})
	}
}

func TestGaussianLogLikelihood(t *testing.T) {
	g := Gaussian{Mu: 0, Sigma: 1}
	// log N(0; 0, 1) = -0.5*log(2*pi).
	assert.InDelta(t, -0.5*math.Log(2*math.Pi), g.LogLikelihood(0), 1e-12)
	assert.Greater(t, g.LogLikelihood(0), g.LogLikelihood(2), "density should fall away from the mean")
}

func TestUniformLogLikelihood(t *testing.T) {
	u := Uniform{Lower: 0, Upper: 4}
	assert.InDelta(t, -math.Log(4), u.LogLikelihood(1), 1e-12)
}

func TestFixedIsFixed(t *testing.T) {
	assert.True(t, params.IsFixed(Fixed{}))
	assert.False(t, params.IsFixed(Positive{}))
	assert.False(t, params.IsFixed(Uniform{Lower: 0, Upper: 1}))
}

func TestTransformRoundTrips(t *testing.T) {
	tests := []struct {
		name   string
		prior  params.Prior
		values []float64
	}{
		{"unbounded identity", Uninformative{}, []float64{-5, 0, 3}},
		{"positive log", Positive{}, []float64{0.001, 1, 50}},
		{"bounded logit", Uniform{Lower: -2, Upper: 3}, []float64{-1.9, 0, 2.9}},
		{"log-normal log", LogNormal{Mu: 0, Sigma: 1}, []float64{0.5, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := transformFor(tt.prior)
			for _, v := range tt.values {
				assert.InDelta(t, v, tr.From(tr.To(v)), 1e-9, "round trip of %v", v)
			}
		})
	}
}

func TestTransformStaysInSupport(t *testing.T) {
	positive := transformFor(Positive{})
	for _, u := range []float64{-50, -1, 0, 1, 50} {
		assert.Greater(t, positive.From(u), 0.0)
	}

	bounded := transformFor(Uniform{Lower: 2, Upper: 5})
	for _, u := range []float64{-50, 0, 50} {
		v := bounded.From(u)
		assert.GreaterOrEqual(t, v, 2.0)
		assert.LessOrEqual(t, v, 5.0)
	}
}

func TestTransformFor_NilPrior(t *testing.T) {
	tr := transformFor(nil)
	assert.Equal(t, 7.0, tr.To(7.0))
}
