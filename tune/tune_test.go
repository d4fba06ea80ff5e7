package tune_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/probreg/core/dataset"
	"github.com/ezoic/probreg/core/distribution"
	"github.com/ezoic/probreg/core/model"
	"github.com/ezoic/probreg/core/params"
	"github.com/ezoic/probreg/crossval"
	"github.com/ezoic/probreg/metrics"
	"github.com/ezoic/probreg/models/linear"
	"github.com/ezoic/probreg/tune"
)

// noisyLine samples y = 2x + 1 with Gaussian noise of the given sigma,
// using a fixed PCG stream so every run sees the same data.
func noisyLine(t *testing.T, n int, sigma float64) *dataset.Dataset[float64] {
	t.Helper()
	r := rand.New(rand.NewPCG(42, 42))
	features := make([]float64, n)
	targets := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1) * 10
		features[i] = x
		targets.SetVec(i, 2*x+1+r.NormFloat64()*sigma)
	}
	ds, err := dataset.FromValues(features, targets)
	require.NoError(t, err)
	return ds
}

// newLinearEstimator builds a Bayesian linear estimator with the weight
// prior variance held fixed and the noise free to tune.
func newLinearEstimator(t *testing.T, initialNoise float64) *model.Estimator[float64] {
	t.Helper()
	m := linear.New()
	require.NoError(t, m.Params().SetValue(linear.ParamNoise, initialNoise))
	require.NoError(t, m.Params().SetPrior(linear.ParamNoise, tune.Positive{}))
	require.NoError(t, m.Params().SetPrior(linear.ParamPriorVariance, tune.Fixed{}))
	est, err := model.NewEstimator[float64](m)
	require.NoError(t, err)
	return est
}

func looNLL(t *testing.T, est *model.Estimator[float64], ds *dataset.Dataset[float64]) float64 {
	t.Helper()
	cv := crossval.New(est)
	scores, err := cv.ScoresMarginal(metrics.NegativeLogLikelihood, ds, crossval.LeaveOneOut(ds.Size()))
	require.NoError(t, err)
	mean, err := metrics.MeanAggregator(scores)
	require.NoError(t, err)
	return mean
}

func TestTune_ImprovesHeldOutLikelihood(t *testing.T) {
	ds := noisyLine(t, 25, 0.5)
	est := newLinearEstimator(t, 1e-3)

	before := looNLL(t, est, ds)

	tuner, err := tune.New(est, metrics.NegativeLogLikelihood, metrics.MeanAggregator,
		[]*dataset.Dataset[float64]{ds}, tune.Config{MaxEvaluations: 200})
	require.NoError(t, err)

	result, err := tuner.Tune()
	require.NoError(t, err)
	require.NotNil(t, result)

	require.NoError(t, est.Params().SetValues(result.Params))
	after := looNLL(t, est, ds)

	assert.Less(t, after, before, "tuning should improve held-out likelihood")
	assert.Greater(t, result.Params[linear.ParamNoise], 0.0, "positivity prior must hold")
	assert.Greater(t, result.Evaluations, 0)
}

func TestTune_PriorPullsTowardCenter(t *testing.T) {
	ds := noisyLine(t, 25, 0.5)
	prior := tune.Gaussian{Mu: 0.45, Sigma: 0.05}

	tuneNoise := func(noisePrior params.Prior) float64 {
		m := linear.New()
		require.NoError(t, m.Params().SetValue(linear.ParamNoise, 1e-3))
		require.NoError(t, m.Params().SetPrior(linear.ParamNoise, noisePrior))
		require.NoError(t, m.Params().SetPrior(linear.ParamPriorVariance, tune.Fixed{}))
		est, err := model.NewEstimator[float64](m)
		require.NoError(t, err)
		tuner, err := tune.New(est, metrics.NegativeLogLikelihood, metrics.MeanAggregator,
			[]*dataset.Dataset[float64]{ds}, tune.Config{MaxEvaluations: 200})
		require.NoError(t, err)
		result, err := tuner.Tune()
		require.NoError(t, err)
		return result.Params[linear.ParamNoise]
	}

	withPrior := tuneNoise(prior)
	withoutPrior := tuneNoise(tune.Uninformative{})

	assert.Greater(t, prior.LogLikelihood(withPrior), prior.LogLikelihood(withoutPrior),
		"the with-prior solution must sit closer to the prior center")
}

func TestTune_PositivityHoldsFromBoundary(t *testing.T) {
	ds := noisyLine(t, 15, 0.5)
	m := linear.New()
	require.NoError(t, m.Params().SetValue(linear.ParamNoise, 1e-6))
	require.NoError(t, m.Params().SetPrior(linear.ParamNoise, tune.Positive{}))
	require.NoError(t, m.Params().SetPrior(linear.ParamPriorVariance, tune.Positive{}))
	est, err := model.NewEstimator[float64](m)
	require.NoError(t, err)

	tuner, err := tune.New(est, metrics.NegativeLogLikelihood, metrics.MeanAggregator,
		[]*dataset.Dataset[float64]{ds}, tune.Config{MaxEvaluations: 120})
	require.NoError(t, err)

	result, err := tuner.Tune()
	require.NoError(t, err)

	require.NoError(t, est.Params().SetValues(result.Params))
	assert.True(t, est.Params().AreValid(), "every parameter must end inside its prior support")
}

func TestTune_RestoresParamsAfterSearch(t *testing.T) {
	ds := noisyLine(t, 15, 0.5)
	est := newLinearEstimator(t, 0.2)

	tuner, err := tune.New(est, metrics.NegativeLogLikelihood, metrics.MeanAggregator,
		[]*dataset.Dataset[float64]{ds}, tune.Config{MaxEvaluations: 30})
	require.NoError(t, err)

	_, err = tuner.Tune()
	require.NoError(t, err)

	assert.InDelta(t, 0.2, est.Params().Value(linear.ParamNoise), 1e-15,
		"the search must leave the store as it found it")
}

func TestTune_FixedParamsHeld(t *testing.T) {
	ds := noisyLine(t, 15, 0.5)
	est := newLinearEstimator(t, 0.2)
	initialPriorVariance := est.Params().Value(linear.ParamPriorVariance)

	tuner, err := tune.New(est, metrics.NegativeLogLikelihood, metrics.MeanAggregator,
		[]*dataset.Dataset[float64]{ds}, tune.Config{MaxEvaluations: 40})
	require.NoError(t, err)

	result, err := tuner.Tune()
	require.NoError(t, err)

	assert.Equal(t, initialPriorVariance, result.Params[linear.ParamPriorVariance],
		"fixed parameters surface unchanged in the result")
}

func TestTune_Deterministic(t *testing.T) {
	ds := noisyLine(t, 20, 0.5)

	run := func() map[string]float64 {
		est := newLinearEstimator(t, 1e-3)
		tuner, err := tune.New(est, metrics.NegativeLogLikelihood, metrics.MeanAggregator,
			[]*dataset.Dataset[float64]{ds}, tune.Config{MaxEvaluations: 60})
		require.NoError(t, err)
		result, err := tuner.Tune()
		require.NoError(t, err)
		return result.Params
	}

	first := run()
	second := run()
	assert.Equal(t, first, second, "identical inputs must give identical results")
}

func TestTune_MultipleDatasets(t *testing.T) {
	a := noisyLine(t, 12, 0.5)
	b := noisyLine(t, 18, 0.5)
	est := newLinearEstimator(t, 1e-3)

	tuner, err := tune.New(est, metrics.NegativeLogLikelihood, metrics.MeanAggregator,
		[]*dataset.Dataset[float64]{a, b}, tune.Config{MaxEvaluations: 80})
	require.NoError(t, err)

	result, err := tuner.Tune()
	require.NoError(t, err)
	assert.False(t, math.IsNaN(result.Objective))
}

func TestTune_AllEvaluationsInvalid(t *testing.T) {
	ds := noisyLine(t, 10, 0.5)
	est := newLinearEstimator(t, 0.5)

	nanMetric := func(pred, target *distribution.Marginal) (float64, error) {
		return math.NaN(), nil
	}

	tuner, err := tune.New(est, nanMetric, metrics.MeanAggregator,
		[]*dataset.Dataset[float64]{ds}, tune.Config{MaxEvaluations: 20})
	require.NoError(t, err)

	result, err := tuner.Tune()
	require.NoError(t, err)
	assert.True(t, math.IsNaN(result.Objective), "no valid evaluation means no objective")
	assert.Equal(t, result.Evaluations, result.InvalidEvaluations)
	assert.Contains(t, result.Params, linear.ParamNoise)
}

func TestTune_RejectsBoundaryStartPoint(t *testing.T) {
	ds := noisyLine(t, 10, 0.5)
	m := linear.New()
	require.NoError(t, m.Params().SetValue(linear.ParamNoise, 0))
	require.NoError(t, m.Params().SetPrior(linear.ParamNoise, tune.NonNegative{}))
	require.NoError(t, m.Params().SetPrior(linear.ParamPriorVariance, tune.Fixed{}))
	est, err := model.NewEstimator[float64](m)
	require.NoError(t, err)

	tuner, err := tune.New(est, metrics.NegativeLogLikelihood, metrics.MeanAggregator,
		[]*dataset.Dataset[float64]{ds}, tune.Config{MaxEvaluations: 40})
	require.NoError(t, err)

	_, err = tuner.Tune()
	require.Error(t, err, "a start value on the support boundary cannot seed the search")
	assert.ErrorContains(t, err, linear.ParamNoise)
	assert.InDelta(t, 0, est.Params().Value(linear.ParamNoise), 1e-15,
		"the store is left untouched on a failed start")
}

func TestTune_RequiresTunableParams(t *testing.T) {
	ds := noisyLine(t, 10, 0.5)
	m := linear.New()
	require.NoError(t, m.Params().SetPrior(linear.ParamNoise, tune.Fixed{}))
	require.NoError(t, m.Params().SetPrior(linear.ParamPriorVariance, tune.Fixed{}))
	est, err := model.NewEstimator[float64](m)
	require.NoError(t, err)

	_, err = tune.New(est, metrics.NegativeLogLikelihood, metrics.MeanAggregator,
		[]*dataset.Dataset[float64]{ds}, tune.Config{})
	assert.Error(t, err, "a fully fixed parameter set has nothing to tune")
}

func TestTune_RequiresDatasets(t *testing.T) {
	est := newLinearEstimator(t, 0.5)
	_, err := tune.New(est, metrics.NegativeLogLikelihood, metrics.MeanAggregator,
		nil, tune.Config{})
	assert.Error(t, err)
}
