package acquisition

import (
	"math/rand"
	"testing"

	"github.com/sourcegraph/conc/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// constantModel returns a fixed posterior regardless of position.
type constantModel struct {
	mean     float64
	variance float64
}

func (m *constantModel) Fit(X [][]float64, y []float64) error { return nil }

func (m *constantModel) Posterior(x []float64) (float64, float64) {
	return m.mean, m.variance
}

func TestUpperConfidenceBound(t *testing.T) {
	ucb := &UpperConfidenceBound{Model: &constantModel{mean: 1.0, variance: 4.0}, Beta: 2.0}

	v, err := ucb.Evaluate([][]float64{{0.5}})
	require.NoError(t, err)
	assert.InDelta(t, 1.0+2.0*2.0, v, 1e-12)
	assert.False(t, ucb.IsMonteCarlo())

	_, err = ucb.Evaluate([][]float64{{0.1}, {0.2}})
	assert.Error(t, err, "single-point function must reject batches")
}

func TestExpectedImprovement(t *testing.T) {
	t.Run("no_uncertainty_below_best", func(t *testing.T) {
		ei := &ExpectedImprovement{Model: &constantModel{mean: 0.5}, Best: 1.0}
		v, err := ei.Evaluate([][]float64{{0.0}})
		require.NoError(t, err)
		assert.Equal(t, 0.0, v)
	})

	t.Run("no_uncertainty_above_best", func(t *testing.T) {
		ei := &ExpectedImprovement{Model: &constantModel{mean: 2.0}, Best: 1.0}
		v, err := ei.Evaluate([][]float64{{0.0}})
		require.NoError(t, err)
		assert.InDelta(t, 1.0, v, 1e-12)
	})

	t.Run("uncertainty_increases_value", func(t *testing.T) {
		flat := &ExpectedImprovement{Model: &constantModel{mean: 1.0}, Best: 1.0}
		noisy := &ExpectedImprovement{Model: &constantModel{mean: 1.0, variance: 1.0}, Best: 1.0}

		vFlat, err := flat.Evaluate([][]float64{{0.0}})
		require.NoError(t, err)
		vNoisy, err := noisy.Evaluate([][]float64{{0.0}})
		require.NoError(t, err)
		assert.Greater(t, vNoisy, vFlat)
	})
}

func TestProbabilityOfImprovement(t *testing.T) {
	pi := &ProbabilityOfImprovement{Model: &constantModel{mean: 1.0, variance: 1.0}, Best: 1.0}
	v, err := pi.Evaluate([][]float64{{0.0}})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, v, 1e-9, "mean equal to best gives even odds")
}

func TestQExpectedImprovementSupportsBatches(t *testing.T) {
	qei := &QExpectedImprovement{
		Model:   &constantModel{mean: 1.0, variance: 0.25},
		Best:    0.5,
		Samples: 4096,
		Rng:     rand.New(rand.NewSource(11)),
	}
	assert.True(t, qei.IsMonteCarlo())

	v, err := qei.Evaluate([][]float64{{0.0}, {1.0}, {2.0}})
	require.NoError(t, err)
	// Improvement of the batch maximum is at least the mean gap of 0.5.
	assert.Greater(t, v, 0.5)

	_, err = qei.Evaluate(nil)
	assert.Error(t, err)
}

func TestQExpectedImprovementConcurrentEvaluate(t *testing.T) {
	// The optimizer scores candidate batches from a goroutine pool, so a
	// shared function value must tolerate concurrent Evaluate calls on one
	// Rng.
	qei := &QExpectedImprovement{
		Model:   &constantModel{mean: 1.0, variance: 0.25},
		Best:    0.5,
		Samples: 64,
		Rng:     rand.New(rand.NewSource(11)),
	}

	p := pool.New().WithMaxGoroutines(8)
	evalErrs := make([]error, 32)
	for i := range evalErrs {
		p.Go(func() {
			_, evalErrs[i] = qei.Evaluate([][]float64{{0.0}, {1.0}})
		})
	}
	p.Wait()

	for _, err := range evalErrs {
		require.NoError(t, err)
	}
}
