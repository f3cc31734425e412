package optim

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/XiaoConstantine/baydesign-go/pkg/errors"
)

// RandomRestartConfig configures the default optimizer.
type RandomRestartConfig struct {
	// NumCandidates is the number of feasible candidate batches drawn and
	// scored per solve (default: 64).
	NumCandidates int

	// MaxGoroutines bounds the parallelism of batch scoring (default: 8).
	MaxGoroutines int

	// Seed makes the candidate draw reproducible. Zero selects a fixed
	// default seed.
	Seed int64
}

// RandomRestartOptimizer is a derivative-free implementation of the
// ContinuousOptimizer contract: it draws feasible candidate batches,
// scores them with the objective in parallel, and returns the best batch.
// Constraint handling happens entirely at the sampling stage, so any
// returned batch is feasible by construction.
type RandomRestartOptimizer struct {
	numCandidates int
	maxGoroutines int
	seed          int64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomRestartOptimizer creates the optimizer, applying defaults for
// unset config values.
func NewRandomRestartOptimizer(config RandomRestartConfig) *RandomRestartOptimizer {
	if config.NumCandidates <= 0 {
		config.NumCandidates = 64
	}
	if config.MaxGoroutines <= 0 {
		config.MaxGoroutines = 8
	}
	if config.Seed == 0 {
		config.Seed = 1
	}

	return &RandomRestartOptimizer{
		numCandidates: config.NumCandidates,
		maxGoroutines: config.MaxGoroutines,
		seed:          config.Seed,
		rng:           rand.New(rand.NewSource(config.Seed)),
	}
}

// Optimize implements ContinuousOptimizer.
func (o *RandomRestartOptimizer) Optimize(ctx context.Context, problem Problem) ([][]float64, float64, error) {
	if err := errors.CheckContext(ctx, "optimize"); err != nil {
		return nil, 0, err
	}
	if problem.Q <= 0 {
		return nil, 0, errors.Errorf(errors.InvalidInput, "q must be positive, got %d", problem.Q)
	}
	if len(problem.Bounds) == 0 {
		return nil, 0, errors.New(errors.InvalidInput, "problem has no dimensions")
	}
	if problem.Objective == nil {
		return nil, 0, errors.New(errors.InvalidInput, "problem has no objective")
	}

	// Draw all candidate batches up front under the lock so concurrent
	// Optimize calls stay reproducible.
	o.mu.Lock()
	candidates := make([][][]float64, 0, o.numCandidates)
	var drawErr error
	for i := 0; i < o.numCandidates; i++ {
		batch, err := SampleFeasible(o.rng, problem.Bounds, problem.Equality, problem.Inequality, problem.FixedFeatures, problem.Q)
		if err != nil {
			drawErr = err
			break
		}
		candidates = append(candidates, batch)
	}
	o.mu.Unlock()
	if drawErr != nil {
		return nil, 0, drawErr
	}

	// Score batches in parallel; selection below is order-stable.
	values := make([]float64, len(candidates))
	evalErrs := make([]error, len(candidates))
	p := pool.New().WithMaxGoroutines(o.maxGoroutines)
	for i, batch := range candidates {
		i, batch := i, batch
		p.Go(func() {
			values[i], evalErrs[i] = problem.Objective(batch)
		})
	}
	p.Wait()

	for _, err := range evalErrs {
		if err != nil {
			return nil, 0, errors.Wrap(err, errors.OptimizationFailed, "objective evaluation failed")
		}
	}

	bestIdx := 0
	bestValue := math.Inf(-1)
	for i, v := range values {
		if v > bestValue {
			bestValue = v
			bestIdx = i
		}
	}
	return candidates[bestIdx], bestValue, nil
}
