// Package acquisition defines the acquisition-function contract used by the
// recommenders, together with standard implementations over a surrogate
// posterior. All functions follow the maximization convention: larger values
// mark more promising candidates.
package acquisition

import (
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/XiaoConstantine/baydesign-go/pkg/errors"
	"github.com/XiaoConstantine/baydesign-go/pkg/surrogate"
)

// Function maps a batch of candidate points to a scalar utility.
// IsMonteCarlo reports whether the function supports joint evaluation of
// batches larger than one; the recommenders enforce this capability before
// any optimizer call.
type Function interface {
	Evaluate(batch [][]float64) (float64, error)
	IsMonteCarlo() bool
}

func singlePoint(batch [][]float64) ([]float64, error) {
	if len(batch) != 1 {
		return nil, errors.Errorf(errors.IncompatibleAcquisition,
			"acquisition function supports single-point evaluation only, got batch of %d", len(batch))
	}
	return batch[0], nil
}

// UpperConfidenceBound is mean + Beta * sqrt(variance).
type UpperConfidenceBound struct {
	Model surrogate.Model

	// Beta controls the exploration-exploitation trade-off; higher values
	// favor uncertain regions.
	Beta float64
}

func (u *UpperConfidenceBound) Evaluate(batch [][]float64) (float64, error) {
	x, err := singlePoint(batch)
	if err != nil {
		return 0, err
	}
	mean, variance := u.Model.Posterior(x)
	return mean + u.Beta*math.Sqrt(variance), nil
}

func (u *UpperConfidenceBound) IsMonteCarlo() bool { return false }

// ExpectedImprovement is the expected magnitude of improvement over Best.
type ExpectedImprovement struct {
	Model surrogate.Model

	// Best is the best observed objective value so far.
	Best float64

	// Xi is the minimum improvement margin.
	Xi float64
}

func (e *ExpectedImprovement) Evaluate(batch [][]float64) (float64, error) {
	x, err := singlePoint(batch)
	if err != nil {
		return 0, err
	}
	mean, variance := e.Model.Posterior(x)
	sigma := math.Sqrt(variance)
	if sigma == 0 {
		return math.Max(mean-e.Best-e.Xi, 0), nil
	}
	z := (mean - e.Best - e.Xi) / sigma
	return (mean-e.Best-e.Xi)*distuv.UnitNormal.CDF(z) + sigma*distuv.UnitNormal.Prob(z), nil
}

func (e *ExpectedImprovement) IsMonteCarlo() bool { return false }

// ProbabilityOfImprovement is the probability of exceeding Best by Xi.
type ProbabilityOfImprovement struct {
	Model surrogate.Model
	Best  float64
	Xi    float64
}

func (p *ProbabilityOfImprovement) Evaluate(batch [][]float64) (float64, error) {
	x, err := singlePoint(batch)
	if err != nil {
		return 0, err
	}
	mean, variance := p.Model.Posterior(x)
	sigma := math.Sqrt(variance)
	if sigma == 0 {
		if mean > p.Best+p.Xi {
			return 1, nil
		}
		return 0, nil
	}
	return distuv.UnitNormal.CDF((mean - p.Best - p.Xi) / sigma), nil
}

func (p *ProbabilityOfImprovement) IsMonteCarlo() bool { return false }

// QExpectedImprovement is a Monte Carlo batch acquisition function: the
// expected improvement of the best point in the batch, estimated by drawing
// independent posterior samples per point.
type QExpectedImprovement struct {
	Model surrogate.Model
	Best  float64

	// Samples is the number of Monte Carlo draws; zero selects a default.
	Samples int

	// Rng makes the estimator reproducible. A nil Rng falls back to a
	// fixed-seed source. Draws are serialized internally, so one function
	// value can be evaluated from multiple goroutines.
	Rng *rand.Rand

	mu sync.Mutex
}

func (q *QExpectedImprovement) Evaluate(batch [][]float64) (float64, error) {
	if len(batch) == 0 {
		return 0, errors.New(errors.InvalidInput, "empty batch")
	}

	samples := q.Samples
	if samples <= 0 {
		samples = 128
	}

	means := make([]float64, len(batch))
	sigmas := make([]float64, len(batch))
	for i, x := range batch {
		mean, variance := q.Model.Posterior(x)
		means[i] = mean
		sigmas[i] = math.Sqrt(variance)
	}

	// The optimizer evaluates objectives from a goroutine pool and
	// math/rand.Rand is not safe for concurrent use, so the draw is
	// serialized.
	q.mu.Lock()
	defer q.mu.Unlock()
	rng := q.Rng
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	var total float64
	for s := 0; s < samples; s++ {
		best := 0.0
		for i := range batch {
			improvement := means[i] + sigmas[i]*rng.NormFloat64() - q.Best
			if improvement > best {
				best = improvement
			}
		}
		total += best
	}
	return total / float64(samples), nil
}

func (q *QExpectedImprovement) IsMonteCarlo() bool { return true }
