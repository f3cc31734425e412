// Package campaign drives the iterative design-measure loop: it tracks
// measurements, refits the surrogate, and delegates candidate selection to
// the recommenders.
package campaign

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/XiaoConstantine/baydesign-go/pkg/acquisition"
	"github.com/XiaoConstantine/baydesign-go/pkg/errors"
	"github.com/XiaoConstantine/baydesign-go/pkg/logging"
	"github.com/XiaoConstantine/baydesign-go/pkg/optim"
	"github.com/XiaoConstantine/baydesign-go/pkg/recommenders"
	"github.com/XiaoConstantine/baydesign-go/pkg/searchspace"
	"github.com/XiaoConstantine/baydesign-go/pkg/surrogate"
)

// Measurement is one observed data point: a full parameter assignment plus
// the measured target value.
type Measurement struct {
	Parameters map[string]float64
	Target     float64
}

// Config configures a Campaign.
type Config struct {
	// Seed makes the whole campaign reproducible (default: 1).
	Seed int64

	// LengthScale overrides the surrogate kernel width when positive.
	LengthScale float64

	// NoiseVariance overrides the surrogate noise term when positive.
	NoiseVariance float64

	// MonteCarloSamples sets the posterior sample count for batch
	// recommendations. Zero selects the acquisition default.
	MonteCarloSamples int

	// Recommender overrides the model-based recommender settings.
	Recommender recommenders.ConstrainedConfig

	// Optimizer overrides the built-in random-restart optimizer settings.
	Optimizer optim.RandomRestartConfig
}

// Campaign owns the measurement history for one optimization run. Until the
// first measurement arrives, recommendations are random constraint
// satisfying draws; afterwards they maximize expected improvement under a
// Gaussian process fitted to the history.
type Campaign struct {
	id    uuid.UUID
	space *searchspace.SearchSpace

	model       *surrogate.GaussianProcess
	constrained *recommenders.ConstrainedRecommender
	random      *recommenders.RandomRecommender
	mcSamples   int
	seed        int64

	mu sync.Mutex
	x  [][]float64
	y  []float64
}

// New creates a campaign over the given search space.
func New(space *searchspace.SearchSpace, config Config) (*Campaign, error) {
	if space == nil {
		return nil, errors.New(errors.InvalidInput, "search space is required")
	}
	if config.Seed == 0 {
		config.Seed = 1
	}
	if config.Recommender.Seed == 0 {
		config.Recommender.Seed = config.Seed
	}
	if config.Optimizer.Seed == 0 {
		config.Optimizer.Seed = config.Seed
	}

	model := surrogate.NewGaussianProcess()
	if config.LengthScale > 0 {
		model.LengthScale = config.LengthScale
	}
	if config.NoiseVariance > 0 {
		model.NoiseVariance = config.NoiseVariance
	}

	return &Campaign{
		id:          uuid.New(),
		space:       space,
		model:       model,
		constrained: recommenders.NewConstrained(
			optim.NewRandomRestartOptimizer(config.Optimizer), config.Recommender),
		random:      recommenders.NewRandom(config.Seed),
		mcSamples:   config.MonteCarloSamples,
		seed:        config.Seed,
	}, nil
}

// ID returns the campaign identifier.
func (c *Campaign) ID() uuid.UUID { return c.id }

// NumMeasurements returns the size of the measurement history.
func (c *Campaign) NumMeasurements() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.y)
}

// AddMeasurements appends observations to the history. Each measurement
// must assign a finite value to every parameter of the search space.
func (c *Campaign) AddMeasurements(measurements ...Measurement) error {
	names := c.space.ParameterNames()

	rows := make([][]float64, 0, len(measurements))
	targets := make([]float64, 0, len(measurements))
	for _, m := range measurements {
		if math.IsNaN(m.Target) || math.IsInf(m.Target, 0) {
			return errors.New(errors.ValidationFailed, "measurement target must be finite")
		}
		row := make([]float64, len(names))
		for i, name := range names {
			v, ok := m.Parameters[name]
			if !ok {
				return errors.Errorf(errors.ValidationFailed,
					"measurement is missing parameter %q", name)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.Errorf(errors.ValidationFailed,
					"measurement value for %q must be finite", name)
			}
			row[i] = v
		}
		rows = append(rows, row)
		targets = append(targets, m.Target)
	}

	c.mu.Lock()
	c.x = append(c.x, rows...)
	c.y = append(c.y, targets...)
	c.mu.Unlock()
	return nil
}

// Recommend returns the next batch of candidate points to measure.
func (c *Campaign) Recommend(ctx context.Context, batchSize int) (*searchspace.Table, error) {
	ctx = logging.WithCampaignID(ctx, c.id.String())
	logger := logging.GetLogger()

	c.mu.Lock()
	n := len(c.y)
	c.mu.Unlock()

	if n == 0 {
		logger.Info(ctx, "No measurements yet, recommending %d random points", batchSize)
		return c.random.Recommend(ctx, c.space, batchSize)
	}

	acqf, err := c.buildAcquisition(batchSize)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Recommending %d points from %d measurements", batchSize, n)
	return c.constrained.Recommend(ctx, acqf, c.space, batchSize)
}

// buildAcquisition refits the surrogate on the current history and wraps it
// in expected improvement, Monte Carlo when a joint batch is requested.
func (c *Campaign) buildAcquisition(batchSize int) (acquisition.Function, error) {
	c.mu.Lock()
	x := make([][]float64, len(c.x))
	copy(x, c.x)
	y := make([]float64, len(c.y))
	copy(y, c.y)
	c.mu.Unlock()

	if err := c.model.Fit(x, y); err != nil {
		return nil, errors.Wrap(err, errors.OptimizationFailed, "surrogate fit failed")
	}

	best := math.Inf(-1)
	for _, v := range y {
		if v > best {
			best = v
		}
	}

	if batchSize > 1 {
		return &acquisition.QExpectedImprovement{
			Model:   c.model,
			Best:    best,
			Samples: c.mcSamples,
			Rng:     rand.New(rand.NewSource(c.seed)),
		}, nil
	}
	return &acquisition.ExpectedImprovement{Model: c.model, Best: best}, nil
}
