// Package recommenders turns an acquisition function and a search space
// into concrete candidate recommendations. The constrained recommender
// handles linear and cardinality constraints on continuous subspaces and
// brute-forces discrete and hybrid spaces; the random recommender draws
// constraint-satisfying points without a model.
package recommenders

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/XiaoConstantine/baydesign-go/pkg/acquisition"
	"github.com/XiaoConstantine/baydesign-go/pkg/errors"
	"github.com/XiaoConstantine/baydesign-go/pkg/logging"
	"github.com/XiaoConstantine/baydesign-go/pkg/optim"
	"github.com/XiaoConstantine/baydesign-go/pkg/params"
	"github.com/XiaoConstantine/baydesign-go/pkg/searchspace"
)

// DefaultMaxEnumeratedConfigurations bounds the exhaustive sweep over
// inactive-parameter configurations. Spaces with more configurations are
// sampled down to this many instead of enumerated.
const DefaultMaxEnumeratedConfigurations = 10

// ConstrainedConfig configures a ConstrainedRecommender.
type ConstrainedConfig struct {
	// MaxEnumeratedConfigurations switches the cardinality outer loop from
	// exhaustive enumeration to random sampling when the configuration
	// count exceeds it (default: DefaultMaxEnumeratedConfigurations).
	MaxEnumeratedConfigurations int

	// SamplingPercentage thins the discrete candidate set in hybrid
	// spaces before the per-candidate solves. Values in (0, 1) keep that
	// fraction of rows; 0 or 1 keeps all of them.
	SamplingPercentage float64

	// MaxGoroutines bounds the parallelism of per-configuration solves
	// (default: 8).
	MaxGoroutines int

	// Seed makes configuration and candidate sampling reproducible. Zero
	// selects a fixed default seed.
	Seed int64
}

// ConstrainedRecommender maximizes an acquisition function over a
// constrained search space through a pluggable continuous optimizer.
type ConstrainedRecommender struct {
	optimizer optim.ContinuousOptimizer

	maxEnumerated int
	samplingPct   float64
	maxGoroutines int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewConstrained creates a recommender around the given optimizer, applying
// defaults for unset config values. A nil optimizer selects the built-in
// random-restart implementation.
func NewConstrained(optimizer optim.ContinuousOptimizer, config ConstrainedConfig) *ConstrainedRecommender {
	if config.MaxEnumeratedConfigurations <= 0 {
		config.MaxEnumeratedConfigurations = DefaultMaxEnumeratedConfigurations
	}
	if config.MaxGoroutines <= 0 {
		config.MaxGoroutines = 8
	}
	if config.Seed == 0 {
		config.Seed = 1
	}
	if config.SamplingPercentage <= 0 || config.SamplingPercentage > 1 {
		config.SamplingPercentage = 1.0
	}
	if optimizer == nil {
		optimizer = optim.NewRandomRestartOptimizer(optim.RandomRestartConfig{Seed: config.Seed})
	}

	return &ConstrainedRecommender{
		optimizer:     optimizer,
		maxEnumerated: config.MaxEnumeratedConfigurations,
		samplingPct:   config.SamplingPercentage,
		maxGoroutines: config.MaxGoroutines,
		rng:           rand.New(rand.NewSource(config.Seed)),
	}
}

// Recommend returns batchSize points from the search space maximizing the
// acquisition function. Batch sizes above one require a Monte Carlo
// acquisition function; the capability is checked before any optimizer
// call so incompatible requests fail without wasted work.
func (r *ConstrainedRecommender) Recommend(
	ctx context.Context,
	acqf acquisition.Function,
	space *searchspace.SearchSpace,
	batchSize int,
) (*searchspace.Table, error) {
	if err := errors.CheckContext(ctx, "recommend"); err != nil {
		return nil, err
	}
	if acqf == nil {
		return nil, errors.New(errors.InvalidInput, "acquisition function is required")
	}
	if space == nil {
		return nil, errors.New(errors.InvalidInput, "search space is required")
	}
	if batchSize < 1 {
		return nil, errors.Errorf(errors.InvalidInput, "batch size must be positive, got %d", batchSize)
	}
	if batchSize > 1 && !acqf.IsMonteCarlo() {
		return nil, errors.Errorf(errors.IncompatibleAcquisition,
			"batch size %d requires a Monte Carlo acquisition function", batchSize)
	}

	switch space.Type() {
	case searchspace.TypeDiscrete:
		return r.recommendDiscrete(ctx, acqf, space.Discrete, batchSize)
	case searchspace.TypeContinuous:
		return r.recommendContinuous(ctx, acqf, space.Continuous, batchSize)
	default:
		return r.recommendHybrid(ctx, acqf, space, batchSize)
	}
}

func (r *ConstrainedRecommender) recommendContinuous(
	ctx context.Context,
	acqf acquisition.Function,
	sub *searchspace.SubspaceContinuous,
	batchSize int,
) (*searchspace.Table, error) {
	if !sub.HasCardinalityConstraints() {
		points, _, err := r.solveContinuous(ctx, acqf, sub, nil, batchSize, 0)
		if err != nil {
			return nil, err
		}
		return searchspace.NewTable(sub.ParameterNames(), points)
	}
	return r.recommendWithCardinality(ctx, acqf, sub, batchSize)
}

// recommendWithCardinality decomposes the cardinality-constrained problem
// into fix-to-zero subproblems, solves them independently and keeps the
// best result. All inactive-parameter configurations are tried when their
// count fits the enumeration budget; otherwise the loop runs over a random
// sample of configurations.
func (r *ConstrainedRecommender) recommendWithCardinality(
	ctx context.Context,
	acqf acquisition.Function,
	sub *searchspace.SubspaceContinuous,
	batchSize int,
) (*searchspace.Table, error) {
	logger := logging.GetLogger()

	total := sub.TotalInactiveConfigurations()
	var configs [][]string
	if total <= r.maxEnumerated {
		for cfg := range sub.InactiveConfigurations() {
			configs = append(configs, cfg)
		}
	} else {
		logger.Debug(ctx, "Sampling %d of %d inactive parameter configurations", r.maxEnumerated, total)
		r.mu.Lock()
		for i := 0; i < r.maxEnumerated; i++ {
			configs = append(configs, sub.SampleInactiveConfiguration(r.rng))
		}
		r.mu.Unlock()
	}
	if len(configs) == 0 {
		return nil, errors.New(errors.ConfigurationExhausted,
			"cardinality constraints admit no inactive parameter configuration")
	}

	type result struct {
		points [][]float64
		value  float64
	}
	results := make([]result, len(configs))
	solveErrs := make([]error, len(configs))

	p := pool.New().WithMaxGoroutines(r.maxGoroutines)
	for i, inactive := range configs {
		p.Go(func() {
			view, err := sub.EnsureNonzeroParameters(inactive)
			if err != nil {
				solveErrs[i] = err
				return
			}
			fixed := sub.FixedZeroFeatures(inactive, 0)
			points, value, err := r.solveContinuous(ctx, acqf, view, fixed, batchSize, 0)
			if err != nil {
				solveErrs[i] = err
				return
			}
			results[i] = result{points: points, value: value}
		})
	}
	p.Wait()

	for i, err := range solveErrs {
		if err != nil {
			return nil, errors.WithFields(
				errors.Wrap(err, errors.OptimizationFailed, "inactive parameter configuration failed"),
				errors.Fields{"inactive_parameters": configs[i]})
		}
	}

	best := -1
	bestValue := math.Inf(-1)
	for i := range results {
		if results[i].value > bestValue {
			best = i
			bestValue = results[i].value
		}
	}
	if best < 0 || results[best].points == nil {
		return nil, errors.New(errors.ConfigurationExhausted,
			"no inactive parameter configuration produced a recommendation")
	}
	return searchspace.NewTable(sub.ParameterNames(), results[best].points)
}

// solveContinuous runs one optimizer call over a (possibly reduced)
// continuous view. indexOffset shifts constraint and fixed-feature indices
// when the continuous dimensions sit behind discrete ones in the joint
// point layout.
func (r *ConstrainedRecommender) solveContinuous(
	ctx context.Context,
	acqf acquisition.Function,
	view *searchspace.SubspaceContinuous,
	fixed map[int]float64,
	batchSize int,
	indexOffset int,
) ([][]float64, float64, error) {
	problem := optim.Problem{
		Objective:     acqf.Evaluate,
		Bounds:        view.Bounds(),
		Q:             batchSize,
		Equality:      view.ExportEqualities(indexOffset),
		Inequality:    view.ExportInequalities(indexOffset),
		FixedFeatures: fixed,
	}
	points, value, err := r.optimizer.Optimize(ctx, problem)
	if err != nil {
		return nil, 0, err
	}
	if len(points) != batchSize {
		return nil, 0, errors.Errorf(errors.OptimizationFailed,
			"optimizer returned %d points, expected %d", len(points), batchSize)
	}
	return points, value, nil
}

// recommendDiscrete scores candidate rows directly and selects the batch
// sequentially: each slot takes the candidate maximizing the joint
// acquisition value given the points already chosen. Candidates are drawn
// without replacement.
func (r *ConstrainedRecommender) recommendDiscrete(
	ctx context.Context,
	acqf acquisition.Function,
	sub *searchspace.SubspaceDiscrete,
	batchSize int,
) (*searchspace.Table, error) {
	candidates := sub.Candidates()
	if candidates.NumRows() < batchSize {
		return nil, errors.Errorf(errors.IncompatibleSearchSpace,
			"discrete subspace has %d candidates, need %d", candidates.NumRows(), batchSize)
	}

	taken := make(map[int]bool, batchSize)
	var selected [][]float64
	for len(selected) < batchSize {
		bestIdx := -1
		bestValue := math.Inf(-1)
		for i, row := range candidates.Rows {
			if taken[i] {
				continue
			}
			if err := errors.CheckContext(ctx, "recommend discrete"); err != nil {
				return nil, err
			}
			value, err := acqf.Evaluate(append(append([][]float64{}, selected...), row))
			if err != nil {
				return nil, err
			}
			if value > bestValue {
				bestIdx = i
				bestValue = value
			}
		}
		if bestIdx < 0 {
			return nil, errors.New(errors.OptimizationFailed,
				"no discrete candidate produced a finite acquisition value")
		}
		taken[bestIdx] = true
		selected = append(selected, candidates.Rows[bestIdx])
	}
	return searchspace.NewTable(sub.ParameterNames(), selected)
}

// recommendHybrid brute-forces the discrete candidates: for every discrete
// row the continuous part is optimized with the discrete dimensions pinned,
// and the best joint batch wins. Cardinality constraints are not supported
// in hybrid spaces.
func (r *ConstrainedRecommender) recommendHybrid(
	ctx context.Context,
	acqf acquisition.Function,
	space *searchspace.SearchSpace,
	batchSize int,
) (*searchspace.Table, error) {
	if space.Continuous.HasCardinalityConstraints() {
		return nil, errors.New(errors.IncompatibleSearchSpace,
			"cardinality constraints are not supported in hybrid search spaces")
	}

	candidates := space.Discrete.Candidates()
	rows := candidates.Rows
	if r.samplingPct < 1.0 {
		keep := int(math.Ceil(r.samplingPct * float64(len(rows))))
		r.mu.Lock()
		perm := r.rng.Perm(len(rows))
		r.mu.Unlock()
		sampled := make([][]float64, 0, keep)
		for _, idx := range perm[:keep] {
			sampled = append(sampled, rows[idx])
		}
		rows = sampled
	}
	if len(rows) == 0 {
		return nil, errors.New(errors.IncompatibleSearchSpace,
			"hybrid recommendation requires at least one discrete candidate")
	}

	numDiscrete := len(candidates.Columns)
	contBounds := space.Continuous.Bounds()

	type result struct {
		points [][]float64
		value  float64
	}
	results := make([]result, len(rows))
	solveErrs := make([]error, len(rows))

	p := pool.New().WithMaxGoroutines(r.maxGoroutines)
	for i, discreteRow := range rows {
		p.Go(func() {
			joint := jointBounds(discreteRow, contBounds)
			fixed := make(map[int]float64, numDiscrete)
			for d, v := range discreteRow {
				fixed[d] = v
			}
			problem := optim.Problem{
				Objective:     acqf.Evaluate,
				Bounds:        joint,
				Q:             batchSize,
				Equality:      space.Continuous.ExportEqualities(numDiscrete),
				Inequality:    space.Continuous.ExportInequalities(numDiscrete),
				FixedFeatures: fixed,
			}
			points, value, err := r.optimizer.Optimize(ctx, problem)
			if err != nil {
				solveErrs[i] = err
				return
			}
			results[i] = result{points: points, value: value}
		})
	}
	p.Wait()

	for i, err := range solveErrs {
		if err != nil {
			return nil, errors.WithFields(
				errors.Wrap(err, errors.OptimizationFailed, "hybrid candidate solve failed"),
				errors.Fields{"candidate_index": i})
		}
	}

	best := -1
	bestValue := math.Inf(-1)
	for i := range results {
		if results[i].value > bestValue {
			best = i
			bestValue = results[i].value
		}
	}
	if best < 0 || results[best].points == nil {
		return nil, errors.New(errors.ConfigurationExhausted,
			"no discrete candidate produced a recommendation")
	}
	return searchspace.NewTable(space.ParameterNames(), results[best].points)
}

// jointBounds prefixes the continuous box with degenerate intervals pinning
// the discrete dimensions to one candidate row.
func jointBounds(discreteRow []float64, continuous []params.Interval) []params.Interval {
	joint := make([]params.Interval, 0, len(discreteRow)+len(continuous))
	for _, v := range discreteRow {
		joint = append(joint, params.MustInterval(v, v))
	}
	return append(joint, continuous...)
}
