package recommenders

import (
	"context"
	"math/rand"
	"sync"

	"github.com/XiaoConstantine/baydesign-go/pkg/errors"
	"github.com/XiaoConstantine/baydesign-go/pkg/searchspace"
)

// RandomRecommender draws constraint-satisfying points uniformly, with no
// model involved. It backs the initial iterations of a campaign before any
// measurements exist and serves as a baseline in benchmarks.
type RandomRecommender struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom creates a random recommender. Zero seed selects a fixed
// default.
func NewRandom(seed int64) *RandomRecommender {
	if seed == 0 {
		seed = 1
	}
	return &RandomRecommender{rng: rand.New(rand.NewSource(seed))}
}

// Recommend returns batchSize points drawn from the search space. All
// linear and cardinality constraints of the continuous subspace hold for
// every returned point.
func (r *RandomRecommender) Recommend(
	ctx context.Context,
	space *searchspace.SearchSpace,
	batchSize int,
) (*searchspace.Table, error) {
	if err := errors.CheckContext(ctx, "recommend random"); err != nil {
		return nil, err
	}
	if space == nil {
		return nil, errors.New(errors.InvalidInput, "search space is required")
	}
	if batchSize < 1 {
		return nil, errors.Errorf(errors.InvalidInput, "batch size must be positive, got %d", batchSize)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch space.Type() {
	case searchspace.TypeContinuous:
		return space.Continuous.SampleRandom(r.rng, batchSize)
	case searchspace.TypeDiscrete:
		return r.sampleDiscrete(space.Discrete, batchSize)
	default:
		return r.sampleHybrid(space, batchSize)
	}
}

func (r *RandomRecommender) sampleDiscrete(sub *searchspace.SubspaceDiscrete, batchSize int) (*searchspace.Table, error) {
	candidates := sub.Candidates()
	if candidates.NumRows() < batchSize {
		return nil, errors.Errorf(errors.IncompatibleSearchSpace,
			"discrete subspace has %d candidates, need %d", candidates.NumRows(), batchSize)
	}
	perm := r.rng.Perm(candidates.NumRows())
	rows := make([][]float64, batchSize)
	for i := 0; i < batchSize; i++ {
		rows[i] = candidates.Rows[perm[i]]
	}
	return searchspace.NewTable(sub.ParameterNames(), rows)
}

func (r *RandomRecommender) sampleHybrid(space *searchspace.SearchSpace, batchSize int) (*searchspace.Table, error) {
	discrete, err := r.sampleDiscreteWithReplacement(space.Discrete, batchSize)
	if err != nil {
		return nil, err
	}
	continuous, err := space.Continuous.SampleRandom(r.rng, batchSize)
	if err != nil {
		return nil, err
	}

	rows := make([][]float64, batchSize)
	for i := 0; i < batchSize; i++ {
		rows[i] = append(append([]float64{}, discrete[i]...), continuous.Rows[i]...)
	}
	return searchspace.NewTable(space.ParameterNames(), rows)
}

// sampleDiscreteWithReplacement keeps hybrid draws independent across the
// batch; the joint points stay distinct through their continuous part.
func (r *RandomRecommender) sampleDiscreteWithReplacement(sub *searchspace.SubspaceDiscrete, n int) ([][]float64, error) {
	candidates := sub.Candidates()
	if candidates.NumRows() == 0 {
		return nil, errors.New(errors.IncompatibleSearchSpace, "discrete subspace has no candidates")
	}
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		rows[i] = candidates.Rows[r.rng.Intn(candidates.NumRows())]
	}
	return rows, nil
}
