package recommenders

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/baydesign-go/internal/testutil"
	"github.com/XiaoConstantine/baydesign-go/pkg/constraints"
	"github.com/XiaoConstantine/baydesign-go/pkg/errors"
	"github.com/XiaoConstantine/baydesign-go/pkg/params"
	"github.com/XiaoConstantine/baydesign-go/pkg/searchspace"
)

func continuousSpace(t *testing.T, names []string, linear []*constraints.Linear, cardinality []*constraints.Cardinality) *searchspace.SearchSpace {
	t.Helper()
	ps := make([]params.NumericalContinuousParameter, len(names))
	for i, name := range names {
		ps[i] = params.MustContinuous(name, 0, 1)
	}
	space, err := searchspace.NewContinuous(ps, linear, cardinality)
	require.NoError(t, err)
	return space
}

func cardinalityConstraint(t *testing.T, names []string, minCard, maxCard int) *constraints.Cardinality {
	t.Helper()
	c, err := constraints.NewCardinality(names, minCard, maxCard)
	require.NoError(t, err)
	return c
}

func TestRecommendRejectsBatchWithoutMonteCarlo(t *testing.T) {
	optimizer := &testutil.MockOptimizer{}
	rec := NewConstrained(optimizer, ConstrainedConfig{})
	space := continuousSpace(t, []string{"x1", "x2"}, nil, nil)

	acqf := &testutil.MockAcquisition{MonteCarlo: false}
	_, err := rec.Recommend(context.Background(), acqf, space, 5)

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.IncompatibleAcquisition))
	assert.Equal(t, 0, optimizer.CallCount())
	assert.Equal(t, 0, acqf.Calls())
}

func TestRecommendInputValidation(t *testing.T) {
	rec := NewConstrained(&testutil.MockOptimizer{}, ConstrainedConfig{})
	space := continuousSpace(t, []string{"x1"}, nil, nil)
	acqf := &testutil.MockAcquisition{}

	_, err := rec.Recommend(context.Background(), nil, space, 1)
	require.Error(t, err)

	_, err = rec.Recommend(context.Background(), acqf, nil, 1)
	require.Error(t, err)

	_, err = rec.Recommend(context.Background(), acqf, space, 0)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.InvalidInput))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = rec.Recommend(ctx, acqf, space, 1)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.Canceled))
}

func TestRecommendContinuousConstrained(t *testing.T) {
	// Six unit parameters, one equality over the first four, one
	// inequality mixing both groups, and at most one of x1, x2 active.
	space := continuousSpace(t,
		[]string{"x1", "x2", "x3", "x4", "x5", "x6"},
		[]*constraints.Linear{
			constraints.MustLinear([]string{"x1", "x2", "x3", "x4"}, constraints.OpEqual, nil, 1.0),
			constraints.MustLinear([]string{"x1", "x2", "x5", "x6"}, constraints.OpGreaterEqual, nil, 1.0),
		},
		[]*constraints.Cardinality{
			cardinalityConstraint(t, []string{"x1", "x2"}, 0, 1),
		},
	)

	rec := NewConstrained(nil, ConstrainedConfig{Seed: 42})
	acqf := &testutil.MockAcquisition{}

	table, err := rec.Recommend(context.Background(), acqf, space, 1)
	require.NoError(t, err)
	require.Equal(t, 1, table.NumRows())

	const tol = 1e-3
	row := table.Rows[0]
	assert.InDelta(t, 1.0, row[0]+row[1]+row[2]+row[3], tol)
	assert.GreaterOrEqual(t, row[0]+row[1]+row[4]+row[5], 1.0-tol)

	active := 0
	for _, v := range row[:2] {
		if math.Abs(v) > 0 {
			active++
		}
	}
	assert.LessOrEqual(t, active, 1)
}

func TestCardinalityLoopEnumeratesSmallSpaces(t *testing.T) {
	// Two governed parameters with cardinality 0..1 give three inactive
	// configurations, below the enumeration budget.
	space := continuousSpace(t,
		[]string{"x1", "x2", "x3"},
		nil,
		[]*constraints.Cardinality{
			cardinalityConstraint(t, []string{"x1", "x2"}, 0, 1),
		},
	)

	optimizer := &testutil.MockOptimizer{Result: [][]float64{{0.5, 0.5, 0.5}}, Value: 1.0}
	rec := NewConstrained(optimizer, ConstrainedConfig{})

	_, err := rec.Recommend(context.Background(), &testutil.MockAcquisition{}, space, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, optimizer.CallCount())
}

func TestCardinalityLoopSamplesLargeSpaces(t *testing.T) {
	// Ten governed parameters with cardinality 0..5 give far more
	// configurations than the budget, so the loop samples instead.
	names := []string{"x1", "x2", "x3", "x4", "x5", "x6", "x7", "x8", "x9", "x10"}
	space := continuousSpace(t, names, nil,
		[]*constraints.Cardinality{
			cardinalityConstraint(t, names, 0, 5),
		},
	)

	row := make([]float64, len(names))
	optimizer := &testutil.MockOptimizer{Result: [][]float64{row}, Value: 1.0}
	rec := NewConstrained(optimizer, ConstrainedConfig{MaxEnumeratedConfigurations: 4})

	_, err := rec.Recommend(context.Background(), &testutil.MockAcquisition{}, space, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, optimizer.CallCount())
}

func TestCardinalityLoopPinsInactiveParameters(t *testing.T) {
	space := continuousSpace(t,
		[]string{"x1", "x2"},
		nil,
		[]*constraints.Cardinality{
			cardinalityConstraint(t, []string{"x1", "x2"}, 0, 1),
		},
	)

	optimizer := &testutil.MockOptimizer{Result: [][]float64{{0, 0.5}}, Value: 1.0}
	rec := NewConstrained(optimizer, ConstrainedConfig{})

	_, err := rec.Recommend(context.Background(), &testutil.MockAcquisition{}, space, 1)
	require.NoError(t, err)

	// Inactive sets: {x1}, {x2}, {x1,x2}; the fixed-feature maps must pin
	// exactly the inactive indices to zero.
	problems := optimizer.Problems()
	require.Len(t, problems, 3)

	var pinned []map[int]float64
	for _, p := range problems {
		pinned = append(pinned, p.FixedFeatures)
	}
	assert.Contains(t, pinned, map[int]float64{0: 0.0})
	assert.Contains(t, pinned, map[int]float64{1: 0.0})
	assert.Contains(t, pinned, map[int]float64{0: 0.0, 1: 0.0})
}

func TestCardinalityLoopAbortsOnSolveFailure(t *testing.T) {
	space := continuousSpace(t,
		[]string{"x1", "x2"},
		nil,
		[]*constraints.Cardinality{
			cardinalityConstraint(t, []string{"x1", "x2"}, 0, 1),
		},
	)

	optimizer := &testutil.MockOptimizer{
		Err: errors.New(errors.OptimizationFailed, "solver diverged"),
	}
	rec := NewConstrained(optimizer, ConstrainedConfig{})

	_, err := rec.Recommend(context.Background(), &testutil.MockAcquisition{}, space, 1)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.OptimizationFailed))
}

func TestRecommendDiscreteArgmax(t *testing.T) {
	space, err := searchspace.NewDiscrete([]params.NumericalDiscreteParameter{
		params.MustDiscrete("a", 1, 2, 3),
		params.MustDiscrete("b", 0, 10),
	})
	require.NoError(t, err)

	rec := NewConstrained(&testutil.MockOptimizer{}, ConstrainedConfig{})
	acqf := &testutil.MockAcquisition{} // utility is the coordinate sum

	table, err := rec.Recommend(context.Background(), acqf, space, 1)
	require.NoError(t, err)
	require.Equal(t, 1, table.NumRows())
	assert.Equal(t, []float64{3, 10}, table.Rows[0])
}

func TestRecommendDiscreteBatchWithoutReplacement(t *testing.T) {
	space, err := searchspace.NewDiscrete([]params.NumericalDiscreteParameter{
		params.MustDiscrete("a", 1, 2, 3, 4),
	})
	require.NoError(t, err)

	rec := NewConstrained(&testutil.MockOptimizer{}, ConstrainedConfig{})
	acqf := &testutil.MockAcquisition{MonteCarlo: true}

	table, err := rec.Recommend(context.Background(), acqf, space, 3)
	require.NoError(t, err)
	require.Equal(t, 3, table.NumRows())

	seen := make(map[float64]bool)
	for _, row := range table.Rows {
		assert.False(t, seen[row[0]])
		seen[row[0]] = true
	}
}

func TestRecommendDiscreteAllCandidatesScoreNaN(t *testing.T) {
	space, err := searchspace.NewDiscrete([]params.NumericalDiscreteParameter{
		params.MustDiscrete("a", 1, 2, 3),
	})
	require.NoError(t, err)

	rec := NewConstrained(&testutil.MockOptimizer{}, ConstrainedConfig{})
	acqf := &testutil.MockAcquisition{
		Score: func(batch [][]float64) (float64, error) { return math.NaN(), nil },
	}

	_, err = rec.Recommend(context.Background(), acqf, space, 1)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.OptimizationFailed))
}

func TestRecommendDiscreteTooFewCandidates(t *testing.T) {
	space, err := searchspace.NewDiscrete([]params.NumericalDiscreteParameter{
		params.MustDiscrete("a", 1, 2),
	})
	require.NoError(t, err)

	rec := NewConstrained(&testutil.MockOptimizer{}, ConstrainedConfig{})
	_, err = rec.Recommend(context.Background(), &testutil.MockAcquisition{MonteCarlo: true}, space, 3)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.IncompatibleSearchSpace))
}

func TestRecommendHybridOffsetsContinuousConstraints(t *testing.T) {
	discrete, err := searchspace.NewSubspaceDiscrete([]params.NumericalDiscreteParameter{
		params.MustDiscrete("d1", 1, 2),
	})
	require.NoError(t, err)
	continuous, err := searchspace.NewSubspaceContinuous(
		[]params.NumericalContinuousParameter{
			params.MustContinuous("c1", 0, 1),
			params.MustContinuous("c2", 0, 1),
		},
		[]*constraints.Linear{
			constraints.MustLinear([]string{"c1", "c2"}, constraints.OpEqual, nil, 1.0),
		},
		nil,
	)
	require.NoError(t, err)
	space, err := searchspace.New(discrete, continuous)
	require.NoError(t, err)

	optimizer := &testutil.MockOptimizer{Result: [][]float64{{1, 0.5, 0.5}}, Value: 1.0}
	rec := NewConstrained(optimizer, ConstrainedConfig{})

	table, err := rec.Recommend(context.Background(), &testutil.MockAcquisition{}, space, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "c1", "c2"}, table.Columns)

	// One solve per discrete candidate, with continuous constraint
	// indices shifted behind the discrete dimension.
	problems := optimizer.Problems()
	require.Len(t, problems, 2)
	for _, p := range problems {
		require.Len(t, p.Equality, 1)
		assert.Equal(t, []int{1, 2}, p.Equality[0].Indices)
		require.Len(t, p.Bounds, 3)
		assert.Contains(t, p.FixedFeatures, 0)
	}
}

func TestRecommendHybridRejectsCardinality(t *testing.T) {
	discrete, err := searchspace.NewSubspaceDiscrete([]params.NumericalDiscreteParameter{
		params.MustDiscrete("d1", 1, 2),
	})
	require.NoError(t, err)
	continuous, err := searchspace.NewSubspaceContinuous(
		[]params.NumericalContinuousParameter{
			params.MustContinuous("c1", 0, 1),
			params.MustContinuous("c2", 0, 1),
		},
		nil,
		[]*constraints.Cardinality{
			cardinalityConstraint(t, []string{"c1", "c2"}, 0, 1),
		},
	)
	require.NoError(t, err)
	space, err := searchspace.New(discrete, continuous)
	require.NoError(t, err)

	rec := NewConstrained(&testutil.MockOptimizer{}, ConstrainedConfig{})
	_, err = rec.Recommend(context.Background(), &testutil.MockAcquisition{}, space, 1)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.IncompatibleSearchSpace))
}

func TestRandomRecommenderCardinalityBatch(t *testing.T) {
	// Five unit parameters with between one and three active at a time.
	space := continuousSpace(t,
		[]string{"x1", "x2", "x3", "x4", "x5"},
		nil,
		[]*constraints.Cardinality{
			cardinalityConstraint(t, []string{"x1", "x2", "x3", "x4", "x5"}, 1, 3),
		},
	)

	rec := NewRandom(99)
	table, err := rec.Recommend(context.Background(), space, 10)
	require.NoError(t, err)
	require.Equal(t, 10, table.NumRows())

	for _, row := range table.Rows {
		active := 0
		for _, v := range row {
			if math.Abs(v) > 0 {
				active++
			}
		}
		assert.GreaterOrEqual(t, active, 1)
		assert.LessOrEqual(t, active, 3)
	}
}

func TestRandomRecommenderDiscrete(t *testing.T) {
	space, err := searchspace.NewDiscrete([]params.NumericalDiscreteParameter{
		params.MustDiscrete("a", 1, 2, 3),
	})
	require.NoError(t, err)

	rec := NewRandom(5)
	table, err := rec.Recommend(context.Background(), space, 2)
	require.NoError(t, err)
	require.Equal(t, 2, table.NumRows())
	assert.NotEqual(t, table.Rows[0][0], table.Rows[1][0])
}

func TestMatchDiscrete(t *testing.T) {
	candidates, err := searchspace.NewTable([]string{"a", "b"}, [][]float64{
		{1, 10}, {1, 20}, {2, 10}, {2, 20},
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		queries [][]float64
		want    []int
	}{
		{"all rows match", [][]float64{{2, 10}, {1, 20}}, []int{2, 1}},
		{"unmatched rows are dropped", [][]float64{{2, 10}, {9, 9}}, []int{2}},
		{"no matches", [][]float64{{9, 9}}, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queries, err := searchspace.NewTable([]string{"a", "b"}, tt.queries)
			require.NoError(t, err)
			got := MatchDiscrete(candidates, queries)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchDiscreteSharedColumnsOnly(t *testing.T) {
	candidates, err := searchspace.NewTable([]string{"a", "b"}, [][]float64{
		{1, 10}, {2, 20},
	})
	require.NoError(t, err)
	queries, err := searchspace.NewTable([]string{"b", "extra"}, [][]float64{
		{20, 99},
	})
	require.NoError(t, err)

	assert.Equal(t, []int{1}, MatchDiscrete(candidates, queries))
}
