package campaign

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/baydesign-go/pkg/constraints"
	"github.com/XiaoConstantine/baydesign-go/pkg/errors"
	"github.com/XiaoConstantine/baydesign-go/pkg/params"
	"github.com/XiaoConstantine/baydesign-go/pkg/searchspace"
)

func testSpace(t *testing.T) *searchspace.SearchSpace {
	t.Helper()
	space, err := searchspace.NewContinuous(
		[]params.NumericalContinuousParameter{
			params.MustContinuous("x1", 0, 1),
			params.MustContinuous("x2", 0, 1),
		},
		[]*constraints.Linear{
			constraints.MustLinear([]string{"x1", "x2"}, constraints.OpLessEqual, nil, 1.5),
		},
		nil,
	)
	require.NoError(t, err)
	return space
}

func TestNewCampaign(t *testing.T) {
	c, err := New(testSpace(t), Config{})
	require.NoError(t, err)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", c.ID().String())
	assert.Equal(t, 0, c.NumMeasurements())

	_, err = New(nil, Config{})
	require.Error(t, err)
}

func TestAddMeasurementsValidation(t *testing.T) {
	c, err := New(testSpace(t), Config{})
	require.NoError(t, err)

	tests := []struct {
		name        string
		measurement Measurement
		wantErr     string
	}{
		{
			name:        "missing parameter",
			measurement: Measurement{Parameters: map[string]float64{"x1": 0.5}, Target: 1.0},
			wantErr:     "missing parameter",
		},
		{
			name: "non-finite value",
			measurement: Measurement{
				Parameters: map[string]float64{"x1": math.NaN(), "x2": 0.5},
				Target:     1.0,
			},
			wantErr: "must be finite",
		},
		{
			name: "non-finite target",
			measurement: Measurement{
				Parameters: map[string]float64{"x1": 0.5, "x2": 0.5},
				Target:     math.Inf(1),
			},
			wantErr: "target must be finite",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.AddMeasurements(tt.measurement)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, errors.HasCode(err, errors.ValidationFailed))
		})
	}
	assert.Equal(t, 0, c.NumMeasurements())
}

func TestRecommendBeforeMeasurementsIsRandom(t *testing.T) {
	c, err := New(testSpace(t), Config{Seed: 7})
	require.NoError(t, err)

	table, err := c.Recommend(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, 3, table.NumRows())
	for _, row := range table.Rows {
		assert.LessOrEqual(t, row[0]+row[1], 1.5+1e-6)
	}
}

func TestRecommendAfterMeasurements(t *testing.T) {
	c, err := New(testSpace(t), Config{Seed: 7})
	require.NoError(t, err)

	err = c.AddMeasurements(
		Measurement{Parameters: map[string]float64{"x1": 0.1, "x2": 0.1}, Target: 0.2},
		Measurement{Parameters: map[string]float64{"x1": 0.5, "x2": 0.5}, Target: 1.0},
		Measurement{Parameters: map[string]float64{"x1": 0.9, "x2": 0.2}, Target: 1.1},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, c.NumMeasurements())

	table, err := c.Recommend(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 1, table.NumRows())

	row := table.Rows[0]
	assert.True(t, row[0] >= 0 && row[0] <= 1)
	assert.True(t, row[1] >= 0 && row[1] <= 1)
	assert.LessOrEqual(t, row[0]+row[1], 1.5+1e-6)
}

func TestRecommendBatchUsesMonteCarloAcquisition(t *testing.T) {
	c, err := New(testSpace(t), Config{Seed: 7, MonteCarloSamples: 32})
	require.NoError(t, err)

	err = c.AddMeasurements(
		Measurement{Parameters: map[string]float64{"x1": 0.2, "x2": 0.3}, Target: 0.5},
		Measurement{Parameters: map[string]float64{"x1": 0.7, "x2": 0.1}, Target: 0.9},
	)
	require.NoError(t, err)

	table, err := c.Recommend(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 4, table.NumRows())
}

func TestCampaignsAreReproducible(t *testing.T) {
	run := func() *searchspace.Table {
		c, err := New(testSpace(t), Config{Seed: 123})
		require.NoError(t, err)
		table, err := c.Recommend(context.Background(), 5)
		require.NoError(t, err)
		return table
	}

	assert.Equal(t, run().Rows, run().Rows)
}
