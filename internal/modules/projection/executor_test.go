package projection

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPaths_DepositThenCompound(t *testing.T) {
	// one path, two months: (0+100)*1.1 = 110, (110+100)*0.9 = 189
	balances, err := RunPaths(context.Background(), []float64{0.1, -0.1}, 1, 2, 100, ExecutorConfig{})
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.InDelta(t, 189.0, balances[0], 1e-9)
}

func TestRunPaths_UsesPathMajorLayout(t *testing.T) {
	returns := []float64{
		0, 0, 0, // path 0
		1, 1, 1, // path 1
	}
	balances, err := RunPaths(context.Background(), returns, 2, 3, 10, ExecutorConfig{BatchSize: 1, Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{30, 140}, balances)
}

func TestRunPaths_ZeroVolatilityMatchesFinalBalance(t *testing.T) {
	const paths, months = 250, 360
	const mean, deposit = 0.005, 500.0

	samples := GenerateReturns(rand.New(rand.NewPCG(3, 4)), paths*months, mean, 0)
	balances, err := RunPaths(context.Background(), samples, paths, months, deposit, ExecutorConfig{BatchSize: 64, Workers: 4})
	require.NoError(t, err)

	expected := FinalBalance(deposit, mean, months)
	for _, b := range balances {
		assert.Equal(t, expected, b)
	}
}

func TestRunPaths_BatchingIsInvisible(t *testing.T) {
	const paths, months = 1037, 120
	samples := GenerateReturns(rand.New(rand.NewPCG(9, 9)), paths*months, 0.006, 0.04)

	reference, err := RunPaths(context.Background(), samples, paths, months, 250, ExecutorConfig{BatchSize: paths, Workers: 1})
	require.NoError(t, err)

	configs := []ExecutorConfig{
		{BatchSize: 1, Workers: 1},
		{BatchSize: 7, Workers: 3},
		{BatchSize: 1000, Workers: 8},
		{BatchSize: 0, Workers: 0},
	}
	for _, cfg := range configs {
		got, err := RunPaths(context.Background(), samples, paths, months, 250, cfg)
		require.NoError(t, err)
		assert.Equal(t, reference, got, "batch=%d workers=%d", cfg.BatchSize, cfg.Workers)
	}
}

func TestRunPaths_RejectsMismatchedBuffer(t *testing.T) {
	_, err := RunPaths(context.Background(), make([]float64, 10), 2, 6, 100, ExecutorConfig{})
	assert.ErrorIs(t, err, ErrInvalidParameters)

	_, err = RunPaths(context.Background(), nil, 0, 12, 100, ExecutorConfig{})
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestRunPaths_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunPaths(ctx, make([]float64, 24), 2, 12, 100, ExecutorConfig{BatchSize: 1, Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
}
