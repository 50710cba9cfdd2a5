package projection

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/aristath/etfcast/pkg/formulas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReturns_Distribution(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	const mean, stdDev = 0.006, 0.045

	samples := GenerateReturns(rng, 400_000, mean, stdDev)
	require.Len(t, samples, 400_000)

	m, s := formulas.PopulationMeanStdDev(samples)
	assert.InDelta(t, mean, m, 0.0005)
	assert.InDelta(t, stdDev, s, 0.0005)

	for _, v := range samples {
		require.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
}

func TestGenerateReturns_Reproducible(t *testing.T) {
	a := GenerateReturns(rand.New(rand.NewPCG(1, 2)), 1001, 0.01, 0.05)
	b := GenerateReturns(rand.New(rand.NewPCG(1, 2)), 1001, 0.01, 0.05)
	c := GenerateReturns(rand.New(rand.NewPCG(1, 3)), 1001, 0.01, 0.05)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestGenerateReturns_OddCountUsesPairs(t *testing.T) {
	odd := GenerateReturns(rand.New(rand.NewPCG(5, 5)), 5, 0, 1)
	even := GenerateReturns(rand.New(rand.NewPCG(5, 5)), 6, 0, 1)

	require.Len(t, odd, 5)
	assert.Equal(t, even[:5], odd)
}

func TestGenerateReturns_ZeroVolatility(t *testing.T) {
	samples := GenerateReturns(rand.New(rand.NewPCG(1, 1)), 24, 0.004, 0)
	for _, v := range samples {
		assert.Equal(t, 0.004, v)
	}
}

func TestGenerateReturns_Empty(t *testing.T) {
	assert.Empty(t, GenerateReturns(rand.New(rand.NewPCG(1, 1)), 0, 0.01, 0.02))
}
