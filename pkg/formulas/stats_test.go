package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPopulationMeanStdDev(t *testing.T) {
	tests := []struct {
		name         string
		data         []float64
		expectedMean float64
		expectedStd  float64
	}{
		{
			name:         "empty",
			data:         nil,
			expectedMean: 0,
			expectedStd:  0,
		},
		{
			name:         "single observation degenerates",
			data:         []float64{0.05},
			expectedMean: 0,
			expectedStd:  0,
		},
		{
			name:         "two observations divide by N",
			data:         []float64{0.01, 0.03},
			expectedMean: 0.02,
			expectedStd:  0.01,
		},
		{
			name:         "textbook population example",
			data:         []float64{2, 4, 4, 4, 5, 5, 7, 9},
			expectedMean: 5,
			expectedStd:  2,
		},
		{
			name:         "constant series",
			data:         []float64{0.004, 0.004, 0.004},
			expectedMean: 0.004,
			expectedStd:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, std := PopulationMeanStdDev(tt.data)
			assert.InDelta(t, tt.expectedMean, mean, 1e-12)
			assert.InDelta(t, tt.expectedStd, std, 1e-12)
			assert.GreaterOrEqual(t, std, 0.0)
		})
	}
}

func TestPopulationStdDevIsSmallerThanSample(t *testing.T) {
	data := []float64{0.01, -0.02, 0.03, 0.015}
	_, pop := PopulationMeanStdDev(data)

	mean := Mean(data)
	var ss float64
	for _, v := range data {
		ss += (v - mean) * (v - mean)
	}
	sample := math.Sqrt(ss / float64(len(data)-1))

	assert.Less(t, pop, sample)
	assert.InDelta(t, math.Sqrt(ss/float64(len(data))), pop, 1e-12)
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 1e-12)
}
