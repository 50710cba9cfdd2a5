package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// PopulationMeanStdDev returns the arithmetic mean and the population standard
// deviation (divide by N) of data.
// Fewer than two observations yield (0, 0).
func PopulationMeanStdDev(data []float64) (mean, stdDev float64) {
	if len(data) < 2 {
		return 0, 0
	}
	mean, stdDev = stat.PopMeanStdDev(data, nil)
	if math.IsNaN(stdDev) || stdDev < 0 {
		stdDev = 0
	}
	return mean, stdDev
}
