package projection

import "slices"

// Aggregate sorts balances ascending in place and extracts rank percentiles
// at floor(N*p). No interpolation is applied.
func Aggregate(balances []float64) (Percentiles, []float64) {
	slices.Sort(balances)

	n := len(balances)
	if n == 0 {
		return Percentiles{}, balances
	}

	at := func(p float64) float64 {
		return balances[int(float64(n)*p)]
	}

	return Percentiles{
		Worst:  balances[0],
		P10:    at(0.10),
		P25:    at(0.25),
		Median: at(0.50),
		P75:    at(0.75),
		P90:    at(0.90),
		Best:   balances[n-1],
	}, balances
}
