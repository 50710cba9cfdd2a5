package projection

import (
	"math"
	"math/rand/v2"
)

// GenerateReturns fills a flat buffer of count normally distributed monthly
// returns using the paired Box-Muller transform over uniform draws from rng.
//
// The buffer is indexed path*months + month. For an odd count the second
// value of the final pair is discarded.
func GenerateReturns(rng *rand.Rand, count int, mean, stdDev float64) []float64 {
	out := make([]float64, count)
	if count == 0 {
		return out
	}
	if stdDev == 0 {
		for i := range out {
			out[i] = mean
		}
		return out
	}

	for i := 0; i < count; i += 2 {
		z0, z1 := boxMuller(rng)
		out[i] = mean + z0*stdDev
		if i+1 < count {
			out[i+1] = mean + z1*stdDev
		}
	}
	return out
}

// boxMuller returns two independent standard normal values.
func boxMuller(rng *rand.Rand) (float64, float64) {
	u1 := rng.Float64()
	for u1 == 0 {
		u1 = rng.Float64()
	}
	u2 := rng.Float64()

	r := math.Sqrt(-2 * math.Log(u1))
	theta := 2 * math.Pi * u2
	return r * math.Cos(theta), r * math.Sin(theta)
}
