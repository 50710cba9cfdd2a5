package projection

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func silentLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

// monthlySeries builds n month-end closes starting at 100 with noisy growth.
func monthlySeries(t *testing.T, n int, drift, noise float64, seed uint64) []PricePoint {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	start := time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC)

	points := make([]PricePoint, n)
	price := 100.0
	for i := range points {
		points[i] = PricePoint{Date: start.AddDate(0, i, 0), Close: price}
		price *= 1 + drift + noise*(rng.Float64()-0.5)
		price = math.Max(price, 1)
	}
	return points
}
