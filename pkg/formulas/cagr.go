package formulas

import (
	"math"
	"time"
)

// DaysPerYear is the average calendar year length used to annualize growth.
const DaysPerYear = 365.25

// CalculateCAGRFromSeries calculates the raw Compound Annual Growth Rate, in
// percent, between the first and last point of a series sorted by date.
//
// Formula: CAGR = ((last / first)^(1/years) - 1) * 100
// where years = (lastDate - firstDate) / 365.25 days.
//
// Returns ErrInsufficientData for fewer than two points, a non-positive span,
// or non-positive end closes.
func CalculateCAGRFromSeries(points []PricePoint) (float64, error) {
	if len(points) < 2 {
		return 0, ErrInsufficientData
	}

	first := points[0]
	last := points[len(points)-1]

	years := YearsBetween(first.Date, last.Date)
	if years <= 0 {
		return 0, ErrInsufficientData
	}
	if first.Close <= 0 || last.Close <= 0 {
		return 0, ErrInsufficientData
	}

	cagr := (math.Pow(last.Close/first.Close, 1/years) - 1) * 100
	if math.IsNaN(cagr) || math.IsInf(cagr, 0) {
		return 0, ErrInsufficientData
	}
	return cagr, nil
}

// YearsBetween returns the elapsed time from start to end in average years.
func YearsBetween(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24 / DaysPerYear
}
