package formulas

import (
	"errors"
	"time"
)

// ErrInsufficientData is returned when a price series is too short, spans no
// time, or contains non-positive closes.
var ErrInsufficientData = errors.New("insufficient historical data")

// PricePoint is a single close observation. Series are ordered by date ascending.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// CalculateReturns converts prices to simple fractional returns.
// Returns[i] = (Price[i+1] - Price[i]) / Price[i]
//
// Fewer than two prices, or any non-positive price, yields ErrInsufficientData
// so that no NaN or Inf reaches the estimator.
func CalculateReturns(prices []float64) ([]float64, error) {
	if len(prices) < 2 {
		return []float64{}, ErrInsufficientData
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1]
		if prev <= 0 || prices[i] <= 0 {
			return []float64{}, ErrInsufficientData
		}
		returns[i-1] = (prices[i] - prev) / prev
	}

	return returns, nil
}

// ExtractReturnSeries returns the period-over-period returns of a pre-sorted
// price series. The series is not re-sorted.
func ExtractReturnSeries(points []PricePoint) ([]float64, error) {
	return CalculateReturns(Closes(points))
}

// Closes returns the close prices of a series in order.
func Closes(points []PricePoint) []float64 {
	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}
	return closes
}
