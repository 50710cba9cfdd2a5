package formulas

import "math"

// Fixed annual drags applied to historical growth before it is used for
// projections.
const (
	AnnualInflationRate = 0.025
	InstrumentFeeRate   = 0.001
	TradingFeeRate      = 0.001
	TotalFeesRate       = InstrumentFeeRate + TradingFeeRate
)

// AdjustMonthlyMean removes one month of inflation and fees from a mean
// monthly return.
func AdjustMonthlyMean(mean float64) float64 {
	return mean - AnnualInflationRate/12 - TotalFeesRate/12
}

// CorrectAnnualGrowthPercent subtracts inflation and both fee components, in
// percentage points, from an annual growth figure.
func CorrectAnnualGrowthPercent(rawPercent float64) float64 {
	return rawPercent - AnnualInflationRate*100 - InstrumentFeeRate*100 - TradingFeeRate*100
}

// InflationAdjust discounts a future nominal value back to today's money.
func InflationAdjust(value float64, years int) float64 {
	if years <= 0 {
		return value
	}
	return value / math.Pow(1+AnnualInflationRate, float64(years))
}

// RoundTo rounds x to the given number of decimal places, half away from zero.
func RoundTo(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(x*scale) / scale
}

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
