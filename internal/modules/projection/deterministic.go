package projection

import (
	"github.com/shopspring/decimal"
)

// FinalBalance compounds deposit at a fixed monthly rate for months months,
// depositing before each month's growth. The result is unrounded.
func FinalBalance(deposit, monthlyRate float64, months int) float64 {
	balance := 0.0
	for m := 0; m < months; m++ {
		balance = (balance + deposit) * (1 + monthlyRate)
	}
	return balance
}

// ProjectDeterministic builds the fixed-rate yearly curve from year 0 through
// the horizon. Balances accumulate unrounded in the source currency and are
// converted and rounded to whole units only when each point is emitted.
func ProjectDeterministic(req ProjectionRequest) ([]ProjectionPoint, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	monthlyRate := req.AnnualGrowthPercent / 12 / 100
	sourceDeposit := req.MonthlyDeposit / req.ConversionRate
	rate := decimal.NewFromFloat(req.ConversionRate)

	points := make([]ProjectionPoint, 0, req.Years+1)
	points = append(points, ProjectionPoint{Year: 0})

	balance := 0.0
	for month := 1; month <= req.Years*12; month++ {
		balance = (balance + sourceDeposit) * (1 + monthlyRate)
		if month%12 != 0 {
			continue
		}

		year := month / 12
		total := decimal.NewFromFloat(balance).Mul(rate)
		deposited := decimal.NewFromFloat(sourceDeposit).Mul(decimal.NewFromInt(int64(12 * year))).Mul(rate)

		points = append(points, ProjectionPoint{
			Year:              year,
			InterestComponent: total.Sub(deposited).Round(0).InexactFloat64(),
			DepositComponent:  deposited.Round(0).InexactFloat64(),
			TotalValue:        total.Round(0).InexactFloat64(),
		})
	}

	return points, nil
}
