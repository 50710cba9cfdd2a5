package projection

import (
	"github.com/aristath/etfcast/pkg/formulas"
)

// Estimate is the calibrated monthly return distribution of an instrument.
type Estimate struct {
	RawMeanReturn float64 `json:"raw_mean_return"`
	MeanReturn    float64 `json:"mean_return"`
	Volatility    float64 `json:"volatility"`
	Observations  int     `json:"observations"`
}

// EstimateParameters derives the inflation and fee adjusted mean monthly
// return and the population volatility from a sorted price series.
//
// A series with fewer than two returns yields a zero estimate so that the
// simulation degenerates to contributions only. An unusable series also
// returns ErrInsufficientData alongside the zero estimate.
func EstimateParameters(points []PricePoint) (Estimate, error) {
	returns, err := formulas.ExtractReturnSeries(points)
	if err != nil {
		return Estimate{}, err
	}
	if len(returns) < 2 {
		return Estimate{Observations: len(returns)}, nil
	}

	mean, stdDev := formulas.PopulationMeanStdDev(returns)
	return Estimate{
		RawMeanReturn: mean,
		MeanReturn:    formulas.AdjustMonthlyMean(mean),
		Volatility:    stdDev,
		Observations:  len(returns),
	}, nil
}
