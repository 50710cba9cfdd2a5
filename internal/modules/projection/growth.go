package projection

import "github.com/aristath/etfcast/pkg/formulas"

// MaxDefaultGrowthPercent is the upper bound of the conservative growth estimate.
const MaxDefaultGrowthPercent = 15.0

// GrowthEstimate is the annualized, inflation and fee corrected growth of an instrument.
type GrowthEstimate struct {
	RawGrowthPercent         float64 `json:"raw_growth_percent"`
	AnnualGrowthPercent      float64 `json:"annual_growth_percent"`
	DefaultGrowthRatePercent float64 `json:"default_growth_rate_percent"`
}

// EstimateGrowth computes the corrected CAGR of a sorted price series,
// rounded to two decimals, and its [0, 15] clamped variant.
//
// Unusable series degrade to a zero estimate; the returned error is
// ErrInsufficientData so callers can tell a real 0% apart.
func EstimateGrowth(points []PricePoint) (GrowthEstimate, error) {
	raw, err := formulas.CalculateCAGRFromSeries(points)
	if err != nil {
		return GrowthEstimate{}, err
	}

	corrected := formulas.RoundTo(formulas.CorrectAnnualGrowthPercent(raw), 2)
	return GrowthEstimate{
		RawGrowthPercent:         formulas.RoundTo(raw, 2),
		AnnualGrowthPercent:      corrected,
		DefaultGrowthRatePercent: formulas.Clamp(corrected, 0, MaxDefaultGrowthPercent),
	}, nil
}
