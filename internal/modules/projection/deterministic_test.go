package projection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectDeterministic_ThirtyYearReference(t *testing.T) {
	points, err := ProjectDeterministic(ProjectionRequest{
		MonthlyDeposit:      500,
		AnnualGrowthPercent: 7,
		Years:               30,
		ConversionRate:      1,
	})
	require.NoError(t, err)
	require.Len(t, points, 31)

	balance := 0.0
	for i := 0; i < 360; i++ {
		balance = (balance + 500) * (1 + 0.07/12)
	}

	last := points[30]
	assert.Equal(t, 30, last.Year)
	assert.Equal(t, math.Round(balance), last.TotalValue)
	assert.Equal(t, 613544.0, last.TotalValue)
	assert.Equal(t, 180000.0, last.DepositComponent)
	assert.Equal(t, 433544.0, last.InterestComponent)
}

func TestProjectDeterministic_YearZeroAndOrdering(t *testing.T) {
	points, err := ProjectDeterministic(ProjectionRequest{
		MonthlyDeposit:      100,
		AnnualGrowthPercent: 12,
		Years:               3,
		ConversionRate:      1,
	})
	require.NoError(t, err)
	require.Len(t, points, 4)

	assert.Equal(t, ProjectionPoint{Year: 0}, points[0])
	// 12 months at 1%: 1280.93
	assert.Equal(t, ProjectionPoint{Year: 1, InterestComponent: 81, DepositComponent: 1200, TotalValue: 1281}, points[1])
	for i := 1; i < len(points); i++ {
		assert.Equal(t, i, points[i].Year)
		assert.Greater(t, points[i].TotalValue, points[i-1].TotalValue)
	}
}

func TestProjectDeterministic_ConversionRate(t *testing.T) {
	// 1000 display units at 2 per source unit is a 500 source deposit
	points, err := ProjectDeterministic(ProjectionRequest{
		MonthlyDeposit:      1000,
		AnnualGrowthPercent: 7,
		Years:               30,
		ConversionRate:      2,
	})
	require.NoError(t, err)

	last := points[30]
	assert.Equal(t, 1227087.0, last.TotalValue)
	assert.Equal(t, 360000.0, last.DepositComponent)
	assert.Equal(t, 867087.0, last.InterestComponent)
}

func TestProjectDeterministic_ZeroAndNegativeRates(t *testing.T) {
	points, err := ProjectDeterministic(ProjectionRequest{MonthlyDeposit: 250, Years: 10, ConversionRate: 1})
	require.NoError(t, err)
	assert.Equal(t, 30000.0, points[10].TotalValue)
	assert.Equal(t, 0.0, points[10].InterestComponent)

	points, err = ProjectDeterministic(ProjectionRequest{MonthlyDeposit: 250, AnnualGrowthPercent: -2, Years: 10, ConversionRate: 1})
	require.NoError(t, err)
	assert.Less(t, points[10].InterestComponent, 0.0)
}

func TestProjectDeterministic_InvalidParameters(t *testing.T) {
	tests := []struct {
		name string
		req  ProjectionRequest
	}{
		{"zero deposit", ProjectionRequest{MonthlyDeposit: 0, AnnualGrowthPercent: 7, Years: 10, ConversionRate: 1}},
		{"negative deposit", ProjectionRequest{MonthlyDeposit: -5, AnnualGrowthPercent: 7, Years: 10, ConversionRate: 1}},
		{"zero horizon", ProjectionRequest{MonthlyDeposit: 100, AnnualGrowthPercent: 7, Years: 0, ConversionRate: 1}},
		{"horizon too long", ProjectionRequest{MonthlyDeposit: 100, AnnualGrowthPercent: 7, Years: MaxYears + 1, ConversionRate: 1}},
		{"zero conversion", ProjectionRequest{MonthlyDeposit: 100, AnnualGrowthPercent: 7, Years: 10}},
		{"NaN rate", ProjectionRequest{MonthlyDeposit: 100, AnnualGrowthPercent: math.NaN(), Years: 10, ConversionRate: 1}},
		{"total loss rate", ProjectionRequest{MonthlyDeposit: 100, AnnualGrowthPercent: -100, Years: 10, ConversionRate: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, err := ProjectDeterministic(tt.req)
			assert.ErrorIs(t, err, ErrInvalidParameters)
			assert.Nil(t, points)
		})
	}
}

func TestFinalBalance(t *testing.T) {
	assert.Equal(t, 0.0, FinalBalance(100, 0.01, 0))
	assert.InDelta(t, 101.0, FinalBalance(100, 0.01, 1), 1e-12)
	assert.InDelta(t, 1200.0, FinalBalance(100, 0, 12), 1e-12)
}
