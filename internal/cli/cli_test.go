package cli

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/aristath/etfcast/internal/config"
	"github.com/aristath/etfcast/internal/modules/catalog"
	"github.com/aristath/etfcast/internal/modules/marketdata"
	"github.com/aristath/etfcast/internal/modules/projection"
	"github.com/aristath/etfcast/pkg/formulas"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMarketData struct {
	history  []formulas.PricePoint
	growth   float64
	overview *marketdata.Overview
	err      error
}

func (s *stubMarketData) History(_ context.Context, _ string) ([]formulas.PricePoint, error) {
	return s.history, s.err
}

func (s *stubMarketData) SimulationGrowthRate(_ context.Context, _ string) (float64, error) {
	return s.growth, s.err
}

func (s *stubMarketData) Overview(_ context.Context, _ string) (*marketdata.Overview, error) {
	return s.overview, s.err
}

type stubRates struct {
	rate float64
	err  error
}

func (s stubRates) GetRate(_ context.Context, _, _ string) (float64, error) {
	return s.rate, s.err
}

func testEnv(md marketData, rates rateProvider) *env {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	return &env{
		marketData: md,
		rates:      rates,
		engine:     projection.NewEngine(log, projection.WithSeed(7), projection.WithDefaultPathCount(500)),
		cfg:        &config.Config{Simulation: config.SimulationConfig{Paths: 500}},
		log:        log,
	}
}

func monthlyHistory(n int) []formulas.PricePoint {
	start := time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]formulas.PricePoint, n)
	price := 100.0
	for i := range points {
		points[i] = formulas.PricePoint{Date: start.AddDate(0, i, 0), Close: price}
		if i%2 == 0 {
			price *= 1.02
		} else {
			price *= 0.995
		}
	}
	return points
}

func TestInstrumentsMarkdown(t *testing.T) {
	cat, err := catalog.Load()
	require.NoError(t, err)

	md := InstrumentsMarkdown(cat.Types())
	assert.Contains(t, md, "# Instruments")
	assert.Contains(t, md, "| VOO |")
	assert.Contains(t, md, "|:---|:---|:---|")
}

func TestCurveCmd_Run(t *testing.T) {
	tests := []struct {
		name     string
		cmd      curveCmd
		md       *stubMarketData
		rates    stubRates
		contains []string
		wantErr  string
	}{
		{
			name:     "explicit rate",
			cmd:      curveCmd{deposit: 500, rate: 7, years: 30, currency: "USD"},
			md:       &stubMarketData{},
			rates:    stubRates{rate: 1},
			contains: []string{"$613,544.00", "$180,000.00", "$433,544.00", "$292,503.00", "7.00% per year"},
		},
		{
			name:     "rate from instrument",
			cmd:      curveCmd{deposit: 100, rate: math.NaN(), symbol: "VOO", years: 1, currency: "usd"},
			md:       &stubMarketData{growth: 12},
			rates:    stubRates{rate: 1},
			contains: []string{"$1,281.00", "$81.00", "12.00% per year"},
		},
		{
			name:    "rate lookup fails",
			cmd:     curveCmd{deposit: 100, rate: 5, years: 1, currency: "EUR"},
			md:      &stubMarketData{},
			rates:   stubRates{err: errors.New("offline")},
			wantErr: "USD->EUR",
		},
		{
			name:    "growth lookup fails",
			cmd:     curveCmd{deposit: 100, rate: math.NaN(), symbol: "NOPE", years: 1, currency: "USD"},
			md:      &stubMarketData{err: catalog.ErrUnknownInstrument},
			rates:   stubRates{rate: 1},
			wantErr: "unknown instrument",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.cmd.run(context.Background(), testEnv(tt.md, tt.rates))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestCurveCmd_RejectsInvalidParameters(t *testing.T) {
	cmd := curveCmd{deposit: -1, rate: 5, years: 10, currency: "USD"}
	_, err := cmd.run(context.Background(), testEnv(&stubMarketData{}, stubRates{rate: 1}))
	assert.ErrorIs(t, err, projection.ErrInvalidParameters)
}

func TestSimulateCmd_Run(t *testing.T) {
	md := &stubMarketData{history: monthlyHistory(120), growth: 7}

	cmd := simulateCmd{symbol: "voo", deposit: 500, years: 10, paths: 200}
	out, err := cmd.run(context.Background(), testEnv(md, stubRates{rate: 1}))
	require.NoError(t, err)

	assert.Contains(t, out, "# Simulation: VOO")
	assert.Contains(t, out, "200 paths")
	assert.Contains(t, out, "| Median |")
	assert.Contains(t, out, "Total deposited: $60,000.00")
}

func TestSimulateCmd_SeedIsReproducible(t *testing.T) {
	md := &stubMarketData{history: monthlyHistory(120), growth: 7}
	cmd := simulateCmd{symbol: "VOO", deposit: 100, years: 5, paths: 100, seed: 99}

	first, err := cmd.run(context.Background(), testEnv(md, stubRates{rate: 1}))
	require.NoError(t, err)
	second, err := cmd.run(context.Background(), testEnv(md, stubRates{rate: 1}))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSimulateCmd_PropagatesErrors(t *testing.T) {
	md := &stubMarketData{err: errors.New("yahoo down")}
	cmd := simulateCmd{symbol: "VOO", deposit: 100, years: 5}

	_, err := cmd.run(context.Background(), testEnv(md, stubRates{rate: 1}))
	assert.EqualError(t, err, "yahoo down")
}

func TestGrowthCmd_Run(t *testing.T) {
	md := &stubMarketData{overview: &marketdata.Overview{
		Symbol:        "VOO",
		Name:          "Vanguard S&P 500 ETF",
		Type:          "sp500",
		Price:         412.5,
		Volume:        "4.2M",
		InceptionDate: "2010-09-09",
		Years:         14,
		Growth: projection.GrowthEstimate{
			RawGrowthPercent:         7.18,
			AnnualGrowthPercent:      4.48,
			DefaultGrowthRatePercent: 4.48,
		},
		SimulationGrowthRate: 4.48,
	}}

	cmd := growthCmd{symbol: "VOO"}
	out, err := cmd.run(context.Background(), testEnv(md, stubRates{rate: 1}))
	require.NoError(t, err)

	assert.Contains(t, out, "# VOO")
	assert.Contains(t, out, "$412.50")
	assert.Contains(t, out, "| Volume | 4.2M |")
	assert.Contains(t, out, "2010-09-09 (14 years)")
	assert.Contains(t, out, "| Raw CAGR | 7.18% |")
	assert.Contains(t, out, "| Corrected growth | 4.48% |")
}
