// Package handlers provides HTTP handlers for simulations and projection curves.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/etfcast/internal/modules/catalog"
	"github.com/aristath/etfcast/internal/modules/projection"
	"github.com/aristath/etfcast/pkg/currency"
	"github.com/aristath/etfcast/pkg/formulas"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// BaseCurrency is the quote currency of every catalog instrument.
const BaseCurrency = "USD"

// MarketData supplies instrument history and the growth rate simulations default to.
type MarketData interface {
	History(ctx context.Context, symbol string) ([]formulas.PricePoint, error)
	SimulationGrowthRate(ctx context.Context, symbol string) (float64, error)
}

// RateProvider converts between currencies.
type RateProvider interface {
	GetRate(ctx context.Context, from, to string) (float64, error)
}

// Handler handles projection HTTP requests
type Handler struct {
	engine     *projection.Engine
	marketData MarketData
	rates      RateProvider
	log        zerolog.Logger
}

// NewHandler creates a new projection handler
func NewHandler(engine *projection.Engine, marketData MarketData, rates RateProvider, log zerolog.Logger) *Handler {
	return &Handler{
		engine:     engine,
		marketData: marketData,
		rates:      rates,
		log:        log.With().Str("handler", "projection").Logger(),
	}
}

// SimulateRequest represents a request to run a Monte Carlo simulation
type SimulateRequest struct {
	Symbol           string   `json:"symbol"`
	MonthlyDeposit   float64  `json:"monthly_deposit"`
	Years            int      `json:"years"`
	AnnualGrowthRate *float64 `json:"annual_growth_rate,omitempty"`
	PathCount        int      `json:"path_count,omitempty"`
	IncludeScenarios bool     `json:"include_scenarios,omitempty"`
}

// CurveRequest represents a request for the fixed-rate projection curve
type CurveRequest struct {
	Symbol           string   `json:"symbol,omitempty"`
	MonthlyDeposit   float64  `json:"monthly_deposit"`
	Years            int      `json:"years"`
	AnnualGrowthRate *float64 `json:"annual_growth_rate,omitempty"`
	Currency         string   `json:"currency,omitempty"`
}

// HandleSimulate handles POST /api/projection/simulate
func (h *Handler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Symbol) == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))

	growth, err := h.resolveGrowth(r.Context(), symbol, req.AnnualGrowthRate)
	if err != nil {
		h.writeError(w, err)
		return
	}

	history, err := h.marketData.History(r.Context(), symbol)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.engine.Simulate(r.Context(), projection.SimulationRequest{
		Instrument:       symbol,
		MonthlyDeposit:   req.MonthlyDeposit,
		YearsToInvest:    req.Years,
		AnnualGrowthRate: growth,
		PathCount:        req.PathCount,
		History:          history,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	data := map[string]interface{}{
		"id":                 result.ID,
		"symbol":             symbol,
		"computed_at":        result.ComputedAt.Format(time.RFC3339),
		"annual_growth_rate": growth,
		"parameters":         result.Parameters,
		"percentiles":        roundPercentiles(result.Percentiles),
		"formatted": map[string]string{
			"p10":    currency.Format(result.Percentiles.P10, BaseCurrency),
			"median": currency.Format(result.Percentiles.Median, BaseCurrency),
			"p90":    currency.Format(result.Percentiles.P90, BaseCurrency),
		},
	}
	if req.IncludeScenarios {
		data["scenarios"] = result.Scenarios
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":     data,
		"metadata": metadata(),
	})
}

// HandleCurve handles POST /api/projection/curve
func (h *Handler) HandleCurve(w http.ResponseWriter, r *http.Request) {
	var req CurveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.AnnualGrowthRate == nil && strings.TrimSpace(req.Symbol) == "" {
		http.Error(w, "annual_growth_rate or symbol is required", http.StatusBadRequest)
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Currency))
	if code == "" {
		code = BaseCurrency
	}
	if !currency.Known(code) {
		http.Error(w, fmt.Sprintf("unknown currency %q", req.Currency), http.StatusBadRequest)
		return
	}

	growth, err := h.resolveGrowth(r.Context(), strings.ToUpper(strings.TrimSpace(req.Symbol)), req.AnnualGrowthRate)
	if err != nil {
		h.writeError(w, err)
		return
	}

	rate, err := h.rates.GetRate(r.Context(), BaseCurrency, code)
	if err != nil {
		h.log.Error().Err(err).Str("currency", code).Msg("Failed to get exchange rate")
		http.Error(w, "exchange rate unavailable", http.StatusBadGateway)
		return
	}

	points, err := h.engine.Project(projection.ProjectionRequest{
		MonthlyDeposit:      req.MonthlyDeposit,
		AnnualGrowthPercent: growth,
		Years:               req.Years,
		ConversionRate:      rate,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	final := points[len(points)-1]
	inflationAdjusted := decimal.NewFromFloat(formulas.InflationAdjust(final.TotalValue, req.Years)).Round(0).InexactFloat64()

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"currency":                 code,
			"conversion_rate":          rate,
			"annual_growth_rate":       growth,
			"points":                   points,
			"final":                    final,
			"inflation_adjusted_total": inflationAdjusted,
			"formatted": map[string]string{
				"total":              currency.Format(final.TotalValue, code),
				"deposits":           currency.Format(final.DepositComponent, code),
				"interest":           currency.Format(final.InterestComponent, code),
				"inflation_adjusted": currency.Format(inflationAdjusted, code),
			},
		},
		"metadata": metadata(),
	})
}

// resolveGrowth returns the explicit rate when given, else the instrument's simulation rate.
func (h *Handler) resolveGrowth(ctx context.Context, symbol string, explicit *float64) (float64, error) {
	if explicit != nil {
		return *explicit, nil
	}
	return h.marketData.SimulationGrowthRate(ctx, symbol)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, projection.ErrInvalidParameters):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, catalog.ErrUnknownInstrument):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "request cancelled", http.StatusServiceUnavailable)
	default:
		h.log.Error().Err(err).Msg("Projection failed")
		http.Error(w, "upstream market data unavailable", http.StatusBadGateway)
	}
}

func roundPercentiles(p projection.Percentiles) projection.Percentiles {
	round := func(v float64) float64 {
		return decimal.NewFromFloat(v).Round(2).InexactFloat64()
	}
	return projection.Percentiles{
		Worst:  round(p.Worst),
		P10:    round(p.P10),
		P25:    round(p.P25),
		Median: round(p.Median),
		P75:    round(p.P75),
		P90:    round(p.P90),
		Best:   round(p.Best),
	}
}

func metadata() map[string]interface{} {
	return map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
