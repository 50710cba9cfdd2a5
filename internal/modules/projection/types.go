// Package projection estimates the distribution of a recurring-contribution
// portfolio's final value and builds the fixed-rate comparison curve.
package projection

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aristath/etfcast/pkg/formulas"
	"github.com/google/uuid"
)

// PricePoint is a dated close, ordered ascending within a series.
type PricePoint = formulas.PricePoint

var (
	// ErrInsufficientData marks a price series too short or malformed to estimate from.
	ErrInsufficientData = formulas.ErrInsufficientData
	// ErrInvalidParameters marks a request rejected at the boundary.
	ErrInvalidParameters = errors.New("invalid parameters")
)

const (
	DefaultPathCount     = 10000
	DefaultBatchSize     = 1000
	DefaultCacheCapacity = 100

	MaxYears = 100
	// MaxSamples bounds the flat return buffer (paths x months) of one simulation.
	MaxSamples = 50_000_000
)

// SimulationParameters fully determine a simulation's output distribution.
type SimulationParameters struct {
	MonthlyDeposit float64 `json:"monthly_deposit"`
	YearsToInvest  int     `json:"years_to_invest"`
	MeanReturn     float64 `json:"mean_return"`
	Volatility     float64 `json:"volatility"`
	PathCount      int     `json:"path_count"`
}

// Months returns the number of simulated months per path.
func (p SimulationParameters) Months() int {
	return p.YearsToInvest * 12
}

// Percentiles are rank statistics over sorted terminal balances.
type Percentiles struct {
	Worst  float64 `json:"worst"`
	P10    float64 `json:"p10"`
	P25    float64 `json:"p25"`
	Median float64 `json:"median"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
	Best   float64 `json:"best"`
}

// SimulationResult is computed once per cache key and shared read-only by
// every caller that asks for the same key.
type SimulationResult struct {
	ID          uuid.UUID            `json:"id"`
	Key         string               `json:"key"`
	ComputedAt  time.Time            `json:"computed_at"`
	Parameters  SimulationParameters `json:"parameters"`
	Percentiles Percentiles          `json:"percentiles"`
	Scenarios   []float64            `json:"scenarios"`
}

// SimulationRequest is the engine entry input.
type SimulationRequest struct {
	// Instrument optionally namespaces the cache key (e.g. "VOO").
	Instrument       string
	MonthlyDeposit   float64
	YearsToInvest    int
	AnnualGrowthRate float64
	// PathCount of zero selects the engine default.
	PathCount int
	History   []PricePoint
}

// Validate rejects requests the simulation core must never see.
func (r SimulationRequest) Validate() error {
	if !isFinite(r.MonthlyDeposit) || r.MonthlyDeposit <= 0 {
		return fmt.Errorf("%w: monthly deposit must be positive, got %v", ErrInvalidParameters, r.MonthlyDeposit)
	}
	if r.YearsToInvest <= 0 || r.YearsToInvest > MaxYears {
		return fmt.Errorf("%w: years to invest must be in 1..%d, got %d", ErrInvalidParameters, MaxYears, r.YearsToInvest)
	}
	if r.PathCount < 0 {
		return fmt.Errorf("%w: path count must be positive, got %d", ErrInvalidParameters, r.PathCount)
	}
	if r.PathCount > MaxSamples/(r.YearsToInvest*12) {
		return fmt.Errorf("%w: %d paths over %d years exceeds %d samples", ErrInvalidParameters, r.PathCount, r.YearsToInvest, MaxSamples)
	}
	if !isFinite(r.AnnualGrowthRate) {
		return fmt.Errorf("%w: annual growth rate must be finite", ErrInvalidParameters)
	}
	return nil
}

// ProjectionPoint is one year of the deterministic curve, in display currency units.
type ProjectionPoint struct {
	Year              int     `json:"year"`
	InterestComponent float64 `json:"interest_component"`
	DepositComponent  float64 `json:"deposit_component"`
	TotalValue        float64 `json:"total_value"`
}

// ProjectionRequest is the deterministic projector input. MonthlyDeposit is
// expressed in the display currency; ConversionRate converts source units to it.
type ProjectionRequest struct {
	MonthlyDeposit      float64
	AnnualGrowthPercent float64
	Years               int
	ConversionRate      float64
}

// Validate rejects non-positive deposits, horizons and conversion rates.
// Zero and negative growth rates are accepted.
func (r ProjectionRequest) Validate() error {
	if !isFinite(r.MonthlyDeposit) || r.MonthlyDeposit <= 0 {
		return fmt.Errorf("%w: monthly deposit must be positive, got %v", ErrInvalidParameters, r.MonthlyDeposit)
	}
	if r.Years <= 0 || r.Years > MaxYears {
		return fmt.Errorf("%w: years must be in 1..%d, got %d", ErrInvalidParameters, MaxYears, r.Years)
	}
	if !isFinite(r.ConversionRate) || r.ConversionRate <= 0 {
		return fmt.Errorf("%w: conversion rate must be positive, got %v", ErrInvalidParameters, r.ConversionRate)
	}
	if !isFinite(r.AnnualGrowthPercent) || r.AnnualGrowthPercent <= -100 {
		return fmt.Errorf("%w: annual growth must be above -100%%, got %v", ErrInvalidParameters, r.AnnualGrowthPercent)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
