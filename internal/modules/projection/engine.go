package projection

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Engine runs memoized Monte Carlo simulations and deterministic projections.
type Engine struct {
	cache     *Cache
	seed      uint64
	pathCount int
	executor  ExecutorConfig
	log       zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed fixes the generator seed. Each key draws from its own stream
// derived from the seed, so a given key always produces the same result.
func WithSeed(seed uint64) Option {
	return func(e *Engine) { e.seed = seed }
}

// WithCache supplies the memoization cache.
func WithCache(c *Cache) Option {
	return func(e *Engine) {
		if c != nil {
			e.cache = c
		}
	}
}

// WithDefaultPathCount sets the path count used when a request leaves it at zero.
func WithDefaultPathCount(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pathCount = n
		}
	}
}

// WithBatchSize sets the number of paths per executor batch.
func WithBatchSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.executor.BatchSize = n
		}
	}
}

// WithWorkers bounds how many batches run in parallel.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.executor.Workers = n
		}
	}
}

// NewEngine creates an engine. Without WithSeed the seed comes from the wall clock.
func NewEngine(log zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		seed:      uint64(time.Now().UnixNano()),
		pathCount: DefaultPathCount,
		executor: ExecutorConfig{
			BatchSize: DefaultBatchSize,
			Workers:   runtime.GOMAXPROCS(0),
		},
		log: log.With().Str("component", "projection_engine").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = NewCache()
	}
	return e
}

// Cache exposes the engine's memoization cache.
func (e *Engine) Cache() *Cache {
	return e.cache
}

// Simulate returns the percentile distribution of final balances for req.
// Identical requests return the same *SimulationResult without resampling.
func (e *Engine) Simulate(ctx context.Context, req SimulationRequest) (*SimulationResult, error) {
	if req.PathCount == 0 {
		req.PathCount = e.pathCount
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := CacheKey(req.Instrument, req.MonthlyDeposit, req.YearsToInvest, req.AnnualGrowthRate, req.PathCount)

	// The computation may be shared with other callers, so it must outlive ctx.
	computeCtx := context.WithoutCancel(ctx)
	result, hit, err := e.cache.GetOrCompute(ctx, key, func() (*SimulationResult, error) {
		return e.compute(computeCtx, key, req)
	})
	if err != nil {
		return nil, err
	}

	if hit {
		e.log.Debug().Str("key", key).Msg("Simulation cache hit")
	}
	return result, nil
}

func (e *Engine) compute(ctx context.Context, key string, req SimulationRequest) (*SimulationResult, error) {
	start := time.Now()

	estimate, err := EstimateParameters(req.History)
	if err != nil {
		if !errors.Is(err, ErrInsufficientData) {
			return nil, fmt.Errorf("failed to estimate return distribution: %w", err)
		}
		e.log.Warn().
			Str("key", key).
			Int("points", len(req.History)).
			Msg("Insufficient history, simulating with zero mean and volatility")
	}

	params := SimulationParameters{
		MonthlyDeposit: req.MonthlyDeposit,
		YearsToInvest:  req.YearsToInvest,
		MeanReturn:     estimate.MeanReturn,
		Volatility:     estimate.Volatility,
		PathCount:      req.PathCount,
	}

	rng := rand.New(rand.NewPCG(e.seed, hashKey(key)))
	samples := GenerateReturns(rng, params.PathCount*params.Months(), params.MeanReturn, params.Volatility)

	balances, err := RunPaths(ctx, samples, params.PathCount, params.Months(), params.MonthlyDeposit, e.executor)
	if err != nil {
		return nil, err
	}

	percentiles, scenarios := Aggregate(balances)

	e.log.Info().
		Str("key", key).
		Int("paths", params.PathCount).
		Int("months", params.Months()).
		Float64("mean_return", params.MeanReturn).
		Float64("volatility", params.Volatility).
		Dur("duration", time.Since(start)).
		Msg("Simulation computed")

	return &SimulationResult{
		ID:          uuid.New(),
		Key:         key,
		ComputedAt:  e.cache.Now(),
		Parameters:  params,
		Percentiles: percentiles,
		Scenarios:   scenarios,
	}, nil
}

// Project builds the deterministic comparison curve.
func (e *Engine) Project(req ProjectionRequest) ([]ProjectionPoint, error) {
	points, err := ProjectDeterministic(req)
	if err != nil {
		return nil, err
	}
	e.log.Debug().
		Int("years", req.Years).
		Float64("annual_growth", req.AnnualGrowthPercent).
		Msg("Deterministic projection built")
	return points, nil
}

func hashKey(key string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return h.Sum64()
}
