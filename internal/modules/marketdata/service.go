// Package marketdata serves instrument history, quotes and growth estimates,
// reading through the client data cache in front of the chart provider.
package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/aristath/etfcast/internal/clientdata"
	"github.com/aristath/etfcast/internal/clients/yahoo"
	"github.com/aristath/etfcast/internal/modules/catalog"
	"github.com/aristath/etfcast/internal/modules/projection"
	"github.com/aristath/etfcast/pkg/formulas"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Provider fetches raw market data.
type Provider interface {
	GetMonthlyHistory(ctx context.Context, symbol string, years int) ([]formulas.PricePoint, error)
	GetQuote(ctx context.Context, symbol string) (*yahoo.Quote, error)
}

// Overview is the market summary shown next to an instrument.
type Overview struct {
	Symbol               string                    `json:"symbol"`
	Name                 string                    `json:"name"`
	Type                 string                    `json:"type"`
	Price                float64                   `json:"price"`
	Volume               string                    `json:"volume"`
	InceptionDate        string                    `json:"inception_date"`
	Years                int                       `json:"years"`
	Growth               projection.GrowthEstimate `json:"growth"`
	SimulationGrowthRate float64                   `json:"simulation_growth_rate"`
	HistoryPoints        int                       `json:"history_points"`
}

// RefreshReport summarizes a RefreshAll pass.
type RefreshReport struct {
	Refreshed []string          `json:"refreshed"`
	Failed    map[string]string `json:"failed,omitempty"`
	Duration  time.Duration     `json:"duration"`
}

// Service provides cached market data for catalog instruments.
type Service struct {
	provider     Provider
	cache        *clientdata.Repository
	catalog      *catalog.Catalog
	historyYears int
	concurrency  int
	now          func() time.Time
	log          zerolog.Logger
}

// NewService creates a market data service. cache may be nil to disable caching.
func NewService(provider Provider, cache *clientdata.Repository, cat *catalog.Catalog, historyYears int, log zerolog.Logger) *Service {
	if historyYears <= 0 {
		historyYears = 20
	}
	return &Service{
		provider:     provider,
		cache:        cache,
		catalog:      cat,
		historyYears: historyYears,
		concurrency:  4,
		now:          time.Now,
		log:          log.With().Str("service", "marketdata").Logger(),
	}
}

// Catalog returns the instrument catalog the service covers.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// History returns the monthly close series for a catalog instrument, oldest first.
func (s *Service) History(ctx context.Context, symbol string) ([]formulas.PricePoint, error) {
	inst, err := s.catalog.Lookup(symbol)
	if err != nil {
		return nil, err
	}

	var points []formulas.PricePoint
	if s.readCache(ctx, clientdata.TablePriceHistory, inst.Symbol, true, &points) {
		return points, nil
	}
	return s.fetchHistory(ctx, inst.Symbol)
}

func (s *Service) fetchHistory(ctx context.Context, symbol string) ([]formulas.PricePoint, error) {
	points, err := s.provider.GetMonthlyHistory(ctx, symbol, s.historyYears)
	if err != nil {
		var stale []formulas.PricePoint
		if s.readCache(ctx, clientdata.TablePriceHistory, symbol, false, &stale) {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("History fetch failed, using stale cache")
			return stale, nil
		}
		return nil, fmt.Errorf("failed to fetch history for %s: %w", symbol, err)
	}

	s.store(ctx, clientdata.TablePriceHistory, symbol, points, clientdata.TTLPriceHistory)
	return points, nil
}

// Quote returns the latest quote for a catalog instrument.
func (s *Service) Quote(ctx context.Context, symbol string) (*yahoo.Quote, error) {
	inst, err := s.catalog.Lookup(symbol)
	if err != nil {
		return nil, err
	}

	var cached yahoo.Quote
	if s.readCache(ctx, clientdata.TableQuotes, inst.Symbol, true, &cached) {
		return &cached, nil
	}

	q, err := s.provider.GetQuote(ctx, inst.Symbol)
	if err != nil {
		if s.readCache(ctx, clientdata.TableQuotes, inst.Symbol, false, &cached) {
			s.log.Warn().Err(err).Str("symbol", inst.Symbol).Msg("Quote fetch failed, using stale cache")
			return &cached, nil
		}
		return nil, fmt.Errorf("failed to fetch quote for %s: %w", inst.Symbol, err)
	}

	s.store(ctx, clientdata.TableQuotes, inst.Symbol, q, clientdata.TTLQuote)
	return q, nil
}

// Growth estimates the corrected annual growth from the instrument history.
// A history too short to annualize yields a zero estimate, not an error.
func (s *Service) Growth(ctx context.Context, symbol string) (projection.GrowthEstimate, error) {
	points, err := s.History(ctx, symbol)
	if err != nil {
		return projection.GrowthEstimate{}, err
	}

	est, err := projection.EstimateGrowth(points)
	if err != nil && !errors.Is(err, projection.ErrInsufficientData) {
		return projection.GrowthEstimate{}, err
	}
	if err != nil {
		s.log.Warn().Str("symbol", symbol).Int("points", len(points)).Msg("Insufficient history for growth estimate")
	}
	return est, nil
}

// SimulationGrowthRate is the annual growth percent fed to simulations: the
// corrected estimate when positive, else the catalog fallback.
func (s *Service) SimulationGrowthRate(ctx context.Context, symbol string) (float64, error) {
	est, err := s.Growth(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return s.catalog.SelectGrowthRate(symbol, est.AnnualGrowthPercent), nil
}

// Overview combines quote, inception and growth for an instrument. A failed
// quote leaves price and volume empty rather than failing the overview.
func (s *Service) Overview(ctx context.Context, symbol string) (*Overview, error) {
	inst, err := s.catalog.Lookup(symbol)
	if err != nil {
		return nil, err
	}

	points, err := s.History(ctx, inst.Symbol)
	if err != nil {
		return nil, err
	}
	est, err := projection.EstimateGrowth(points)
	if err != nil && !errors.Is(err, projection.ErrInsufficientData) {
		return nil, err
	}

	ov := &Overview{
		Symbol:               inst.Symbol,
		Name:                 inst.Name,
		Type:                 inst.Type,
		Volume:               FormatVolume(0),
		Growth:               est,
		SimulationGrowthRate: s.catalog.SelectGrowthRate(inst.Symbol, est.AnnualGrowthPercent),
		HistoryPoints:        len(points),
	}

	var inception time.Time
	if len(points) > 0 {
		inception = points[0].Date
	}

	q, err := s.Quote(ctx, inst.Symbol)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", inst.Symbol).Msg("Overview without quote")
	} else {
		ov.Price = q.Price
		ov.Volume = FormatVolume(q.Volume)
		if !q.FirstTradeDate.IsZero() {
			inception = q.FirstTradeDate
		}
	}

	if !inception.IsZero() {
		ov.InceptionDate = inception.Format("2006-01-02")
		ov.Years = int(math.Floor(formulas.YearsBetween(inception, s.now())))
	}
	return ov, nil
}

// RefreshAll refetches history and quotes for every catalog symbol, bypassing
// fresh cache entries. Per-symbol failures are logged and reported, not returned.
func (s *Service) RefreshAll(ctx context.Context) (*RefreshReport, error) {
	start := time.Now()
	report := &RefreshReport{Failed: make(map[string]string)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, symbol := range s.catalog.Symbols() {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := s.refreshSymbol(gctx, symbol)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.log.Warn().Err(err).Str("symbol", symbol).Msg("Refresh failed")
				report.Failed[symbol] = err.Error()
				return nil
			}
			report.Refreshed = append(report.Refreshed, symbol)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, fmt.Errorf("market data refresh interrupted: %w", err)
	}

	report.Duration = time.Since(start)
	s.log.Info().
		Int("refreshed", len(report.Refreshed)).
		Int("failed", len(report.Failed)).
		Dur("duration", report.Duration).
		Msg("Market data refreshed")
	return report, nil
}

func (s *Service) refreshSymbol(ctx context.Context, symbol string) error {
	points, err := s.provider.GetMonthlyHistory(ctx, symbol, s.historyYears)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	s.store(ctx, clientdata.TablePriceHistory, symbol, points, clientdata.TTLPriceHistory)

	q, err := s.provider.GetQuote(ctx, symbol)
	if err != nil {
		return fmt.Errorf("quote: %w", err)
	}
	s.store(ctx, clientdata.TableQuotes, symbol, q, clientdata.TTLQuote)
	return nil
}

func (s *Service) readCache(ctx context.Context, table, key string, fresh bool, dst interface{}) bool {
	if s.cache == nil {
		return false
	}

	read := s.cache.Get
	if fresh {
		read = s.cache.GetIfFresh
	}
	data, err := read(ctx, table, key)
	if err != nil {
		s.log.Warn().Err(err).Str("table", table).Str("key", key).Msg("Cache read failed")
		return false
	}
	if data == nil {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.log.Warn().Err(err).Str("table", table).Str("key", key).Msg("Discarding undecodable cache entry")
		return false
	}
	return true
}

func (s *Service) store(ctx context.Context, table, key string, data interface{}, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Store(ctx, table, key, data, ttl); err != nil {
		s.log.Warn().Err(err).Str("table", table).Str("key", key).Msg("Failed to cache market data")
	}
}
