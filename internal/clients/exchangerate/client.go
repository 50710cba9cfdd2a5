// Package exchangerate converts between display currencies using exchangerate-api.com.
package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/aristath/etfcast/internal/clientdata"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is the public latest-rates endpoint.
const DefaultBaseURL = "https://api.exchangerate-api.com/v4/latest"

// Client for exchangerate-api.com
type Client struct {
	baseURL   string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
}

// NewClient creates a new exchange-rate client. cacheRepo may be nil to disable caching.
func NewClient(baseURL string, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: 10 * time.Second},
		log:       log.With().Str("client", "exchangerate-api").Logger(),
		cacheRepo: cacheRepo,
	}
}

type cachedExchangeRate struct {
	Rate float64 `json:"rate"`
}

// GetRate returns how many units of to one unit of from buys.
// Fresh cache entries are served first; if the API fails, a stale cached
// rate is returned when one exists.
func (c *Client) GetRate(ctx context.Context, from, to string) (float64, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if err := validateCurrency(from); err != nil {
		return 0, err
	}
	if err := validateCurrency(to); err != nil {
		return 0, err
	}
	if from == to {
		return 1.0, nil
	}

	pair := from + ":" + to

	if rate, ok := c.readCache(ctx, pair, true); ok {
		c.log.Debug().Str("pair", pair).Float64("rate", rate).Msg("Cache hit")
		return rate, nil
	}

	rate, err := c.fetchRate(ctx, from, to)
	if err != nil {
		if stale, ok := c.readCache(ctx, pair, false); ok {
			c.log.Warn().Err(err).Str("pair", pair).Float64("rate", stale).Msg("API failed, using stale cached rate")
			return stale, nil
		}
		return 0, err
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store(ctx, clientdata.TableExchangeRate, pair, cachedExchangeRate{Rate: rate}, clientdata.TTLExchangeRate); err != nil {
			c.log.Warn().Err(err).Str("pair", pair).Msg("Failed to cache exchange rate")
		}
	}

	c.log.Info().Str("pair", pair).Float64("rate", rate).Msg("Fetched rate")
	return rate, nil
}

func (c *Client) fetchRate(ctx context.Context, from, to string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+from, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to parse response: %w", err)
	}

	rate, ok := result.Rates[to]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("rate not found for %s->%s", from, to)
	}
	return rate, nil
}

// readCache returns the cached rate for pair; fresh restricts it to unexpired entries.
func (c *Client) readCache(ctx context.Context, pair string, fresh bool) (float64, bool) {
	if c.cacheRepo == nil {
		return 0, false
	}

	read := c.cacheRepo.Get
	if fresh {
		read = c.cacheRepo.GetIfFresh
	}
	data, err := read(ctx, clientdata.TableExchangeRate, pair)
	if err != nil || data == nil {
		return 0, false
	}

	var cached cachedExchangeRate
	if err := json.Unmarshal(data, &cached); err != nil {
		return 0, false
	}
	return cached.Rate, true
}

func validateCurrency(code string) error {
	if money.GetCurrency(code) == nil {
		return fmt.Errorf("unknown currency %q", code)
	}
	return nil
}
