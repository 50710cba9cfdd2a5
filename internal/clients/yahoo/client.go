// Package yahoo fetches monthly price history and quotes from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/etfcast/pkg/formulas"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is the public chart API host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// ErrNoData is returned when the chart API has no observations for a symbol.
var ErrNoData = errors.New("yahoo: no data returned")

// Quote is the latest market snapshot of an instrument.
type Quote struct {
	Symbol         string    `json:"symbol"`
	Currency       string    `json:"currency"`
	Price          float64   `json:"price"`
	Volume         int64     `json:"volume"`
	FirstTradeDate time.Time `json:"first_trade_date"`
}

// Client talks to the chart endpoint.
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
	now     func() time.Time
}

// NewClient creates a chart API client.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log.With().Str("client", "yahoo").Logger(),
		now:     time.Now,
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol              string   `json:"symbol"`
				Currency            string   `json:"currency"`
				RegularMarketPrice  *float64 `json:"regularMarketPrice"`
				RegularMarketVolume *int64   `json:"regularMarketVolume"`
				FirstTradeDate      *int64   `json:"firstTradeDate"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetMonthlyHistory returns month-interval closes covering the last years
// years, sorted ascending with one point per date. A missing close repeats
// the previous one; leading missing closes are dropped.
func (c *Client) GetMonthlyHistory(ctx context.Context, symbol string, years int) ([]formulas.PricePoint, error) {
	end := c.now()
	start := end.AddDate(-years, 0, 0)

	params := url.Values{}
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(end.Unix(), 10))
	params.Set("interval", "1mo")
	params.Set("events", "history")

	chart, err := c.fetchChart(ctx, symbol, params)
	if err != nil {
		return nil, err
	}

	result := chart.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoData, symbol)
	}
	closes := result.Indicators.Quote[0].Close

	points := make([]formulas.PricePoint, 0, len(result.Timestamp))
	var last *float64
	for i, ts := range result.Timestamp {
		var px *float64
		if i < len(closes) {
			px = closes[i]
		}
		if px == nil || *px <= 0 {
			px = last
		}
		if px == nil {
			continue
		}
		last = px
		points = append(points, formulas.PricePoint{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *px,
		})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoData, symbol)
	}

	points = sortAndDedupe(points)

	c.log.Debug().
		Str("symbol", symbol).
		Int("points", len(points)).
		Time("first", points[0].Date).
		Msg("Fetched monthly history")

	return points, nil
}

// GetQuote returns the latest price, volume and first trade date.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", "1d")

	chart, err := c.fetchChart(ctx, symbol, params)
	if err != nil {
		return nil, err
	}

	meta := chart.Chart.Result[0].Meta
	if meta.RegularMarketPrice == nil {
		return nil, fmt.Errorf("%w: no market price for %s", ErrNoData, symbol)
	}

	q := &Quote{
		Symbol:   strings.ToUpper(symbol),
		Currency: meta.Currency,
		Price:    *meta.RegularMarketPrice,
	}
	if meta.RegularMarketVolume != nil {
		q.Volume = *meta.RegularMarketVolume
	}
	if meta.FirstTradeDate != nil {
		q.FirstTradeDate = time.Unix(*meta.FirstTradeDate, 0).UTC()
	}
	return q, nil
}

func (c *Client) fetchChart(ctx context.Context, symbol string, params url.Values) (*chartResponse, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(strings.ToUpper(symbol)), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("yahoo: failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}

	var chart chartResponse
	decodeErr := json.Unmarshal(body, &chart)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && chart.Chart.Error != nil {
			return nil, fmt.Errorf("yahoo: status %d: %s", resp.StatusCode, chart.Chart.Error.Description)
		}
		return nil, fmt.Errorf("yahoo: status %d for %s", resp.StatusCode, symbol)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("yahoo decode: %w", decodeErr)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoData, symbol)
	}
	return &chart, nil
}

// sortAndDedupe orders points by date and keeps the last close seen for each date.
func sortAndDedupe(points []formulas.PricePoint) []formulas.PricePoint {
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	out := points[:0]
	for _, p := range points {
		if n := len(out); n > 0 && out[n-1].Date.Equal(p.Date) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}
