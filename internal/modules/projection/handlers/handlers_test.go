package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/etfcast/internal/modules/catalog"
	"github.com/aristath/etfcast/internal/modules/projection"
	"github.com/aristath/etfcast/pkg/formulas"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMarketData struct {
	growth     float64
	err        error
	growthHits int
}

func (m *stubMarketData) History(ctx context.Context, symbol string) ([]formulas.PricePoint, error) {
	if m.err != nil {
		return nil, m.err
	}
	if symbol != "VOO" {
		return nil, fmt.Errorf("%w: %s", catalog.ErrUnknownInstrument, symbol)
	}
	points := make([]formulas.PricePoint, 0, 60)
	price := 100.0
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		points = append(points, formulas.PricePoint{Date: start.AddDate(0, i, 0), Close: price})
		price *= 1.005 + 0.02*math.Sin(float64(i))
	}
	return points, nil
}

func (m *stubMarketData) SimulationGrowthRate(ctx context.Context, symbol string) (float64, error) {
	m.growthHits++
	if m.err != nil {
		return 0, m.err
	}
	if symbol != "VOO" {
		return 0, fmt.Errorf("%w: %s", catalog.ErrUnknownInstrument, symbol)
	}
	return m.growth, nil
}

type stubRates struct {
	rates map[string]float64
}

func (s stubRates) GetRate(ctx context.Context, from, to string) (float64, error) {
	if from == to {
		return 1, nil
	}
	rate, ok := s.rates[to]
	if !ok {
		return 0, errors.New("rate not found")
	}
	return rate, nil
}

func setupHandler(md *stubMarketData) (*Handler, chi.Router) {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	engine := projection.NewEngine(logger, projection.WithSeed(7), projection.WithDefaultPathCount(500))
	handler := NewHandler(engine, md, stubRates{rates: map[string]float64{"EUR": 2}}, logger)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return handler, router
}

func post(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	bodyBytes, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(bodyBytes))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Contains(t, response, "metadata")
	return response["data"].(map[string]interface{})
}

func TestHandleCurve(t *testing.T) {
	_, router := setupHandler(&stubMarketData{growth: 7})

	w := post(t, router, "/projection/curve", map[string]interface{}{
		"monthly_deposit":    500,
		"annual_growth_rate": 7,
		"years":              30,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	data := decodeData(t, w)
	assert.Equal(t, "USD", data["currency"])
	assert.Len(t, data["points"], 31)

	final := data["final"].(map[string]interface{})
	assert.Equal(t, 613544.0, final["total_value"])
	assert.Equal(t, 180000.0, final["deposit_component"])
	assert.Equal(t, 433544.0, final["interest_component"])
	assert.Equal(t, 292503.0, data["inflation_adjusted_total"])

	formatted := data["formatted"].(map[string]interface{})
	assert.Equal(t, "$613,544.00", formatted["total"])
}

func TestHandleCurve_ConvertsCurrency(t *testing.T) {
	_, router := setupHandler(&stubMarketData{growth: 7})

	w := post(t, router, "/projection/curve", map[string]interface{}{
		"monthly_deposit":    1000,
		"annual_growth_rate": 7,
		"years":              30,
		"currency":           "eur",
	})
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, "EUR", data["currency"])
	assert.Equal(t, 2.0, data["conversion_rate"])
	final := data["final"].(map[string]interface{})
	assert.Equal(t, 1227087.0, final["total_value"])
	assert.Equal(t, 360000.0, final["deposit_component"])
	assert.Equal(t, 867087.0, final["interest_component"])
}

func TestHandleCurve_GrowthFromSymbol(t *testing.T) {
	md := &stubMarketData{growth: 12}
	_, router := setupHandler(md)

	w := post(t, router, "/projection/curve", map[string]interface{}{
		"monthly_deposit": 100,
		"symbol":          "voo",
		"years":           1,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, md.growthHits)

	data := decodeData(t, w)
	assert.Equal(t, 12.0, data["annual_growth_rate"])
	final := data["final"].(map[string]interface{})
	assert.Equal(t, 1281.0, final["total_value"])
	assert.Equal(t, 81.0, final["interest_component"])
}

func TestHandleCurve_Errors(t *testing.T) {
	tests := []struct {
		name   string
		md     *stubMarketData
		body   interface{}
		status int
	}{
		{"invalid json", &stubMarketData{}, "not an object", http.StatusBadRequest},
		{"no rate or symbol", &stubMarketData{}, map[string]interface{}{"monthly_deposit": 100, "years": 10}, http.StatusBadRequest},
		{"unknown currency", &stubMarketData{}, map[string]interface{}{"monthly_deposit": 100, "years": 10, "annual_growth_rate": 5, "currency": "ZZZ"}, http.StatusBadRequest},
		{"missing rate", &stubMarketData{}, map[string]interface{}{"monthly_deposit": 100, "years": 10, "annual_growth_rate": 5, "currency": "GBP"}, http.StatusBadGateway},
		{"zero deposit", &stubMarketData{}, map[string]interface{}{"monthly_deposit": 0, "years": 10, "annual_growth_rate": 5}, http.StatusBadRequest},
		{"years too long", &stubMarketData{}, map[string]interface{}{"monthly_deposit": 100, "years": 101, "annual_growth_rate": 5}, http.StatusBadRequest},
		{"unknown symbol", &stubMarketData{}, map[string]interface{}{"monthly_deposit": 100, "years": 10, "symbol": "NOPE"}, http.StatusNotFound},
		{"upstream failure", &stubMarketData{err: errors.New("boom")}, map[string]interface{}{"monthly_deposit": 100, "years": 10, "symbol": "VOO"}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, router := setupHandler(tt.md)
			w := post(t, router, "/projection/curve", tt.body)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestHandleSimulate(t *testing.T) {
	_, router := setupHandler(&stubMarketData{growth: 6.5})

	body := map[string]interface{}{
		"symbol":          "VOO",
		"monthly_deposit": 250,
		"years":           10,
		"path_count":      300,
	}
	w := post(t, router, "/projection/simulate", body)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, "VOO", data["symbol"])
	assert.Equal(t, 6.5, data["annual_growth_rate"])
	assert.NotEmpty(t, data["id"])
	assert.NotContains(t, data, "scenarios")

	params := data["parameters"].(map[string]interface{})
	assert.Equal(t, 300.0, params["path_count"])
	assert.Equal(t, 10.0, params["years_to_invest"])

	pct := data["percentiles"].(map[string]interface{})
	assert.LessOrEqual(t, pct["worst"].(float64), pct["p10"].(float64))
	assert.LessOrEqual(t, pct["p10"].(float64), pct["median"].(float64))
	assert.LessOrEqual(t, pct["median"].(float64), pct["p90"].(float64))
	assert.LessOrEqual(t, pct["p90"].(float64), pct["best"].(float64))

	// the identical request is served from the cache
	again := decodeData(t, post(t, router, "/projection/simulate", body))
	assert.Equal(t, data["id"], again["id"])
}

func TestHandleSimulate_IncludeScenarios(t *testing.T) {
	_, router := setupHandler(&stubMarketData{growth: 6.5})

	w := post(t, router, "/projection/simulate", map[string]interface{}{
		"symbol":             "VOO",
		"monthly_deposit":    100,
		"years":              5,
		"annual_growth_rate": 4,
		"path_count":         50,
		"include_scenarios":  true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, 4.0, data["annual_growth_rate"])
	assert.Len(t, data["scenarios"], 50)
}

func TestHandleSimulate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		md     *stubMarketData
		body   interface{}
		status int
	}{
		{"invalid json", &stubMarketData{}, 42, http.StatusBadRequest},
		{"missing symbol", &stubMarketData{}, map[string]interface{}{"monthly_deposit": 100, "years": 10}, http.StatusBadRequest},
		{"unknown symbol", &stubMarketData{}, map[string]interface{}{"symbol": "NOPE", "monthly_deposit": 100, "years": 10}, http.StatusNotFound},
		{"negative deposit", &stubMarketData{growth: 5}, map[string]interface{}{"symbol": "VOO", "monthly_deposit": -1, "years": 10}, http.StatusBadRequest},
		{"zero years", &stubMarketData{growth: 5}, map[string]interface{}{"symbol": "VOO", "monthly_deposit": 100, "years": 0}, http.StatusBadRequest},
		{"too many samples", &stubMarketData{growth: 5}, map[string]interface{}{"symbol": "VOO", "monthly_deposit": 100, "years": 100, "path_count": 1_000_000}, http.StatusBadRequest},
		{"path count overflows sample count", &stubMarketData{growth: 5}, map[string]interface{}{"symbol": "VOO", "monthly_deposit": 100, "years": 1, "path_count": int64(1) << 61}, http.StatusBadRequest},
		{"upstream failure", &stubMarketData{err: errors.New("boom")}, map[string]interface{}{"symbol": "VOO", "monthly_deposit": 100, "years": 10}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, router := setupHandler(tt.md)
			w := post(t, router, "/projection/simulate", tt.body)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRegisterRoutes(t *testing.T) {
	handler, _ := setupHandler(&stubMarketData{})
	router := chi.NewRouter()

	// Should not panic
	assert.NotPanics(t, func() {
		handler.RegisterRoutes(router)
	}, "RegisterRoutes should not panic")
}
