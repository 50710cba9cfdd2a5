// Package handlers provides HTTP handlers for instruments and market data.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/etfcast/internal/modules/catalog"
	"github.com/aristath/etfcast/internal/modules/marketdata"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles instrument HTTP requests
type Handler struct {
	service *marketdata.Service
	log     zerolog.Logger
}

// NewHandler creates a new instrument handler
func NewHandler(service *marketdata.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "instruments").Logger(),
	}
}

// HandleListInstruments handles GET /api/instruments
func (h *Handler) HandleListInstruments(w http.ResponseWriter, r *http.Request) {
	types := h.service.Catalog().Types()

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"types": types,
			"count": len(h.service.Catalog().Symbols()),
		},
		"metadata": metadata(),
	})
}

// HandleGetInstrument handles GET /api/instruments/{symbol}
func (h *Handler) HandleGetInstrument(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	overview, err := h.service.Overview(r.Context(), symbol)
	if err != nil {
		h.writeError(w, symbol, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":     overview,
		"metadata": metadata(),
	})
}

// HandleGetGrowth handles GET /api/instruments/{symbol}/growth
func (h *Handler) HandleGetGrowth(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	overview, err := h.service.Overview(r.Context(), symbol)
	if err != nil {
		h.writeError(w, symbol, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"symbol":                 overview.Symbol,
			"growth":                 overview.Growth,
			"simulation_growth_rate": overview.SimulationGrowthRate,
			"overview":               overview,
		},
		"metadata": metadata(),
	})
}

// HandleGetHistory handles GET /api/instruments/{symbol}/history
func (h *Handler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	points, err := h.service.History(r.Context(), symbol)
	if err != nil {
		h.writeError(w, symbol, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"symbol": symbol,
			"points": points,
			"count":  len(points),
		},
		"metadata": metadata(),
	})
}

// HandleRefresh handles POST /api/instruments/refresh
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.RefreshAll(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Market data refresh failed")
		http.Error(w, "market data refresh failed", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":     report,
		"metadata": metadata(),
	})
}

func (h *Handler) writeError(w http.ResponseWriter, symbol string, err error) {
	if errors.Is(err, catalog.ErrUnknownInstrument) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to load market data")
	http.Error(w, "market data unavailable", http.StatusBadGateway)
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
