// Package admin exposes the pool's administrative surface over HTTP:
// statistics, configuration and forced teardown.
package admin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/guileen/dbpool/pool"
)

type Handler struct {
	pool *pool.Pool
}

func NewHandler(p *pool.Pool) *Handler {
	return &Handler{pool: p}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/pool", func(r chi.Router) {
		r.Get("/stats", h.GetStats)
		r.Get("/config", h.GetConfig)
		r.Put("/config", h.UpdateConfig)
		r.Post("/flush", h.Flush)
	})
}

type StatsResponse struct {
	IdleCount   int `json:"idle_count"`
	ActiveCount int `json:"active_count"`

	RequestCount                  int64 `json:"request_count"`
	HadToWaitCount                int64 `json:"had_to_wait_count"`
	BadConnectionCount            int64 `json:"bad_connection_count"`
	ClaimedOverdueConnectionCount int64 `json:"claimed_overdue_connection_count"`

	AccumulatedRequestTimeMs  int64 `json:"accumulated_request_time_ms"`
	AccumulatedCheckoutTimeMs int64 `json:"accumulated_checkout_time_ms"`
	AccumulatedWaitTimeMs     int64 `json:"accumulated_wait_time_ms"`

	AverageRequestTimeMs  int64 `json:"average_request_time_ms"`
	AverageCheckoutTimeMs int64 `json:"average_checkout_time_ms"`
	AverageWaitTimeMs     int64 `json:"average_wait_time_ms"`
}

type ConfigResponse struct {
	URL      string `json:"url"`
	Username string `json:"username"`

	MaxActiveConnections   int   `json:"max_active_connections"`
	MaxIdleConnections     int   `json:"max_idle_connections"`
	MaxCheckoutTimeMs      int64 `json:"max_checkout_time_ms"`
	TimeToWaitMs           int64 `json:"time_to_wait_ms"`
	BadConnectionTolerance int   `json:"bad_connection_tolerance"`

	PingEnabled      bool   `json:"ping_enabled"`
	PingQuery        string `json:"ping_query"`
	PingNotUsedForMs int64  `json:"ping_not_used_for_ms"`
}

// ConfigUpdateRequest is a partial update; only the fields present in the
// request body are applied. Every applied field goes through the matching
// pool setter, so any update resets the pool.
type ConfigUpdateRequest struct {
	URL      *string `json:"url,omitempty"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`

	MaxActiveConnections   *int   `json:"max_active_connections,omitempty"`
	MaxIdleConnections     *int   `json:"max_idle_connections,omitempty"`
	MaxCheckoutTimeMs      *int64 `json:"max_checkout_time_ms,omitempty"`
	TimeToWaitMs           *int64 `json:"time_to_wait_ms,omitempty"`
	BadConnectionTolerance *int   `json:"bad_connection_tolerance,omitempty"`

	PingEnabled      *bool   `json:"ping_enabled,omitempty"`
	PingQuery        *string `json:"ping_query,omitempty"`
	PingNotUsedForMs *int64  `json:"ping_not_used_for_ms,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := h.pool.Stats()

	response := StatsResponse{
		IdleCount:   stats.IdleCount,
		ActiveCount: stats.ActiveCount,

		RequestCount:                  stats.RequestCount,
		HadToWaitCount:                stats.HadToWaitCount,
		BadConnectionCount:            stats.BadConnectionCount,
		ClaimedOverdueConnectionCount: stats.ClaimedOverdueConnectionCount,

		AccumulatedRequestTimeMs:  stats.AccumulatedRequestTime.Milliseconds(),
		AccumulatedCheckoutTimeMs: stats.AccumulatedCheckoutTime.Milliseconds(),
		AccumulatedWaitTimeMs:     stats.AccumulatedWaitTime.Milliseconds(),

		AverageRequestTimeMs:  stats.AverageRequestTime().Milliseconds(),
		AverageCheckoutTimeMs: stats.AverageCheckoutTime().Milliseconds(),
		AverageWaitTimeMs:     stats.AverageWaitTime().Milliseconds(),
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.pool.Config()

	// The password never leaves the process.
	response := ConfigResponse{
		URL:      cfg.URL,
		Username: cfg.Username,

		MaxActiveConnections:   cfg.MaxActiveConnections,
		MaxIdleConnections:     cfg.MaxIdleConnections,
		MaxCheckoutTimeMs:      cfg.MaxCheckoutTime.Milliseconds(),
		TimeToWaitMs:           cfg.TimeToWait.Milliseconds(),
		BadConnectionTolerance: cfg.BadConnectionTolerance,

		PingEnabled:      cfg.PingEnabled,
		PingQuery:        cfg.PingQuery,
		PingNotUsedForMs: cfg.PingNotUsedFor.Milliseconds(),
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req ConfigUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	if req.URL != nil {
		h.pool.SetURL(*req.URL)
	}
	if req.Username != nil {
		h.pool.SetUsername(*req.Username)
	}
	if req.Password != nil {
		h.pool.SetPassword(*req.Password)
	}
	if req.MaxActiveConnections != nil {
		h.pool.SetMaxActiveConnections(*req.MaxActiveConnections)
	}
	if req.MaxIdleConnections != nil {
		h.pool.SetMaxIdleConnections(*req.MaxIdleConnections)
	}
	if req.MaxCheckoutTimeMs != nil {
		h.pool.SetMaxCheckoutTime(time.Duration(*req.MaxCheckoutTimeMs) * time.Millisecond)
	}
	if req.TimeToWaitMs != nil {
		h.pool.SetTimeToWait(time.Duration(*req.TimeToWaitMs) * time.Millisecond)
	}
	if req.BadConnectionTolerance != nil {
		h.pool.SetBadConnectionTolerance(*req.BadConnectionTolerance)
	}
	if req.PingEnabled != nil {
		h.pool.SetPingEnabled(*req.PingEnabled)
	}
	if req.PingQuery != nil {
		h.pool.SetPingQuery(*req.PingQuery)
	}
	if req.PingNotUsedForMs != nil {
		h.pool.SetPingNotUsedFor(time.Duration(*req.PingNotUsedForMs) * time.Millisecond)
	}

	h.GetConfig(w, r)
}

func (h *Handler) Flush(w http.ResponseWriter, r *http.Request) {
	h.pool.ForceCloseAll(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"flushed": true})
}

// Helper functions
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()})
}
