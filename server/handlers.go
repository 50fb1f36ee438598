package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/etnz/portfolio-dashboard"
	"github.com/etnz/portfolio-dashboard/dashboard"
	"github.com/etnz/portfolio-dashboard/renderer"
	"github.com/etnz/portfolio-dashboard/simulator"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"state":  s.dash.Snapshot().Status,
	})
}

// handleDashboard renders the dashboard page, or its Markdown with ?format=md.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d := renderer.NewDashboard(s.dash.Snapshot(), s.cfg.Purchase, s.cfg.Valuation, s.cfg.Policy)

	if r.URL.Query().Get("format") == "md" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(renderer.RenderDashboard(d)))
		return
	}

	page, err := renderer.RenderHTML(d)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to render dashboard")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.dash.Snapshot())
}

// handleRefresh runs a refresh and returns the resulting state.
// With ?async=true it returns 202 right away and the refresh runs in the
// background, its outcome is pushed to websocket clients.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("async") == "true" {
		go s.backgroundRefresh()
		s.writeJSON(w, http.StatusAccepted, map[string]interface{}{"status": "accepted"})
		return
	}

	if err := s.dash.Refresh(r.Context()); err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.dash.Snapshot())
}

func (s *Server) backgroundRefresh() {
	ctx, cancel := context.WithTimeout(s.base, s.cfg.RefreshTimeout)
	defer cancel()
	if err := s.dash.Refresh(ctx); err != nil && !errors.Is(err, dashboard.ErrSuperseded) {
		s.log.Warn().Err(err).Msg("Background refresh failed")
	}
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.dash.Snapshot().Config
	s.writeJSON(w, http.StatusOK, configResponse{
		PortfolioConfig: cfg,
		Budget:          cfg.Budget(),
		Allocation:      s.cfg.Policy.Allocate(cfg),
	})
}

type configResponse struct {
	portfolio.PortfolioConfig
	Budget     portfolio.Budget       `json:"budget"`
	Allocation []portfolio.Allocation `json:"allocation"`
}

// handlePutConfig saves a new configuration, which triggers a refresh.
// A failure body tells whether the configuration was saved: only an invalid
// configuration is rejected, a failed refresh leaves the new one in place.
func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var cfg portfolio.PortfolioConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := s.dash.Save(r.Context(), cfg); err != nil {
		body := s.failure(err)
		body["saved"] = !errors.Is(err, dashboard.ErrInvalidConfig)
		s.writeJSON(w, statusOf(err), body)
		return
	}
	s.writeJSON(w, http.StatusOK, s.dash.Snapshot())
}

// statusOf maps an error returned by the dashboard to an HTTP status code.
func statusOf(err error) int {
	var schemaErr *simulator.SchemaError
	var transportErr *simulator.TransportError
	switch {
	case errors.Is(err, dashboard.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, dashboard.ErrSuperseded):
		return http.StatusConflict
	case simulator.IsConfiguration(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &schemaErr), errors.As(err, &transportErr), errors.Is(err, simulator.ErrEmptyResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	s.writeJSON(w, statusOf(err), s.failure(err))
}

// failure logs err when it is a server side failure and returns the response body.
func (s *Server) failure(err error) map[string]interface{} {
	if status := statusOf(err); status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Int("status", status).Msg("Request failed")
	}
	return map[string]interface{}{
		"error": err.Error(),
		"state": s.dash.Snapshot(),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error": message,
	})
}
