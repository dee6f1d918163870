// Package api provides a read-only HTTP view of the running economy.
// All endpoints are GET; control stays with the CLI.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/talgya/coinage/internal/engine"
)

// Server serves economy state over HTTP.
type Server struct {
	Sim  *engine.Simulation
	Eng  *engine.Engine
	Port int
}

// Handler builds the API route table.
func (s *Server) Handler() http.Handler {
	eventLimiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/market", s.handleMarket)
	mux.HandleFunc("/api/v1/agents", s.handleAgents)
	mux.HandleFunc("/api/v1/loans", s.handleLoans)
	mux.HandleFunc("/api/v1/government", s.handleGovernment)
	mux.HandleFunc("/api/v1/events", RateLimitMiddleware(eventLimiter, s.handleEvents))
	return mux
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	mux := s.Handler()
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response encode failed", "error", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"day":        s.Sim.CurrentDay(),
		"running":    s.Eng != nil && s.Eng.Running,
		"stats":      s.Sim.Stats,
		"volatility": s.Sim.Market.Volatility(),
	})
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"products":   s.Sim.Market.Snapshot(),
		"volatility": s.Sim.Market.Volatility(),
		"routes":     s.Sim.Market.Routes(),
	})
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"persons":    s.Sim.People,
		"businesses": s.Sim.Businesses,
	})
}

func (s *Server) handleLoans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"lender_balance": s.Sim.Lender.Balance,
		"base_rate":      s.Sim.Lender.BaseInterestRate,
		"loans":          s.Sim.Lender.ActiveLoans(),
	})
}

func (s *Server) handleGovernment(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Gov)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events := s.Sim.Events
	if len(events) > 100 {
		events = events[len(events)-100:]
	}
	writeJSON(w, events)
}
