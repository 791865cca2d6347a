// Package httpserver exposes the read-only ops surface next to the
// chat transport: liveness, stock counts and current prices.
package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"mailshop/internal/logging"
	"mailshop/internal/model"
	"mailshop/internal/store"

	"github.com/go-chi/chi"
)

type Server struct {
	store *store.Database
	serv  *http.Server
}

func New(address string, db *store.Database) *Server {
	s := &Server{store: db}

	r := chi.NewRouter()
	r.Get("/healthz", s.Healthz)
	r.Route("/api", func(r chi.Router) {
		r.Get("/stocks", s.GetStocks)
		r.Get("/prices", s.GetPrices)
	})

	s.serv = &http.Server{
		Addr:         address,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) ListenAndServe() error {
	return s.serv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.serv.Shutdown(ctx)
}

func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		logging.Logg.Error("Health check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) GetStocks(w http.ResponseWriter, r *http.Request) {
	stocks := make(map[model.Service]int)
	for _, svc := range model.Services() {
		count, err := s.store.Count(svc)
		if err != nil {
			logging.Logg.Error("Failed to count stock", "service", svc, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		stocks[svc] = count
	}
	writeJSON(w, stocks)
}

func (s *Server) GetPrices(w http.ResponseWriter, r *http.Request) {
	prices, err := s.store.Prices()
	if err != nil {
		logging.Logg.Error("Failed to load prices", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeJSON(w, prices)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Logg.Error("Failed to encode response", "error", err)
	}
}
