// Package api provides REST access to the local pairing archive.
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pairing_parser/internal/storage"
)

// Server serves the pairing archive over HTTP.
type Server struct {
	db   *storage.DB
	port int
}

// NewServer creates an API server over an open archive database.
func NewServer(db *storage.DB, port int) *Server {
	return &Server{db: db, port: port}
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/trips", s.handleListTrips)
		r.Get("/trips/{trip_number}/{pairing_number}", s.handleGetTrip)
	})

	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("pairing API listening on %s", addr)
	return http.ListenAndServe(addr, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := s.db.Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"trips":  count,
	})
}

// handleListTrips supports ?base=YYC&commutable=1&prelim=1&limit=50.
func (s *Server) handleListTrips(w http.ResponseWriter, r *http.Request) {
	opts := storage.QueryOptions{
		Base:           r.URL.Query().Get("base"),
		OnlyCommutable: r.URL.Query().Get("commutable") == "1",
		IncludePrelim:  r.URL.Query().Get("prelim") == "1",
		Limit:          100,
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			opts.Limit = n
		}
	}

	rows, err := s.db.List(opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	trips := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		trips = append(trips, json.RawMessage(row.TripJSON))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(trips),
		"trips": trips,
	})
}

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	tripNumber := chi.URLParam(r, "trip_number")
	pairingNumber := chi.URLParam(r, "pairing_number")

	row, err := s.db.Get(tripNumber, pairingNumber)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if row == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("trip %s/%s not found", tripNumber, pairingNumber))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(row.TripJSON))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
