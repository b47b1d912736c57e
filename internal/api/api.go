// Package api exposes the village over HTTP: the current snapshot,
// regeneration, incremental villager mutations, and villager dialogue.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/cory-johannsen/notevillage/internal/dialogue"
	"github.com/cory-johannsen/notevillage/internal/village"
)

// RegenerateFunc rebuilds the village from the vault with the given seed and
// returns the new snapshot. An empty seed keeps the configured one.
type RegenerateFunc func(seed string) (*village.Village, error)

// Server wires the village manager, the regeneration pipeline, and the
// dialogue manager into a chi router.
type Server struct {
	villages   *village.Manager
	regenerate RegenerateFunc
	dialogues  *dialogue.Manager
	logger     *zap.Logger
}

// NewServer creates the API server.
//
// Precondition: villages and logger must be non-nil. regenerate and
// dialogues may be nil; their endpoints then answer 503.
func NewServer(villages *village.Manager, regenerate RegenerateFunc, dialogues *dialogue.Manager, logger *zap.Logger) *Server {
	return &Server{
		villages:   villages,
		regenerate: regenerate,
		dialogues:  dialogues,
		logger:     logger,
	}
}

// Routes returns the configured router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/village", s.getVillage)
		r.Post("/village/regenerate", s.regenerateVillage)

		r.Post("/villagers", s.addVillager)
		r.Delete("/villagers/{id}", s.removeVillager)
		r.Patch("/villagers/{id}/size", s.resizeVillager)
		r.Post("/villagers/{id}/talk", s.talk)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

// respondJSON writes data as a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding API response", zap.Error(err))
	}
}

// respondError writes an error as {"error": message}.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// decode reads the request body into dst, rejecting unknown fields.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
