package api

import (
	"net/http"

	"go.uber.org/zap"
)

// getVillage returns the current immutable snapshot.
func (s *Server) getVillage(w http.ResponseWriter, _ *http.Request) {
	v := s.villages.Village()
	if v == nil {
		s.respondError(w, http.StatusServiceUnavailable, "no village generated yet")
		return
	}
	s.respondJSON(w, http.StatusOK, v)
}

type regenerateRequest struct {
	Seed string `json:"seed"`
}

// regenerateVillage rebuilds the village from the vault, optionally with a
// new seed, and publishes the result as the current snapshot.
func (s *Server) regenerateVillage(w http.ResponseWriter, r *http.Request) {
	if s.regenerate == nil {
		s.respondError(w, http.StatusServiceUnavailable, "regeneration is not configured")
		return
	}

	var req regenerateRequest
	if r.ContentLength > 0 {
		if err := decode(r, &req); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	v, err := s.regenerate(req.Seed)
	if err != nil {
		s.logger.Error("village regeneration failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "regeneration failed: "+err.Error())
		return
	}
	s.villages.SetVillage(v)
	s.respondJSON(w, http.StatusOK, v)
}
