package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cory-johannsen/notevillage/internal/vault"
	"github.com/cory-johannsen/notevillage/internal/village"
)

type addVillagerRequest struct {
	NotePath      string `json:"notePath"`
	DisplayName   string `json:"displayName"`
	ContentLength int    `json:"contentLength"`
	ZoneID        string `json:"zoneId"`
}

// addVillager creates a villager for a newly discovered note without
// regenerating the whole village.
func (s *Server) addVillager(w http.ResponseWriter, r *http.Request) {
	var req addVillagerRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.NotePath == "" || req.ZoneID == "" {
		s.respondError(w, http.StatusBadRequest, "notePath and zoneId are required")
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = vault.DisplayName(req.NotePath)
	}

	note := village.Note{
		Path:          req.NotePath,
		DisplayName:   req.DisplayName,
		ContentLength: req.ContentLength,
		ModifiedAt:    time.Now(),
	}
	v, err := s.villages.AddVillager(note, req.ZoneID)
	if err != nil {
		s.respondError(w, mutationStatus(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, v)
}

// removeVillager deletes the villager for a note that left the vault.
func (s *Server) removeVillager(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.villages.RemoveVillager(id); err != nil {
		s.respondError(w, mutationStatus(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"removed": id})
}

type resizeRequest struct {
	ContentLength int `json:"contentLength"`
}

// resizeVillager rescales a villager after its note's content length changed.
func (s *Server) resizeVillager(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	v, err := s.villages.UpdateVillagerSize(id, req.ContentLength)
	if err != nil {
		s.respondError(w, mutationStatus(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, v)
}

// mutationStatus maps manager errors to HTTP status codes.
func mutationStatus(err error) int {
	switch {
	case errors.Is(err, village.ErrVillagerMissing):
		return http.StatusNotFound
	case errors.Is(err, village.ErrVillagerExists):
		return http.StatusConflict
	case errors.Is(err, village.ErrUnknownZone):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
