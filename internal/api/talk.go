package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type talkRequest struct {
	// SessionID continues an existing conversation; empty starts a new one.
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
	// End closes the session and persists its transcript. Message is ignored.
	End bool `json:"end"`
}

type talkResponse struct {
	SessionID string `json:"sessionId"`
	Reply     string `json:"reply,omitempty"`
	Ended     bool   `json:"ended,omitempty"`
}

// talk runs one exchange of a conversation with a villager, creating a
// session on first contact and closing it when asked.
func (s *Server) talk(w http.ResponseWriter, r *http.Request) {
	if s.dialogues == nil {
		s.respondError(w, http.StatusServiceUnavailable, "dialogue is not configured")
		return
	}

	var req talkRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	villager, ok := s.villages.Villager(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "villager "+id+" not found")
		return
	}

	if req.End {
		if req.SessionID == "" {
			s.respondError(w, http.StatusBadRequest, "sessionId is required to end a conversation")
			return
		}
		if err := s.dialogues.EndSession(req.SessionID); err != nil {
			s.logger.Error("closing dialogue session", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, "ending conversation: "+err.Error())
			return
		}
		s.respondJSON(w, http.StatusOK, talkResponse{SessionID: req.SessionID, Ended: true})
		return
	}

	if req.Message == "" {
		s.respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = s.dialogues.StartSession(villager)
	}

	reply, err := s.dialogues.Talk(r.Context(), sessionID, req.Message)
	if err != nil {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, talkResponse{SessionID: sessionID, Reply: reply})
}
