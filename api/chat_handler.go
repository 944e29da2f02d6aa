// Package api — coaching chat endpoints.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	if req.BranchID != "" {
		if _, ok := s.st.Branch(req.BranchID); !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("unknown branch: %s", req.BranchID))
			return
		}
	}

	session := s.coach.StartSession(req.BranchID)

	writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Data:    session,
	})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.coach.Session(id); !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown session: %s", id))
		return
	}

	s.coach.EndSession(id)

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]string{"ended": id},
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.SessionID == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "session_id and message are required")
		return
	}

	if _, ok := s.coach.Session(req.SessionID); !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown session: %s", req.SessionID))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	reply, err := s.coach.Ask(ctx, req.SessionID, req.Message)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    reply,
	})
}
