// Package api — customer review and sentiment endpoints.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/platesense/platesense/internal/datasource"
	"github.com/platesense/platesense/internal/reviews"
)

func (s *Server) handleGetReviews(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	branch, ok := s.st.Branch(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown branch: %s", id))
		return
	}

	limit := s.cfg.Reviews.FetchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit: %s", raw))
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	revs, err := s.agg.FetchReviews(ctx, branch, limit)
	if err != nil {
		if errors.Is(err, datasource.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, "no review sources configured for this branch")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    revs,
	})
}

func (s *Server) handleGetSentiment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	branch, ok := s.st.Branch(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown branch: %s", id))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	revs, err := s.agg.FetchReviews(ctx, branch, s.cfg.Reviews.FetchLimit)
	if err != nil && !errors.Is(err, datasource.ErrNotConfigured) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sentiment := reviews.Analyze(id, revs)

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"sentiment": sentiment,
			"summary":   reviews.Summary(sentiment),
		},
	})
}
