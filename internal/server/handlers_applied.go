package server

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

// handleListApplied lists recently applied reviews, optionally for one session
func (s *Server) handleListApplied(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "review history is not configured")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.failure(w, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		limit = n
	}

	reviews, err := s.history.ListAppliedReviews(r.Context(), r.URL.Query().Get("session_id"), limit)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"applied_reviews": reviews,
		"count":           len(reviews),
	})
}

// handleGetApplied returns one applied review with its final document
func (s *Server) handleGetApplied(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "review history is not configured")
		return
	}

	idStr := r.PathValue("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		s.failure(w, &ErrValidation{Field: "id", Message: "invalid applied review ID"})
		return
	}

	applied, err := s.history.GetAppliedReview(r.Context(), id)
	if err != nil {
		s.failure(w, err)
		return
	}
	if applied == nil {
		s.failure(w, &ErrNotFound{Resource: "applied review", ID: idStr})
		return
	}
	s.jsonResponse(w, http.StatusOK, applied)
}
