package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-review/internal/types"
)

// AppliedReviewInput is the data persisted when a review is applied
type AppliedReviewInput struct {
	SessionID string
	Document  map[string]any
	Decisions types.DecisionMap
	Stats     types.DecisionStats
}

// AppliedReview is a stored review outcome
type AppliedReview struct {
	ID        uuid.UUID           `json:"id"`
	SessionID string              `json:"session_id"`
	Document  map[string]any      `json:"final_document"`
	Decisions types.DecisionMap   `json:"decisions"`
	Stats     types.DecisionStats `json:"stats"`
	Accepted  int                 `json:"accepted"`
	Rejected  int                 `json:"rejected"`
	CreatedAt time.Time           `json:"created_at"`
}

// AppliedReviewSummary is a lightweight view of an applied review for listing
type AppliedReviewSummary struct {
	ID        uuid.UUID `json:"id"`
	SessionID string    `json:"session_id"`
	Accepted  int       `json:"accepted"`
	Rejected  int       `json:"rejected"`
	CreatedAt time.Time `json:"created_at"`
}
