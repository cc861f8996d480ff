package apply

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/jonathan/resume-review/internal/db"
	"github.com/jonathan/resume-review/internal/review"
	"github.com/jonathan/resume-review/internal/types"
)

// Recorder stores applied reviews. *db.DB implements it.
type Recorder interface {
	SaveAppliedReview(ctx context.Context, in *db.AppliedReviewInput) (uuid.UUID, error)
}

// Applier resolves the final document of a review and records it.
type Applier struct {
	recorder Recorder
}

// NewApplier returns an applier. With a nil recorder the final document is
// resolved but not stored.
func NewApplier(recorder Recorder) *Applier {
	return &Applier{recorder: recorder}
}

// Apply implements review.Applier. Nothing is recorded unless every rejected
// change could be rolled back.
func (a *Applier) Apply(ctx context.Context, req review.ApplyRequest) (*review.ApplyResult, error) {
	final, err := Resolve(req.Previous, req.Current, req.Records, req.Decisions)
	if err != nil {
		return nil, err
	}
	stats := types.ComputeDecisionStats(req.Decisions)
	result := &review.ApplyResult{Document: final, Stats: stats}

	if a.recorder == nil {
		return result, nil
	}

	id, err := a.recorder.SaveAppliedReview(ctx, &db.AppliedReviewInput{
		SessionID: req.SessionID,
		Document:  final,
		Decisions: req.Decisions,
		Stats:     stats,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record applied review: %w", err)
	}
	result.ReviewID = id.String()
	log.Printf("[apply] review %s stored as %s (%d accepted, %d rejected)",
		req.SessionID, result.ReviewID, stats.Accepted, stats.Rejected)
	return result, nil
}
