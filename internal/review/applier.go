package review

import (
	"context"

	"github.com/jonathan/resume-review/internal/resume"
	"github.com/jonathan/resume-review/internal/types"
)

// ApplyRequest is everything the apply step needs: the document pair, the
// change records and the exported decisions (pending already filled as accepted).
type ApplyRequest struct {
	SessionID string
	Previous  resume.Document
	Current   resume.Document
	Records   []types.ChangeRecord
	Decisions types.DecisionMap
}

// ApplyResult is the outcome of a successful apply.
type ApplyResult struct {
	ReviewID string              `json:"review_id,omitempty"`
	Document resume.Document     `json:"document"`
	Stats    types.DecisionStats `json:"stats"`
}

// Applier persists a decision set. It must be all-or-nothing: an error means
// nothing was applied.
type Applier interface {
	Apply(ctx context.Context, req ApplyRequest) (*ApplyResult, error)
}

// ApplierFunc adapts a function to the Applier interface.
type ApplierFunc func(ctx context.Context, req ApplyRequest) (*ApplyResult, error)

// Apply calls f.
func (f ApplierFunc) Apply(ctx context.Context, req ApplyRequest) (*ApplyResult, error) {
	return f(ctx, req)
}
