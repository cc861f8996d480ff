//nolint:revive // types is a standard Go package name pattern
package types

import "github.com/go-playground/validator/v10"

// Mode selects how a review session obtains its change list.
type Mode string

const (
	// ModeCompute diffs the two documents.
	ModeCompute Mode = "compute"
	// ModeEnrich enriches the collaborator-supplied changes only.
	ModeEnrich Mode = "enrich"
	// ModeMerge enriches supplied changes and adds computed ones not already supplied.
	ModeMerge Mode = "merge"
)

// CreateReviewRequest opens a review session over a document pair.
type CreateReviewRequest struct {
	Previous    map[string]any     `json:"previous" validate:"required"`
	Current     map[string]any     `json:"current" validate:"required"`
	ChangesMade []ChangeDescriptor `json:"changes_made,omitempty" validate:"omitempty,dive"`
	Mode        Mode               `json:"mode,omitempty" validate:"omitempty,oneof=compute enrich merge"`
}

// DecisionRequest records one user decision.
type DecisionRequest struct {
	Section string `json:"section" validate:"required"`
	Index   int    `json:"index" validate:"min=0"`
	Field   string `json:"field"`
	Status  Status `json:"status" validate:"required,oneof=accepted rejected"`
}

// Key returns the decision key addressed by the request.
func (r *DecisionRequest) Key() DecisionKey {
	return DecisionKey{Section: r.Section, Index: r.Index, Field: r.Field}
}

// BulkDecisionRequest is the optional body of the accept-all and reject-all
// routes. OnlyPending restricts the operation to undecided changes.
type BulkDecisionRequest struct {
	OnlyPending bool `json:"only_pending"`
}

// Validate validates the CreateReviewRequest using the validator.
func (r *CreateReviewRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the DecisionRequest using the validator.
func (r *DecisionRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
