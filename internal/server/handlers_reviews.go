package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-review/internal/review"
	"github.com/jonathan/resume-review/internal/schemas"
	"github.com/jonathan/resume-review/internal/types"
)

const maxBodyBytes = 8 << 20

// ReviewResponse is the full view of a review session
type ReviewResponse struct {
	ID          string                `json:"id"`
	Mode        types.Mode            `json:"mode"`
	Sections    []review.SectionGroup `json:"sections"`
	Ungrouped   []types.ChangeRecord  `json:"ungrouped"`
	Stats       types.ReviewStats     `json:"stats"`
	Progress    types.Progress        `json:"progress"`
	AllReviewed bool                  `json:"all_reviewed"`
}

// DecisionResponse reports the review state after a decision
type DecisionResponse struct {
	Status      types.Status      `json:"status,omitempty"`
	Stats       types.ReviewStats `json:"stats"`
	Progress    types.Progress    `json:"progress"`
	AllReviewed bool              `json:"all_reviewed"`
}

// ExportResponse is the decision map handed to the apply step
type ExportResponse struct {
	Decisions        types.DecisionMap `json:"decisions"`
	AllReviewed      bool              `json:"all_reviewed"`
	Progress         types.Progress    `json:"progress"`
	UngroupedPending int               `json:"ungrouped_pending"`
}

// documentsRequest replaces the document pair of a session
type documentsRequest struct {
	Previous map[string]any `json:"previous" validate:"required"`
	Current  map[string]any `json:"current" validate:"required"`
}

// toggleRequest addresses one change without a status
type toggleRequest struct {
	Section string `json:"section" validate:"required"`
	Index   int    `json:"index" validate:"min=0"`
	Field   string `json:"field"`
}

// rawDocuments keeps the request documents as sent, for schema validation.
type rawDocuments struct {
	Previous    json.RawMessage `json:"previous"`
	Current     json.RawMessage `json:"current"`
	ChangesMade json.RawMessage `json:"changes_made"`
}

func newReviewResponse(sess *review.Session) ReviewResponse {
	ungrouped := sess.Ungrouped()
	if ungrouped == nil {
		ungrouped = []types.ChangeRecord{}
	}
	return ReviewResponse{
		ID:          sess.ID(),
		Mode:        sess.Mode(),
		Sections:    sess.Grouped(),
		Ungrouped:   ungrouped,
		Stats:       sess.Stats(),
		Progress:    sess.Progress(),
		AllReviewed: sess.IsAllReviewed(),
	}
}

func newDecisionResponse(sess *review.Session, status types.Status) DecisionResponse {
	return DecisionResponse{
		Status:      status,
		Stats:       sess.Stats(),
		Progress:    sess.Progress(),
		AllReviewed: sess.IsAllReviewed(),
	}
}

// readBody reads the request body and decodes it into each target.
func readBody(r *http.Request, targets ...any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return &ErrValidation{Message: "failed to read request body: " + err.Error()}
	}
	for _, t := range targets {
		if err := json.Unmarshal(body, t); err != nil {
			return &ErrValidation{Message: "invalid request body: " + err.Error()}
		}
	}
	return nil
}

// validateDocuments checks the raw documents (and supplied changes) against
// the bundled schemas concurrently.
func validateDocuments(raw rawDocuments) error {
	var g errgroup.Group
	g.Go(func() error { return schemaCheck("previous", schemas.ValidateResume, raw.Previous) })
	g.Go(func() error { return schemaCheck("current", schemas.ValidateResume, raw.Current) })
	if len(raw.ChangesMade) > 0 && string(raw.ChangesMade) != "null" {
		g.Go(func() error { return schemaCheck("changes_made", schemas.ValidateChanges, raw.ChangesMade) })
	}
	return g.Wait()
}

func schemaCheck(field string, validate func([]byte) error, data json.RawMessage) error {
	err := validate(data)
	var ve *schemas.ValidationError
	if errors.As(err, &ve) && len(ve.Errors) > 0 {
		first := ve.Errors[0]
		return &ErrValidation{Field: field + "." + first.Field, Message: first.Message}
	}
	return err
}

// loadSession restores the session named by the {id} path value.
func (s *Server) loadSession(r *http.Request) (*review.Session, error) {
	id := r.PathValue("id")
	if id == "" {
		return nil, &ErrValidation{Field: "id", Message: "review id is required"}
	}
	snap, err := s.store.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	return review.Restore(snap, s.diffOpts), nil
}

func (s *Server) saveSession(r *http.Request, sess *review.Session) error {
	return s.store.Put(r.Context(), sess.Snapshot())
}

// updateSession runs mutate against the stored session as one atomic
// read-modify-write, so concurrent decisions on the same review are never
// lost. mutate may run more than once if the store retries.
func (s *Server) updateSession(r *http.Request, mutate func(*review.Session) error) (*review.Session, error) {
	id := r.PathValue("id")
	if id == "" {
		return nil, &ErrValidation{Field: "id", Message: "review id is required"}
	}
	unlock := s.locks.lock(id)
	defer unlock()

	var sess *review.Session
	_, err := s.store.Update(r.Context(), id, func(snap *review.Snapshot) error {
		sess = review.Restore(snap, s.diffOpts)
		if err := mutate(sess); err != nil {
			return err
		}
		*snap = *sess.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// handleCreateReview diffs a document pair and opens a review session
func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var req types.CreateReviewRequest
	var raw rawDocuments
	if err := readBody(r, &req, &raw); err != nil {
		s.failure(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.failure(w, err)
		return
	}
	if err := validateDocuments(raw); err != nil {
		s.failure(w, err)
		return
	}

	sess := review.NewSession(req.Previous, req.Current, review.Options{
		ID:          uuid.NewString(),
		Mode:        req.Mode,
		ChangesMade: req.ChangesMade,
		Diff:        s.diffOpts,
	})
	if err := s.saveSession(r, sess); err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, newReviewResponse(sess))
}

// handleGetReview returns the grouped change records with their statuses
func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, newReviewResponse(sess))
}

// handleDeleteReview discards an in-flight review
func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	unlock := s.locks.lock(r.PathValue("id"))
	defer unlock()

	if _, err := s.loadSession(r); err != nil {
		s.failure(w, err)
		return
	}
	if err := s.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.failure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReplaceDocuments swaps in a new document pair and recomputes the
// change set; decisions carry over by key
func (s *Server) handleReplaceDocuments(w http.ResponseWriter, r *http.Request) {
	var req documentsRequest
	var raw rawDocuments
	if err := readBody(r, &req, &raw); err != nil {
		s.failure(w, err)
		return
	}
	if err := validator.New().Struct(&req); err != nil {
		s.failure(w, err)
		return
	}
	raw.ChangesMade = nil
	if err := validateDocuments(raw); err != nil {
		s.failure(w, err)
		return
	}

	sess, err := s.updateSession(r, func(sess *review.Session) error {
		sess.SetDocuments(req.Previous, req.Current)
		return nil
	})
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, newReviewResponse(sess))
}

// handleDecide records one accept or reject decision
func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request) {
	var req types.DecisionRequest
	if err := readBody(r, &req); err != nil {
		s.failure(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.failure(w, err)
		return
	}
	sess, err := s.updateSession(r, func(sess *review.Session) error {
		return sess.Decide(req.Key(), req.Status)
	})
	s.respondDecision(w, sess, req.Status, err)
}

// handleToggle flips one decision
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := readBody(r, &req); err != nil {
		s.failure(w, err)
		return
	}
	if err := validator.New().Struct(&req); err != nil {
		s.failure(w, err)
		return
	}
	var status types.Status
	sess, err := s.updateSession(r, func(sess *review.Session) (err error) {
		status, err = sess.Toggle(types.DecisionKey{Section: req.Section, Index: req.Index, Field: req.Field})
		return err
	})
	s.respondDecision(w, sess, status, err)
}

// bulkOptions decodes the optional accept-all/reject-all body.
func bulkOptions(r *http.Request) (types.BulkDecisionRequest, error) {
	var req types.BulkDecisionRequest
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		return req, &ErrValidation{Message: "invalid request body: " + err.Error()}
	}
	return req, nil
}

func (s *Server) handleAcceptAll(w http.ResponseWriter, r *http.Request) {
	s.bulk(w, r, (*review.Session).AcceptAll, (*review.Session).AcceptRemaining)
}

func (s *Server) handleRejectAll(w http.ResponseWriter, r *http.Request) {
	s.bulk(w, r, (*review.Session).RejectAll, (*review.Session).RejectRemaining)
}

// bulk applies all, or remaining when only_pending is set, to every reviewable change.
func (s *Server) bulk(w http.ResponseWriter, r *http.Request, all, remaining func(*review.Session)) {
	opts, err := bulkOptions(r)
	if err != nil {
		s.failure(w, err)
		return
	}
	op := all
	if opts.OnlyPending {
		op = remaining
	}
	sess, err := s.updateSession(r, func(sess *review.Session) error {
		op(sess)
		return nil
	})
	s.respondDecision(w, sess, "", err)
}

func (s *Server) handleSectionAcceptAll(w http.ResponseWriter, r *http.Request) {
	s.sectionBulk(w, r, (*review.Session).AcceptAllInSection)
}

func (s *Server) handleSectionRejectAll(w http.ResponseWriter, r *http.Request) {
	s.sectionBulk(w, r, (*review.Session).RejectAllInSection)
}

func (s *Server) sectionBulk(w http.ResponseWriter, r *http.Request, op func(*review.Session, string) error) {
	section := r.PathValue("section")
	sess, err := s.updateSession(r, func(sess *review.Session) error {
		return op(sess, section)
	})
	s.respondDecision(w, sess, "", err)
}

// handleReset clears every decision
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, err := s.updateSession(r, func(sess *review.Session) error {
		sess.Reset()
		return nil
	})
	s.respondDecision(w, sess, "", err)
}

func (s *Server) respondDecision(w http.ResponseWriter, sess *review.Session, status types.Status, err error) {
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, newDecisionResponse(sess, status))
}

// handleExport returns the decision map with pending changes filled as accepted
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ExportResponse{
		Decisions:        sess.Export(),
		AllReviewed:      sess.IsAllReviewed(),
		Progress:         sess.Progress(),
		UngroupedPending: sess.UngroupedPending(),
	})
}

// handleApply hands the exported decisions to the applier. A failed apply
// keeps the session so the client can retry.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	unlock := s.locks.lock(r.PathValue("id"))
	defer unlock()

	sess, err := s.loadSession(r)
	if err != nil {
		s.failure(w, err)
		return
	}
	result, err := sess.Apply(r.Context(), s.applier)
	if err != nil {
		s.failure(w, err)
		return
	}
	if err := s.store.Delete(r.Context(), sess.ID()); err != nil {
		log.Printf("[server] review %s applied but snapshot not removed: %v", sess.ID(), err)
	}
	s.jsonResponse(w, http.StatusOK, result)
}
