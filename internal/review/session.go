package review

import (
	"context"
	"log"
	"time"

	"github.com/jonathan/resume-review/internal/diff"
	"github.com/jonathan/resume-review/internal/resume"
	"github.com/jonathan/resume-review/internal/types"
)

// SectionOrder is the display order of sections offered for interactive review.
var SectionOrder = []string{
	resume.SectionSummary,
	resume.SectionExperience,
	resume.SectionProjects,
	resume.SectionSkills,
	resume.SectionExtras,
	resume.SectionLanguages,
}

func isGrouped(section string) bool {
	for _, s := range SectionOrder {
		if s == section {
			return true
		}
	}
	return false
}

// SectionGroup is the change records of one section in display order.
type SectionGroup struct {
	Section string               `json:"section"`
	Changes []types.ChangeRecord `json:"changes"`
}

// Options configures a new session.
type Options struct {
	ID          string
	Mode        types.Mode
	ChangesMade []types.ChangeDescriptor
	Diff        diff.Options
}

// Session reviews one previous/current document pair. It owns the change
// records and the decision tracker; records are recomputed whenever the
// documents change while decisions are kept.
type Session struct {
	id        string
	mode      types.Mode
	previous  resume.Document
	current   resume.Document
	supplied  []types.ChangeDescriptor
	diffOpts  diff.Options
	records   []types.ChangeRecord
	tracker   *Tracker
	createdAt time.Time
}

// NewSession computes the change set for a document pair. Supplied changes
// that already carry an accepted or rejected status seed the tracker.
func NewSession(previous, current resume.Document, opts Options) *Session {
	mode := opts.Mode
	if mode == "" {
		mode = types.ModeCompute
		if len(opts.ChangesMade) > 0 {
			mode = types.ModeEnrich
		}
	}
	s := &Session{
		id:        opts.ID,
		mode:      mode,
		previous:  previous,
		current:   current,
		supplied:  opts.ChangesMade,
		diffOpts:  opts.Diff,
		tracker:   NewTracker(nil),
		createdAt: time.Now().UTC(),
	}
	s.recompute()
	for _, r := range s.records {
		if r.Status.Decided() {
			s.tracker.set(r.Key(), r.Status)
		}
	}
	log.Printf("[review] session %s: %d changes (%s mode)", s.id, len(s.records), s.mode)
	return s
}

func (s *Session) recompute() {
	var raw []types.ChangeDescriptor
	switch s.mode {
	case types.ModeEnrich:
		raw = s.supplied
	case types.ModeMerge:
		raw = diff.Merge(s.supplied, diff.Compute(s.previous, s.current, s.diffOpts))
	default:
		raw = diff.Compute(s.previous, s.current, s.diffOpts)
	}
	s.records = diff.Enrich(raw, s.previous, s.current)
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Mode returns how the change list is obtained.
func (s *Session) Mode() types.Mode { return s.mode }

// Documents returns the document pair under review.
func (s *Session) Documents() (previous, current resume.Document) {
	return s.previous, s.current
}

// SetDocuments replaces the document pair and recomputes the change set.
// Decisions are kept; they apply again wherever their keys reappear.
func (s *Session) SetDocuments(previous, current resume.Document) {
	s.previous, s.current = previous, current
	s.recompute()
	log.Printf("[review] session %s recomputed: %d changes", s.id, len(s.records))
}

// Records returns every change record with its current status.
func (s *Session) Records() []types.ChangeRecord {
	out := make([]types.ChangeRecord, len(s.records))
	for i, r := range s.records {
		out[i] = s.withStatus(r)
	}
	return out
}

func (s *Session) withStatus(r types.ChangeRecord) types.ChangeRecord {
	r.Status = s.tracker.Status(r.Key())
	r.ReviewedAt = nil
	if at, ok := s.tracker.ReviewedAt(r.Key()); ok && r.Status.Decided() {
		r.ReviewedAt = &at
	}
	return r
}

// reviewable returns the records offered for interactive review.
func (s *Session) reviewable() []types.ChangeRecord {
	var out []types.ChangeRecord
	for _, r := range s.records {
		if isGrouped(r.Section) {
			out = append(out, r)
		}
	}
	return out
}

// Grouped returns the reviewable records grouped by section in display
// order. Sections without changes are omitted.
func (s *Session) Grouped() []SectionGroup {
	bySection := make(map[string][]types.ChangeRecord)
	for _, r := range s.records {
		if isGrouped(r.Section) {
			bySection[r.Section] = append(bySection[r.Section], s.withStatus(r))
		}
	}
	groups := make([]SectionGroup, 0, len(bySection))
	for _, section := range SectionOrder {
		if changes := bySection[section]; len(changes) > 0 {
			groups = append(groups, SectionGroup{Section: section, Changes: changes})
		}
	}
	return groups
}

// Ungrouped returns records reported for information only, such as header
// and education changes.
func (s *Session) Ungrouped() []types.ChangeRecord {
	var out []types.ChangeRecord
	for _, r := range s.records {
		if !isGrouped(r.Section) {
			out = append(out, s.withStatus(r))
		}
	}
	return out
}

// Decision returns the decision for a change; ok is false while it is pending.
func (s *Session) Decision(section string, index int, field string) (types.Status, bool) {
	return s.tracker.Decision(types.DecisionKey{Section: section, Index: index, Field: field})
}

// Decide records a decision. The section must be known to the document
// model or present in the change set.
func (s *Session) Decide(key types.DecisionKey, status types.Status) error {
	if !s.knownSection(key.Section) {
		return &DecisionError{Message: "unknown section " + key.Section}
	}
	return s.tracker.Decide(key, status)
}

func (s *Session) knownSection(section string) bool {
	switch section {
	case resume.SectionHeader, resume.SectionSummary, resume.SectionSkills, resume.SectionExperience,
		resume.SectionEducation, resume.SectionLanguages, resume.SectionProjects, resume.SectionExtras:
		return true
	}
	for _, r := range s.records {
		if r.Section == section {
			return true
		}
	}
	return false
}

// Accept accepts one change.
func (s *Session) Accept(key types.DecisionKey) error {
	return s.Decide(key, types.StatusAccepted)
}

// Reject rejects one change.
func (s *Session) Reject(key types.DecisionKey) error {
	return s.Decide(key, types.StatusRejected)
}

// Toggle flips one decision and returns the new status.
func (s *Session) Toggle(key types.DecisionKey) (types.Status, error) {
	if !s.knownSection(key.Section) {
		return "", &DecisionError{Message: "unknown section " + key.Section}
	}
	return s.tracker.Toggle(key), nil
}

// AcceptAll accepts every reviewable change.
func (s *Session) AcceptAll() { s.tracker.AcceptAll(s.reviewable()) }

// RejectAll rejects every reviewable change.
func (s *Session) RejectAll() { s.tracker.RejectAll(s.reviewable()) }

// AcceptRemaining accepts reviewable changes that are still pending.
func (s *Session) AcceptRemaining() { s.tracker.AcceptRemaining(s.reviewable()) }

// RejectRemaining rejects reviewable changes that are still pending.
func (s *Session) RejectRemaining() { s.tracker.RejectRemaining(s.reviewable()) }

// AcceptAllInSection accepts every change of one section.
func (s *Session) AcceptAllInSection(section string) error {
	if !s.knownSection(section) {
		return &DecisionError{Message: "unknown section " + section}
	}
	s.tracker.AcceptAllInSection(section, s.records)
	return nil
}

// RejectAllInSection rejects every change of one section.
func (s *Session) RejectAllInSection(section string) error {
	if !s.knownSection(section) {
		return &DecisionError{Message: "unknown section " + section}
	}
	s.tracker.RejectAllInSection(section, s.records)
	return nil
}

// Reset clears every decision.
func (s *Session) Reset() { s.tracker.Reset() }

// Stats summarizes decisions over the reviewable changes.
func (s *Session) Stats() types.ReviewStats {
	return s.tracker.Stats(s.reviewable())
}

// Progress reports review progress over the reviewable changes.
func (s *Session) Progress() types.Progress {
	return types.NewProgress(len(s.reviewable()), s.Stats().Reviewed)
}

// IsAllReviewed reports whether every reviewable change has a decision.
func (s *Session) IsAllReviewed() bool {
	return s.tracker.IsAllReviewed(s.reviewable())
}

// UngroupedPending counts informational changes that have no decision. They
// are outside Progress but are still applied as accepted on export.
func (s *Session) UngroupedPending() int {
	n := 0
	for _, r := range s.records {
		if !isGrouped(r.Section) && !s.tracker.Status(r.Key()).Decided() {
			n++
		}
	}
	return n
}

// Export returns the decision map handed to the apply step. It covers every
// current change; pending changes are exported as accepted.
func (s *Session) Export() types.DecisionMap {
	return s.tracker.Export(s.records)
}

// Apply hands the exported decisions to the applier. On failure the session
// and its decisions are unchanged so the call can be retried.
func (s *Session) Apply(ctx context.Context, applier Applier) (*ApplyResult, error) {
	req := ApplyRequest{
		SessionID: s.id,
		Previous:  s.previous,
		Current:   s.current,
		Records:   s.Records(),
		Decisions: s.Export(),
	}
	result, err := applier.Apply(ctx, req)
	if err != nil {
		log.Printf("[review] session %s: apply failed: %v", s.id, err)
		return nil, &ApplyError{Message: "failed to apply decisions", Cause: err}
	}
	log.Printf("[review] session %s applied: %d accepted, %d rejected",
		s.id, result.Stats.Accepted, result.Stats.Rejected)
	return result, nil
}
