// Package review tracks accept/reject decisions over a change set and exposes
// the review session used by the CLI and HTTP API.
package review

import (
	"time"

	"github.com/jonathan/resume-review/internal/types"
)

// Tracker maps decision keys to accepted or rejected. It keeps no reference
// to change records, so decisions survive change-set recomputation as long
// as the keys stay stable. A Tracker is not safe for concurrent use.
type Tracker struct {
	decisions  types.DecisionMap
	reviewedAt map[types.DecisionKey]time.Time
	now        func() time.Time
}

// NewTracker returns a tracker seeded with a copy of initial.
func NewTracker(initial types.DecisionMap) *Tracker {
	t := &Tracker{
		decisions:  make(types.DecisionMap, len(initial)),
		reviewedAt: make(map[types.DecisionKey]time.Time),
		now:        time.Now,
	}
	for k, v := range initial {
		if v.Decided() {
			t.decisions[k] = v
		}
	}
	return t
}

// Decide records a decision, replacing any earlier one for the key.
func (t *Tracker) Decide(key types.DecisionKey, status types.Status) error {
	if !status.Decided() {
		return &DecisionError{Message: "status must be accepted or rejected, got " + string(status)}
	}
	t.set(key, status)
	return nil
}

func (t *Tracker) set(key types.DecisionKey, status types.Status) {
	t.decisions[key] = status
	t.reviewedAt[key] = t.now().UTC()
}

// Decision returns the decision for key; ok is false while it is pending.
func (t *Tracker) Decision(key types.DecisionKey) (status types.Status, ok bool) {
	status, ok = t.decisions[key]
	return status, ok
}

// Status returns the decision for key, or pending.
func (t *Tracker) Status(key types.DecisionKey) types.Status {
	if s, ok := t.decisions[key]; ok {
		return s
	}
	return types.StatusPending
}

// ReviewedAt returns when key was last decided.
func (t *Tracker) ReviewedAt(key types.DecisionKey) (time.Time, bool) {
	at, ok := t.reviewedAt[key]
	return at, ok
}

// AcceptAll accepts every record, overwriting their earlier decisions.
// Decisions on keys outside records are left untouched.
func (t *Tracker) AcceptAll(records []types.ChangeRecord) {
	t.bulk(records, types.StatusAccepted, "", false)
}

// RejectAll rejects every record, overwriting their earlier decisions.
func (t *Tracker) RejectAll(records []types.ChangeRecord) {
	t.bulk(records, types.StatusRejected, "", false)
}

// AcceptAllInSection accepts every record of one section.
func (t *Tracker) AcceptAllInSection(section string, records []types.ChangeRecord) {
	t.bulk(records, types.StatusAccepted, section, false)
}

// RejectAllInSection rejects every record of one section.
func (t *Tracker) RejectAllInSection(section string, records []types.ChangeRecord) {
	t.bulk(records, types.StatusRejected, section, false)
}

// AcceptRemaining accepts only records that are still pending.
func (t *Tracker) AcceptRemaining(records []types.ChangeRecord) {
	t.bulk(records, types.StatusAccepted, "", true)
}

// RejectRemaining rejects only records that are still pending.
func (t *Tracker) RejectRemaining(records []types.ChangeRecord) {
	t.bulk(records, types.StatusRejected, "", true)
}

func (t *Tracker) bulk(records []types.ChangeRecord, status types.Status, section string, onlyPending bool) {
	for _, r := range records {
		if section != "" && r.Section != section {
			continue
		}
		key := r.Key()
		if _, decided := t.decisions[key]; decided && onlyPending {
			continue
		}
		t.set(key, status)
	}
}

// Toggle flips accepted and rejected; a pending key becomes accepted.
func (t *Tracker) Toggle(key types.DecisionKey) types.Status {
	next := types.StatusAccepted
	if t.decisions[key] == types.StatusAccepted {
		next = types.StatusRejected
	}
	t.set(key, next)
	return next
}

// Reset clears every decision.
func (t *Tracker) Reset() {
	t.decisions = make(types.DecisionMap)
	t.reviewedAt = make(map[types.DecisionKey]time.Time)
}

// Stats counts decisions over the given records only.
func (t *Tracker) Stats(records []types.ChangeRecord) types.ReviewStats {
	var stats types.ReviewStats
	for _, r := range records {
		switch t.decisions[r.Key()] {
		case types.StatusAccepted:
			stats.Accepted++
		case types.StatusRejected:
			stats.Rejected++
		default:
			continue
		}
		stats.Reviewed++
	}
	return stats
}

// IsAllReviewed reports whether every record has a decision.
func (t *Tracker) IsAllReviewed(records []types.ChangeRecord) bool {
	return t.Stats(records).Reviewed == len(records)
}

// Decisions returns a copy of every recorded decision, including keys that
// are not part of the current change set.
func (t *Tracker) Decisions() types.DecisionMap {
	return t.decisions.Clone()
}

// Export returns the decision for every record, treating pending as
// accepted: unreviewed changes are applied, not dropped.
func (t *Tracker) Export(records []types.ChangeRecord) types.DecisionMap {
	out := make(types.DecisionMap, len(records))
	for _, r := range records {
		key := r.Key()
		if s, ok := t.decisions[key]; ok {
			out[key] = s
		} else {
			out[key] = types.StatusAccepted
		}
	}
	return out
}
