//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Status is the review state of a change.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Decided reports whether s is a final user decision.
func (s Status) Decided() bool {
	return s == StatusAccepted || s == StatusRejected
}

// DecisionKey addresses a change across re-renders: its section, its original
// position within that section's change list, and its field.
type DecisionKey struct {
	Section string
	Index   int
	Field   string
}

// String renders the key as "section:index:field".
func (k DecisionKey) String() string {
	return k.Section + ":" + strconv.Itoa(k.Index) + ":" + k.Field
}

// MarshalText lets DecisionKey be used as a JSON object key.
func (k DecisionKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses "section:index:field". The field may itself contain colons.
func (k *DecisionKey) UnmarshalText(text []byte) error {
	parsed, err := ParseDecisionKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseDecisionKey parses the "section:index:field" form.
func ParseDecisionKey(s string) (DecisionKey, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 || parts[0] == "" {
		return DecisionKey{}, fmt.Errorf("invalid decision key %q: expected section:index:field", s)
	}
	idx, err := strconv.Atoi(parts[1])
	if err != nil || idx < 0 {
		return DecisionKey{}, fmt.Errorf("invalid decision key %q: bad index", s)
	}
	key := DecisionKey{Section: parts[0], Index: idx}
	if len(parts) == 3 {
		key.Field = parts[2]
	}
	return key, nil
}

// DecisionMap maps decision keys to accepted or rejected. Absent keys are pending.
type DecisionMap map[DecisionKey]Status

// Clone returns an independent copy of the map.
func (m DecisionMap) Clone() DecisionMap {
	out := make(DecisionMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ReviewStats summarizes decisions over the current change set.
type ReviewStats struct {
	Reviewed int `json:"reviewed"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// Progress reports how far a review has advanced.
type Progress struct {
	Total           int `json:"total"`
	Reviewed        int `json:"reviewed"`
	Pending         int `json:"pending"`
	PercentComplete int `json:"percent_complete"`
}

// NewProgress derives progress from totals. An empty change set is complete.
func NewProgress(total, reviewed int) Progress {
	p := Progress{Total: total, Reviewed: reviewed, Pending: total - reviewed, PercentComplete: 100}
	if total > 0 {
		p.PercentComplete = int(math.Round(float64(reviewed) * 100 / float64(total)))
	}
	return p
}

// SectionStats counts decisions for one section.
type SectionStats struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// DecisionStats summarizes an exported decision map.
type DecisionStats struct {
	Total       int                     `json:"total"`
	Accepted    int                     `json:"accepted"`
	Rejected    int                     `json:"rejected"`
	AcceptRatio float64                 `json:"accept_ratio"`
	BySection   map[string]SectionStats `json:"by_section"`
}

// ComputeDecisionStats counts accepted and rejected decisions overall and per section.
// AcceptRatio is 1 when there are no decisions.
func ComputeDecisionStats(m DecisionMap) DecisionStats {
	stats := DecisionStats{BySection: make(map[string]SectionStats), AcceptRatio: 1}
	for key, status := range m {
		sec := stats.BySection[key.Section]
		switch status {
		case StatusAccepted:
			stats.Accepted++
			sec.Accepted++
		case StatusRejected:
			stats.Rejected++
			sec.Rejected++
		default:
			continue
		}
		stats.Total++
		stats.BySection[key.Section] = sec
	}
	if stats.Total > 0 {
		stats.AcceptRatio = float64(stats.Accepted) / float64(stats.Total)
	}
	return stats
}
