// Package types provides type definitions for structured data used throughout the resume review system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// ChangeType classifies a single difference between two resume versions.
type ChangeType string

const (
	ChangeAdded             ChangeType = "added"
	ChangeRemoved           ChangeType = "removed"
	ChangeModified          ChangeType = "modified"
	ChangeLevelAdjusted     ChangeType = "level_adjusted"
	ChangeExperienceAdded   ChangeType = "experience_added"
	ChangeExperienceRemoved ChangeType = "experience_removed"
	ChangeMoveToProjects    ChangeType = "move_to_projects"
)

// ChangeTypes lists every known change type.
var ChangeTypes = []ChangeType{
	ChangeAdded, ChangeRemoved, ChangeModified, ChangeLevelAdjusted,
	ChangeExperienceAdded, ChangeExperienceRemoved, ChangeMoveToProjects,
}

// Valid reports whether t is a known change type.
func (t ChangeType) Valid() bool {
	for _, known := range ChangeTypes {
		if t == known {
			return true
		}
	}
	return false
}

// BulletChange is one bullet-level finding inside an aggregate list change.
type BulletChange struct {
	Type        ChangeType `json:"type"`
	Before      string     `json:"before,omitempty"`
	After       string     `json:"after,omitempty"`
	BeforeIndex int        `json:"before_index"`
	AfterIndex  int        `json:"after_index"`
}

// ChangeDescriptor is a raw diff finding. Collaborators that already know what
// they changed may hand these over directly, optionally pre-filling the
// id, display and status fields.
type ChangeDescriptor struct {
	Section     string         `json:"section" validate:"required"`
	Field       string         `json:"field"`
	Path        string         `json:"path"`
	ChangeType  ChangeType     `json:"change_type" validate:"required,oneof=added removed modified level_adjusted experience_added experience_removed move_to_projects"`
	ItemName    string         `json:"item_name,omitempty"`
	BeforeValue any            `json:"before_value,omitempty"`
	AfterValue  any            `json:"after_value,omitempty"`
	ItemValue   any            `json:"item_value,omitempty"`
	ProjectData any            `json:"project_data,omitempty"`
	ExpIndex    *int           `json:"exp_index,omitempty"`
	BulletIndex *int           `json:"bullet_index,omitempty"`
	Bullets     []BulletChange `json:"bullet_changes,omitempty"`
	Change      string         `json:"change"`
	Reason      string         `json:"reason"`

	ID            string `json:"id,omitempty"`
	BeforeDisplay string `json:"before_display,omitempty"`
	AfterDisplay  string `json:"after_display,omitempty"`
	Status        Status `json:"status,omitempty"`
}

// ChangeRecord is an enriched, display-ready change. Index is the record's
// position within its section at enrichment time and, with Section and Field,
// forms its DecisionKey.
type ChangeRecord struct {
	ChangeDescriptor
	Index      int        `json:"index"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}

// Key returns the structural decision key for the record.
func (r ChangeRecord) Key() DecisionKey {
	return DecisionKey{Section: r.Section, Index: r.Index, Field: r.Field}
}

// ResolvedPath returns Path, or the section.field address used when a
// collaborator left it out.
func (d ChangeDescriptor) ResolvedPath() string {
	switch {
	case d.Path != "":
		return d.Path
	case d.Field == "":
		return d.Section
	default:
		return d.Section + "." + d.Field
	}
}

// ResolvedType returns ChangeType, defaulting to modified.
func (d ChangeDescriptor) ResolvedType() ChangeType {
	if d.ChangeType == "" {
		return ChangeModified
	}
	return d.ChangeType
}

// SameFinding reports whether o is the finding d describes. Used to drop
// computed duplicates of collaborator-supplied changes, so missing paths and
// change types are resolved first and an empty ItemName on d matches any item.
func (d ChangeDescriptor) SameFinding(o ChangeDescriptor) bool {
	return d.Section == o.Section && d.Field == o.Field &&
		d.ResolvedPath() == o.ResolvedPath() &&
		d.ResolvedType() == o.ResolvedType() &&
		(d.ItemName == "" || d.ItemName == o.ItemName)
}
