package diff

import (
	"github.com/google/uuid"

	"github.com/jonathan/resume-review/internal/compare"
	"github.com/jonathan/resume-review/internal/docpath"
	"github.com/jonathan/resume-review/internal/resume"
	"github.com/jonathan/resume-review/internal/types"
)

// NewChangeID returns an opaque record id of the form change_xxxxxxxx.
func NewChangeID() string {
	return "change_" + uuid.NewString()[:8]
}

// Enricher turns raw descriptors into change records.
type Enricher struct {
	// NewID generates record ids; NewChangeID when nil.
	NewID func() string
}

// Enrich enriches with the default Enricher.
func Enrich(raw []types.ChangeDescriptor, before, after resume.Document) []types.ChangeRecord {
	return Enricher{}.Enrich(raw, before, after)
}

// Enrich resolves missing before/after values through each descriptor's path,
// derives display strings and assigns ids and section-scoped indexes. Ids
// already supplied are kept unless they collide within the pass; every other
// record gets a fresh id, so two passes never share generated ids.
func (e Enricher) Enrich(raw []types.ChangeDescriptor, before, after resume.Document) []types.ChangeRecord {
	newID := e.NewID
	if newID == nil {
		newID = NewChangeID
	}

	records := make([]types.ChangeRecord, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	sectionIndex := make(map[string]int)

	for _, d := range raw {
		d = e.resolve(d, before, after)

		if d.ID == "" || seen[d.ID] {
			d.ID = newID()
			for seen[d.ID] {
				d.ID = newID()
			}
		}
		seen[d.ID] = true

		if !d.Status.Decided() {
			d.Status = types.StatusPending
		}

		idx := sectionIndex[d.Section]
		sectionIndex[d.Section] = idx + 1

		records = append(records, types.ChangeRecord{ChangeDescriptor: d, Index: idx})
	}
	return records
}

func (e Enricher) resolve(d types.ChangeDescriptor, before, after resume.Document) types.ChangeDescriptor {
	d.Path = d.ResolvedPath()
	d.ChangeType = d.ResolvedType()
	if d.Change == "" {
		d.Change = defaultSentence(d)
	}

	switch d.ChangeType {
	case types.ChangeExperienceRemoved:
		if d.BeforeValue == nil {
			d.BeforeValue, _ = docpath.Get(before, d.Path)
		}
		d.AfterValue = nil
		exp := resume.ExperienceOf(d.BeforeValue)
		d.BeforeDisplay = orDefault(d.BeforeDisplay, exp.Label())
		d.AfterDisplay = ""
		return d

	case types.ChangeMoveToProjects:
		if d.BeforeValue == nil {
			d.BeforeValue, _ = docpath.Get(before, d.Path)
		}
		d.AfterValue = nil
		exp := resume.ExperienceOf(d.BeforeValue)
		project := resume.ProjectOf(d.ProjectData)
		name := project.Name
		if name == "" {
			name = orUntitled(exp.Title)
		}
		d.BeforeDisplay = orDefault(d.BeforeDisplay, "Experience: "+orUntitled(exp.Title))
		d.AfterDisplay = orDefault(d.AfterDisplay, "Project: "+name)
		return d

	case types.ChangeExperienceAdded:
		if d.AfterValue == nil {
			d.AfterValue, _ = docpath.Get(after, d.Path)
		}
		d.BeforeValue = nil
		d.BeforeDisplay = ""
		d.AfterDisplay = orDefault(d.AfterDisplay, resume.ExperienceOf(d.AfterValue).Label())
		return d
	}

	if d.BeforeValue == nil && d.ChangeType != types.ChangeAdded {
		d.BeforeValue, _ = docpath.Get(before, d.Path)
	}
	if d.AfterValue == nil && d.ChangeType != types.ChangeRemoved {
		d.AfterValue, _ = docpath.Get(after, d.Path)
	}
	d.BeforeDisplay = orDefault(d.BeforeDisplay, compare.FormatForDisplay(d.BeforeValue))
	d.AfterDisplay = orDefault(d.AfterDisplay, compare.FormatForDisplay(d.AfterValue))
	return d
}

func orDefault(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
