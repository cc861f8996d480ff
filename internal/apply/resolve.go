// Package apply builds the final document from a review: every rejected
// change is rolled back on a copy of the current document, and the result is
// optionally persisted.
package apply

import (
	"sort"

	"github.com/jonathan/resume-review/internal/docpath"
	"github.com/jonathan/resume-review/internal/resume"
	"github.com/jonathan/resume-review/internal/types"
)

type phase int

const (
	phaseField phase = iota
	phaseItem
	phaseRemoveEntry
	phaseAppendEntry
)

// Resolve returns a copy of current with every rejected change reverted.
// Accepted and pending changes are kept. Neither input document is mutated.
//
// Rollbacks run in an order that keeps indexed paths valid: field restores,
// then keyed collection edits, then removal of added experience entries from
// the highest index down, then re-appended experience entries.
func Resolve(previous, current resume.Document, records []types.ChangeRecord, decisions types.DecisionMap) (resume.Document, error) {
	out := resume.CloneDocument(current)
	if out == nil {
		out = resume.Document{}
	}

	buckets := make(map[phase][]types.ChangeRecord)
	for _, r := range records {
		if decisions[r.Key()] != types.StatusRejected {
			continue
		}
		p := phaseOf(r, out)
		buckets[p] = append(buckets[p], r)
		if r.ChangeType == types.ChangeMoveToProjects {
			buckets[phaseItem] = append(buckets[phaseItem], r)
		}
	}

	for _, r := range buckets[phaseField] {
		if err := restoreField(out, r); err != nil {
			return nil, err
		}
	}
	for _, r := range buckets[phaseItem] {
		if err := rollbackItem(previous, out, r); err != nil {
			return nil, err
		}
	}

	removals := buckets[phaseRemoveEntry]
	sort.SliceStable(removals, func(i, j int) bool {
		return entryIndex(removals[i]) > entryIndex(removals[j])
	})
	for _, r := range removals {
		idx := entryIndex(r)
		if idx < 0 {
			return nil, &RollbackError{ChangeID: r.ID, Path: r.Path, Message: "added experience has no index"}
		}
		if err := docpath.Delete(out, docpath.Join(resume.SectionExperience, idx)); err != nil {
			return nil, &RollbackError{ChangeID: r.ID, Path: r.Path, Message: "cannot remove experience", Cause: err}
		}
	}

	for _, r := range buckets[phaseAppendEntry] {
		// non-object entries are restored exactly as they were
		entry := r.BeforeValue
		if entry == nil {
			return nil, &RollbackError{ChangeID: r.ID, Path: r.Path, Message: "removed experience has no previous value"}
		}
		list := append(resume.List(out[resume.SectionExperience]), resume.Clone(entry))
		out[resume.SectionExperience] = list
	}

	return out, nil
}

func phaseOf(r types.ChangeRecord, doc resume.Document) phase {
	switch r.ChangeType {
	case types.ChangeExperienceAdded:
		return phaseRemoveEntry
	case types.ChangeExperienceRemoved, types.ChangeMoveToProjects:
		return phaseAppendEntry
	case types.ChangeAdded, types.ChangeRemoved, types.ChangeLevelAdjusted:
		return phaseItem
	}
	if r.ItemValue != nil {
		if _, isList := getList(doc, r.Path); isList {
			return phaseItem
		}
	}
	return phaseField
}

func getList(doc resume.Document, path string) ([]any, bool) {
	v, ok := docpath.Get(doc, path)
	if !ok {
		return nil, false
	}
	list, isList := v.([]any)
	return list, isList
}

func restoreField(doc resume.Document, r types.ChangeRecord) error {
	var err error
	if r.BeforeValue == nil {
		err = docpath.Delete(doc, r.Path)
	} else {
		err = docpath.Set(doc, r.Path, resume.Clone(r.BeforeValue))
	}
	if err != nil {
		return &RollbackError{ChangeID: r.ID, Path: r.Path, Message: "cannot restore field", Cause: err}
	}
	return nil
}

// entryIndex returns the experience index an entity-level record addresses, or -1.
func entryIndex(r types.ChangeRecord) int {
	if r.ExpIndex != nil {
		return *r.ExpIndex
	}
	segs := docpath.Parse(r.Path)
	if len(segs) == 2 && segs[1].IsIndex {
		return segs[1].Index
	}
	return -1
}
