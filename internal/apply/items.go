package apply

import (
	"github.com/jonathan/resume-review/internal/docpath"
	"github.com/jonathan/resume-review/internal/resume"
	"github.com/jonathan/resume-review/internal/types"
)

// normalizerFor returns the key function the diff used for a section's collections.
func normalizerFor(section string) resume.Normalizer {
	switch section {
	case resume.SectionLanguages:
		return resume.NormalizeLanguage
	case resume.SectionEducation:
		return resume.NormalizeEducation
	case resume.SectionExtras, resume.SectionProjects:
		return resume.NormalizeNamed
	}
	return resume.NormalizeSkill
}

// rollbackItem reverts one element-level change on the list at r.Path.
func rollbackItem(previous, doc resume.Document, r types.ChangeRecord) error {
	if r.ChangeType == types.ChangeMoveToProjects {
		return removeMovedProject(doc, r)
	}

	normalize := normalizerFor(r.Section)
	list, _ := getList(doc, r.Path)
	key := itemKey(r, normalize)
	if key == "" {
		return &RollbackError{ChangeID: r.ID, Path: r.Path, Message: "change does not identify an element"}
	}

	var next []any
	switch r.ChangeType {
	case types.ChangeAdded:
		next = make([]any, 0, len(list))
		for _, el := range list {
			if normalize(el).Key != key {
				next = append(next, el)
			}
		}

	case types.ChangeRemoved:
		next = list
		if indexOf(list, key, normalize) < 0 {
			restored := r.ItemValue
			if restored == nil {
				restored = r.BeforeValue
			}
			next = append(append([]any(nil), list...), resume.Clone(restored))
		}

	case types.ChangeLevelAdjusted:
		next = append([]any(nil), list...)
		if i := indexOf(next, key, normalize); i >= 0 {
			next[i] = restoreLevel(previous, r, next[i], key, normalize)
		}

	default:
		next = append([]any(nil), list...)
		if i := indexOf(next, key, normalize); i >= 0 {
			if before := previousItem(previous, r.Path, key, normalize); before != nil {
				next[i] = before
			} else if r.BeforeValue != nil {
				next[i] = resume.Clone(r.BeforeValue)
			}
		}
	}

	if err := docpath.Set(doc, r.Path, next); err != nil {
		return &RollbackError{ChangeID: r.ID, Path: r.Path, Message: "cannot write collection", Cause: err}
	}
	return nil
}

// itemKey derives the comparison key of the element a record is about.
func itemKey(r types.ChangeRecord, normalize resume.Normalizer) string {
	candidates := []any{r.ItemValue}
	switch r.ChangeType {
	case types.ChangeAdded:
		candidates = append(candidates, r.AfterValue)
	case types.ChangeRemoved:
		candidates = append(candidates, r.BeforeValue)
	}
	candidates = append(candidates, r.ItemName)
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if key := normalize(c).Key; key != "" {
			return key
		}
	}
	return ""
}

func indexOf(list []any, key string, normalize resume.Normalizer) int {
	for i, el := range list {
		if normalize(el).Key == key {
			return i
		}
	}
	return -1
}

// previousItem finds the element with key in the previous document at path.
// Paths that go through a list index address the current document only and
// are not looked up.
func previousItem(previous resume.Document, path, key string, normalize resume.Normalizer) any {
	for _, seg := range docpath.Parse(path) {
		if seg.IsIndex {
			return nil
		}
	}
	list, _ := getList(previous, path)
	if i := indexOf(list, key, normalize); i >= 0 {
		return resume.Clone(list[i])
	}
	return nil
}

// restoreLevel puts back the previous proficiency of an element, preferring
// the previous document's own representation of it.
func restoreLevel(previous resume.Document, r types.ChangeRecord, el any, key string, normalize resume.Normalizer) any {
	obj := resume.Object(el)
	if obj == nil {
		return el
	}
	restored := resume.Clone(obj).(map[string]any)

	field := resume.LevelFields[0]
	for _, f := range resume.LevelFields {
		if _, ok := restored[f]; ok {
			field = f
			break
		}
	}

	if prev := resume.Object(previousItem(previous, r.Path, key, normalize)); prev != nil {
		for _, f := range resume.LevelFields {
			if v, ok := prev[f]; ok {
				delete(restored, field)
				restored[f] = v
				return restored
			}
		}
	}
	if r.BeforeValue != nil {
		restored[field] = r.BeforeValue
	}
	return restored
}

// removeMovedProject drops the project an experience entry was turned into.
func removeMovedProject(doc resume.Document, r types.ChangeRecord) error {
	target := resume.ProjectOf(r.ProjectData)
	if target.Raw == nil {
		return nil
	}
	projects, _ := getList(doc, resume.SectionProjects)
	kept := make([]any, 0, len(projects))
	for _, p := range projects {
		if !sameProject(resume.ProjectOf(p), target) {
			kept = append(kept, p)
		}
	}
	if err := docpath.Set(doc, resume.SectionProjects, kept); err != nil {
		return &RollbackError{ChangeID: r.ID, Path: resume.SectionProjects, Message: "cannot remove moved project", Cause: err}
	}
	return nil
}

func sameProject(a, b resume.Project) bool {
	if a.Name != "" && resume.Fold(a.Name) == resume.Fold(b.Name) {
		return true
	}
	return a.Role != "" && a.Summary != "" &&
		resume.Fold(a.Role) == resume.Fold(b.Role) && resume.Fold(a.Summary) == resume.Fold(b.Summary)
}
