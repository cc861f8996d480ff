package diff

import (
	"fmt"
	"sort"

	"github.com/jonathan/resume-review/internal/compare"
	"github.com/jonathan/resume-review/internal/docpath"
	"github.com/jonathan/resume-review/internal/reconcile"
	"github.com/jonathan/resume-review/internal/resume"
	"github.com/jonathan/resume-review/internal/types"
)

// Summary list fields compared alongside the description.
var summaryLists = []string{"domains", "key_strengths"}

func (a *assembler) summary() {
	prev := resume.Object(a.previous[resume.SectionSummary])
	cur := resume.Object(a.current[resume.SectionSummary])

	before, after := resume.Text(prev["description"]), resume.Text(cur["description"])
	if compare.AreDifferent(before, after) {
		a.emit(types.ChangeDescriptor{
			Section:     resume.SectionSummary,
			Field:       "description",
			Path:        docpath.Join(resume.SectionSummary, "description"),
			ChangeType:  types.ChangeModified,
			BeforeValue: before,
			AfterValue:  after,
			Change:      "Profile description rewritten",
			Reason:      "Adapted to the target role",
		})
	}

	for _, field := range summaryLists {
		before, after := resume.List(prev[field]), resume.List(cur[field])
		if !compare.AreDifferent(before, after) {
			continue
		}
		a.emit(types.ChangeDescriptor{
			Section:     resume.SectionSummary,
			Field:       field,
			Path:        docpath.Join(resume.SectionSummary, field),
			ChangeType:  types.ChangeModified,
			BeforeValue: before,
			AfterValue:  after,
			Change:      fmt.Sprintf("Profile %s updated", humanize(field)),
			Reason:      "Adapted to the target role",
		})
	}
}

func (a *assembler) skills(category string) {
	c := reconcile.Collection{Normalize: resume.NormalizeSkill}
	changes := c.Reconcile(
		resume.SectionList(a.previous, resume.SectionSkills, category),
		resume.SectionList(a.current, resume.SectionSkills, category),
	)
	path := docpath.Join(resume.SectionSkills, category)
	for _, ch := range changes {
		a.emit(itemDescriptor(resume.SectionSkills, category, path, ch))
	}
}

func (a *assembler) experience() {
	before := resume.Experiences(a.previous)
	after := resume.Experiences(a.current)

	match := reconcile.PairExperiences(before, after)
	moves := reconcile.DetectMoves(before, match.UnmatchedBefore,
		resume.Projects(a.previous), resume.Projects(a.current), a.opts.ProjectMoveThreshold)

	movedTo := make(map[int]reconcile.Move, len(moves))
	for _, mv := range moves {
		movedTo[mv.Experience] = mv
	}

	for _, i := range match.UnmatchedBefore {
		exp := before[i]
		field := docpath.Join(resume.SectionExperience, i)
		if mv, ok := movedTo[i]; ok {
			a.movedProjects[mv.Project] = true
			project := resume.Projects(a.current)[mv.Project]
			a.emit(types.ChangeDescriptor{
				Section:     resume.SectionExperience,
				Field:       field,
				Path:        field,
				ChangeType:  types.ChangeMoveToProjects,
				ItemName:    orUntitled(exp.Title),
				BeforeValue: exp.Value,
				ProjectData: project.Raw,
				ExpIndex:    intPtr(i),
				Change:      fmt.Sprintf("Experience %q moved to projects", orUntitled(exp.Title)),
				Reason:      "Presented as a personal project relevant to the target role",
			})
			continue
		}
		a.emit(types.ChangeDescriptor{
			Section:     resume.SectionExperience,
			Field:       field,
			Path:        field,
			ChangeType:  types.ChangeExperienceRemoved,
			ItemName:    orUntitled(exp.Title),
			BeforeValue: exp.Value,
			ExpIndex:    intPtr(i),
			Change:      fmt.Sprintf("Experience %q removed", orUntitled(exp.Title)),
			Reason:      "Not relevant for the target role",
		})
	}

	for _, j := range match.UnmatchedAfter {
		exp := after[j]
		field := docpath.Join(resume.SectionExperience, j)
		a.emit(types.ChangeDescriptor{
			Section:    resume.SectionExperience,
			Field:      field,
			Path:       field,
			ChangeType: types.ChangeExperienceAdded,
			ItemName:   orUntitled(exp.Title),
			AfterValue: exp.Value,
			ExpIndex:   intPtr(j),
			Change:     fmt.Sprintf("Experience %q added", orUntitled(exp.Title)),
			Reason:     "Relevant for the target role",
		})
	}

	for _, p := range match.Pairs {
		a.experiencePair(before[p.Before], after[p.After], p.After)
	}
}

// experiencePair diffs a matched entry field by field. Paths address the current document.
func (a *assembler) experiencePair(prev, cur resume.Experience, idx int) {
	if !compare.AreDifferent(prev.Value, cur.Value) {
		return
	}
	label := cur.Title
	if label == "" {
		label = prev.Title
	}
	if label == "" {
		label = fmt.Sprintf("Experience %d", idx+1)
	}

	if compare.AreDifferent(prev.Title, cur.Title) {
		a.emit(types.ChangeDescriptor{
			Section:     resume.SectionExperience,
			Field:       "title",
			Path:        docpath.Join(resume.SectionExperience, idx, "title"),
			ChangeType:  types.ChangeModified,
			ItemName:    fmt.Sprintf("Title: %s → %s", orNA(prev.Title), orNA(cur.Title)),
			BeforeValue: prev.Title,
			AfterValue:  cur.Title,
			ExpIndex:    intPtr(idx),
			Change:      fmt.Sprintf("Title updated in %q", label),
			Reason:      "Adapted to the target role",
		})
	}

	if compare.AreDifferent(prev.Description, cur.Description) {
		a.emit(types.ChangeDescriptor{
			Section:     resume.SectionExperience,
			Field:       "description",
			Path:        docpath.Join(resume.SectionExperience, idx, "description"),
			ChangeType:  types.ChangeModified,
			ItemName:    "Description",
			BeforeValue: prev.Description,
			AfterValue:  cur.Description,
			ExpIndex:    intPtr(idx),
			Change:      fmt.Sprintf("Description updated in %q", label),
			Reason:      "Adapted to the target role",
		})
	}

	a.bulletList("responsibilities", "Responsibilities", prev, cur, idx, label)

	skills := reconcile.Collection{Normalize: resume.NormalizeSkill}.Reconcile(prev.SkillsUsed, cur.SkillsUsed)
	path := docpath.Join(resume.SectionExperience, idx, "skills_used")
	for _, ch := range skills {
		d := itemDescriptor(resume.SectionExperience, "skills_used", path, ch)
		d.ExpIndex = intPtr(idx)
		a.emit(d)
	}

	a.bulletList("deliverables", "Deliverables", prev, cur, idx, label)
}

// bulletList emits one aggregate change for a bullet field when any bullet changed.
func (a *assembler) bulletList(field, title string, prev, cur resume.Experience, idx int, label string) {
	var before, after []string
	if field == "responsibilities" {
		before, after = prev.Responsibilities, cur.Responsibilities
	} else {
		before, after = prev.Deliverables, cur.Deliverables
	}
	bullets := reconcile.Bullets(before, after, a.opts.Bullets)
	if len(bullets) == 0 {
		return
	}
	a.emit(types.ChangeDescriptor{
		Section:       resume.SectionExperience,
		Field:         field,
		Path:          docpath.Join(resume.SectionExperience, idx, field),
		ChangeType:    types.ChangeModified,
		ItemName:      title,
		BeforeValue:   resume.List(prev.Raw[field]),
		AfterValue:    resume.List(cur.Raw[field]),
		BeforeDisplay: compare.FormatBullets(before),
		AfterDisplay:  compare.FormatBullets(after),
		ExpIndex:      intPtr(idx),
		Bullets:       bullets,
		Change:        fmt.Sprintf("%s updated in %q", title, label),
		Reason:        "Adapted to the target role",
	})
}

func (a *assembler) education() {
	a.collection(resume.SectionEducation, reconcile.Collection{Normalize: resume.NormalizeEducation})
}

func (a *assembler) extras() {
	a.collection(resume.SectionExtras, reconcile.Collection{Normalize: resume.NormalizeNamed})
}

func (a *assembler) projects() {
	a.collection(resume.SectionProjects, reconcile.Collection{
		Normalize: resume.NormalizeNamed,
		SkipAfter: func(i int) bool { return a.movedProjects[i] },
	})
}

func (a *assembler) languages() {
	c := reconcile.Collection{Normalize: resume.NormalizeLanguage}
	changes := c.Reconcile(
		resume.SectionList(a.previous, resume.SectionLanguages),
		resume.SectionList(a.current, resume.SectionLanguages),
	)
	for _, ch := range changes {
		d := itemDescriptor(resume.SectionLanguages, resume.SectionLanguages, resume.SectionLanguages, ch)
		if ch.Type == types.ChangeModified {
			before := resume.Field(resume.Object(ch.Before), "level", "proficiency")
			after := resume.Field(resume.Object(ch.After), "level", "proficiency")
			if before != "" && after != "" {
				d.Change = fmt.Sprintf("Language %q level: %s → %s", ch.Display, before, after)
			}
		}
		a.emit(d)
	}
}

// collection handles top-level list sections whose field equals the section name.
func (a *assembler) collection(section string, c reconcile.Collection) {
	changes := c.Reconcile(
		resume.SectionList(a.previous, section),
		resume.SectionList(a.current, section),
	)
	for _, ch := range changes {
		a.emit(itemDescriptor(section, section, section, ch))
	}
}

// header compares scalar fields, descending one level into nested objects such as contact.
func (a *assembler) header() {
	a.headerFields("", resume.Object(a.previous[resume.SectionHeader]), resume.Object(a.current[resume.SectionHeader]), true)
}

func (a *assembler) headerFields(prefix string, prev, cur map[string]any, descend bool) {
	for _, key := range unionKeys(prev, cur) {
		field := prefix + key
		before, after := prev[key], cur[key]
		if descend && nestedObjects(before, after) {
			a.headerFields(field+".", resume.Object(before), resume.Object(after), false)
			continue
		}
		if !compare.AreDifferent(before, after) {
			continue
		}
		a.emit(types.ChangeDescriptor{
			Section:     resume.SectionHeader,
			Field:       field,
			Path:        docpath.Join(resume.SectionHeader, field),
			ChangeType:  types.ChangeModified,
			ItemName:    field,
			BeforeValue: before,
			AfterValue:  after,
			Change:      fmt.Sprintf("Header %s updated", humanize(field)),
			Reason:      "Aligned with the target role",
		})
	}
}

// nestedObjects reports whether both values are objects, or one is an object and the other absent.
func nestedObjects(a, b any) bool {
	ao, bo := resume.Object(a), resume.Object(b)
	if ao == nil && bo == nil {
		return false
	}
	return (ao != nil || a == nil) && (bo != nil || b == nil)
}

func unionKeys(a, b map[string]any) []string {
	seen := make(map[string]bool, len(a)+len(b))
	keys := make([]string, 0, len(a)+len(b))
	for _, m := range []map[string]any{a, b} {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// itemDescriptor turns an element-level finding into a change descriptor.
func itemDescriptor(section, field, path string, ch reconcile.ItemChange) types.ChangeDescriptor {
	d := types.ChangeDescriptor{
		Section:    section,
		Field:      field,
		Path:       path,
		ChangeType: ch.Type,
		ItemName:   ch.Display,
	}
	d.Change, d.Reason = itemSentences(section, ch.Type, ch.Display)

	switch ch.Type {
	case types.ChangeAdded:
		d.ItemValue = ch.After
		d.AfterValue = ch.Display
	case types.ChangeRemoved:
		d.ItemValue = ch.Before
		d.BeforeValue = ch.Display
	case types.ChangeLevelAdjusted:
		d.ItemValue = ch.After
		d.BeforeValue = *ch.BeforeLevel
		d.AfterValue = *ch.AfterLevel
		d.BeforeDisplay = resume.LevelName(*ch.BeforeLevel)
		d.AfterDisplay = resume.LevelName(*ch.AfterLevel)
		d.Change = levelSentence(ch.Display, *ch.BeforeLevel, *ch.AfterLevel)
	default:
		d.ItemValue = ch.After
		d.BeforeValue = ch.Before
		d.AfterValue = ch.After
	}
	return d
}

func humanize(field string) string {
	out := []rune(field)
	for i, r := range out {
		if r == '_' || r == '.' {
			out[i] = ' '
		}
	}
	return string(out)
}

func intPtr(i int) *int {
	return &i
}
