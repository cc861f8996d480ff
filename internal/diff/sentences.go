package diff

import (
	"fmt"

	"github.com/jonathan/resume-review/internal/resume"
	"github.com/jonathan/resume-review/internal/types"
)

const untitled = "Untitled"

func orUntitled(s string) string {
	if s == "" {
		return untitled
	}
	return s
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// itemSentences returns the change and reason sentences for an element-level finding.
func itemSentences(section string, ct types.ChangeType, name string) (change, reason string) {
	noun := sectionNoun(section)
	switch ct {
	case types.ChangeAdded:
		return fmt.Sprintf("%s %q added", noun, name), "Relevant for the target role"
	case types.ChangeRemoved:
		return fmt.Sprintf("%s %q removed", noun, name), "Not relevant for the target role"
	case types.ChangeLevelAdjusted:
		return fmt.Sprintf("%s %q level adjusted", noun, name), "Level aligned with demonstrated experience"
	default:
		return fmt.Sprintf("%s %q updated", noun, name), "Adapted to the target role"
	}
}

func levelSentence(name string, before, after int) string {
	return fmt.Sprintf("%s: %s → %s", name, resume.LevelName(before), resume.LevelName(after))
}

func sectionNoun(section string) string {
	switch section {
	case resume.SectionSkills:
		return "Skill"
	case resume.SectionLanguages:
		return "Language"
	case resume.SectionEducation:
		return "Education"
	case resume.SectionProjects:
		return "Project"
	case resume.SectionExtras:
		return "Extra"
	case resume.SectionExperience:
		return "Experience skill"
	default:
		return "Item"
	}
}

// defaultSentence fills in a change sentence for supplied descriptors that carry none.
func defaultSentence(d types.ChangeDescriptor) string {
	target := d.Field
	if d.ItemName != "" {
		target = d.ItemName
	}
	if target == "" {
		target = d.Section
	}
	switch d.ChangeType {
	case types.ChangeAdded, types.ChangeExperienceAdded:
		return fmt.Sprintf("%s added", target)
	case types.ChangeRemoved, types.ChangeExperienceRemoved:
		return fmt.Sprintf("%s removed", target)
	case types.ChangeLevelAdjusted:
		return fmt.Sprintf("%s level adjusted", target)
	case types.ChangeMoveToProjects:
		return fmt.Sprintf("%s moved to projects", target)
	default:
		return fmt.Sprintf("%s updated", target)
	}
}
