// Package diff computes the reviewable change list between two resume
// versions and enriches raw changes into display-ready records.
package diff

import (
	"github.com/jonathan/resume-review/internal/reconcile"
	"github.com/jonathan/resume-review/internal/resume"
	"github.com/jonathan/resume-review/internal/types"
)

// Options tunes the matching heuristics.
type Options struct {
	Bullets              reconcile.BulletOptions
	ProjectMoveThreshold float64
}

// DefaultOptions returns the standard heuristic thresholds.
func DefaultOptions() Options {
	return Options{
		Bullets: reconcile.BulletOptions{
			PrefixWords: reconcile.DefaultPrefixWords,
			Threshold:   reconcile.DefaultBulletThreshold,
		},
		ProjectMoveThreshold: reconcile.DefaultProjectMoveThreshold,
	}
}

// assembler carries the state shared between section strategies of one run.
type assembler struct {
	previous, current resume.Document
	opts              Options
	out               []types.ChangeDescriptor

	// after-side project indexes claimed by an experience move
	movedProjects map[int]bool
}

func (a *assembler) emit(d types.ChangeDescriptor) {
	a.out = append(a.out, d)
}

// Compute diffs previous against current and returns raw change descriptors.
// Missing or malformed sections degrade to empty values; Compute never fails.
// A nil document on either side yields no changes.
func Compute(previous, current resume.Document, opts Options) []types.ChangeDescriptor {
	if previous == nil || current == nil {
		return nil
	}
	a := &assembler{
		previous:      previous,
		current:       current,
		opts:          opts,
		movedProjects: make(map[int]bool),
	}

	a.summary()
	for _, category := range resume.SkillCategories {
		a.skills(category)
	}
	// experience runs before projects so that moved projects are not reported twice
	a.experience()
	a.education()
	a.languages()
	a.extras()
	a.projects()
	a.header()

	return a.out
}

// Merge keeps every supplied descriptor and appends the computed ones that
// do not duplicate a supplied finding.
func Merge(supplied, computed []types.ChangeDescriptor) []types.ChangeDescriptor {
	out := make([]types.ChangeDescriptor, 0, len(supplied)+len(computed))
	out = append(out, supplied...)
	for _, c := range computed {
		dup := false
		for _, s := range supplied {
			if s.SameFinding(c) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}
