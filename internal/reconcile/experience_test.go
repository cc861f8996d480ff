package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-review/internal/resume"
)

func exps(entries ...map[string]any) []resume.Experience {
	out := make([]resume.Experience, len(entries))
	for i, e := range entries {
		out[i] = resume.ExperienceOf(e)
	}
	return out
}

func projects(entries ...map[string]any) []resume.Project {
	out := make([]resume.Project, len(entries))
	for i, e := range entries {
		out[i] = resume.ProjectOf(e)
	}
	return out
}

func TestPairExperiences_Tiers(t *testing.T) {
	before := exps(
		map[string]any{"title": "Engineer", "company": "Acme", "start_date": "2019-01"},
		map[string]any{"title": "Intern", "company": "Globex", "start_date": "2017-06"},
		map[string]any{"title": "Consultant", "company": "Initech"},
		map[string]any{"title": "Volunteer", "company": "Red Cross"},
		map[string]any{"title": "Barista", "company": "Cafe"},
	)
	after := exps(
		map[string]any{"title": "Tutor", "company": "Red Crescent"},
		map[string]any{"title": "Software Engineer", "company": "Globex", "start_date": "2017-06"},
		map[string]any{"title": "Senior Consultant", "company": "INITECH"},
		map[string]any{"title": "Engineer", "company": "Acme", "start_date": "2020-01"},
		map[string]any{"title": "Volunteer", "company": "Red Cross Intl"},
	)

	m := PairExperiences(before, after)
	assert.Equal(t, []Pair{
		{Before: 1, After: 1}, // company + start date
		{Before: 2, After: 2}, // unique company
		{Before: 0, After: 3}, // title + company
		{Before: 3, After: 4}, // title only
	}, m.Pairs)
	assert.Equal(t, []int{4}, m.UnmatchedBefore)
	assert.Equal(t, []int{0}, m.UnmatchedAfter)
}

func TestPairExperiences_StrongMatchNotStolen(t *testing.T) {
	before := exps(
		map[string]any{"title": "Engineer", "company": "Acme"},
		map[string]any{"title": "Engineer", "company": "Globex"},
	)
	after := exps(
		map[string]any{"title": "Engineer", "company": "Globex"},
	)
	m := PairExperiences(before, after)
	require.Len(t, m.Pairs, 1)
	assert.Equal(t, Pair{Before: 1, After: 0}, m.Pairs[0])
	assert.Equal(t, []int{0}, m.UnmatchedBefore)
}

func TestPairExperiences_AmbiguousCompanyIsNotGuessed(t *testing.T) {
	before := exps(
		map[string]any{"title": "Engineer", "company": "Acme"},
		map[string]any{"title": "Manager", "company": "Acme"},
	)
	after := exps(map[string]any{"title": "Architect", "company": "Acme"})
	m := PairExperiences(before, after)
	assert.Empty(t, m.Pairs)
	assert.Equal(t, []int{0, 1}, m.UnmatchedBefore)
	assert.Equal(t, []int{0}, m.UnmatchedAfter)
}

func TestPairExperiences_UnlabeledEntries(t *testing.T) {
	same := PairExperiences(exps(map[string]any{"description": "x"}), exps(map[string]any{"description": "x"}))
	assert.Equal(t, []Pair{{Before: 0, After: 0}}, same.Pairs)

	changed := PairExperiences(exps(map[string]any{"description": "x"}), exps(map[string]any{"description": "y"}))
	assert.Empty(t, changed.Pairs)
}

func TestPairExperiences_NonObjectEntries(t *testing.T) {
	view := func(values ...any) []resume.Experience {
		out := make([]resume.Experience, len(values))
		for i, v := range values {
			out[i] = resume.ExperienceOf(v)
		}
		return out
	}

	replaced := PairExperiences(view("Freelance work"), view("Open source maintainer"))
	assert.Empty(t, replaced.Pairs, "different malformed entries are not the same entry")
	assert.Equal(t, []int{0}, replaced.UnmatchedBefore)
	assert.Equal(t, []int{0}, replaced.UnmatchedAfter)

	kept := PairExperiences(view("Freelance work", map[string]any{"title": "Engineer"}),
		view(map[string]any{"title": "Engineer"}, "Freelance work"))
	assert.ElementsMatch(t, []Pair{{Before: 0, After: 1}, {Before: 1, After: 0}}, kept.Pairs)
}

func TestDetectMoves(t *testing.T) {
	experience := exps(
		map[string]any{"title": "Side Project", "company": "Self", "skills_used": []any{"React"}},
		map[string]any{"title": "Cashier", "company": "Shop"},
	)
	before := projects(map[string]any{"name": "Old CLI"})
	after := projects(
		map[string]any{"name": "Old CLI"},
		map[string]any{"name": "Side Project", "tech_stack": []any{"React"}},
	)

	moves := DetectMoves(experience, []int{0, 1}, before, after, 0)
	require.Len(t, moves, 1)
	assert.Equal(t, Move{Experience: 0, Project: 1, Score: 1}, moves[0])
}

func TestDetectMoves_ExistingProjectIsNotACandidate(t *testing.T) {
	experience := exps(map[string]any{"title": "Side Project"})
	before := projects(map[string]any{"name": "Renamed", "summary": "Same summary"})
	after := projects(map[string]any{"name": "Side Project", "summary": "same summary"})
	assert.Empty(t, DetectMoves(experience, []int{0}, before, after, 0))
}

func TestDetectMoves_ProjectClaimedOnce(t *testing.T) {
	experience := exps(
		map[string]any{"title": "A", "skills_used": []any{"Go"}},
		map[string]any{"title": "B", "skills_used": []any{"Go"}},
	)
	after := projects(map[string]any{"name": "Tool", "tech_stack": []any{"Go"}})
	moves := DetectMoves(experience, []int{0, 1}, nil, after, 0)
	require.Len(t, moves, 1)
	assert.Equal(t, 0, moves[0].Experience)
}

func TestDetectMoves_ThresholdFiltersWeakSignals(t *testing.T) {
	experience := exps(map[string]any{"title": "A", "skills_used": []any{"Go"}})
	after := projects(map[string]any{"name": "Tool", "tech_stack": []any{"Go"}})
	assert.Empty(t, DetectMoves(experience, []int{0}, nil, after, 0.7))
}
