package diff

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-review/internal/types"
)

func TestNewChangeID(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^change_[0-9a-f]{8}$`), NewChangeID())
}

func TestEnrich_ResolvesValuesFromPath(t *testing.T) {
	raw := []types.ChangeDescriptor{
		{Section: "summary", Field: "description", ChangeType: types.ChangeModified},
		{Section: "header", Field: "current_title", Path: "header.current_title", ChangeType: types.ChangeModified},
	}
	records := Enrich(raw, previousDoc(), currentDoc())
	require.Len(t, records, 2)

	assert.Equal(t, "summary.description", records[0].Path)
	assert.Equal(t, "Backend engineer.", records[0].BeforeValue)
	assert.Equal(t, "Senior backend engineer.", records[0].AfterDisplay)
	assert.Equal(t, types.StatusPending, records[0].Status)
	assert.Equal(t, "description updated", records[0].Change)

	assert.Equal(t, "Backend Engineer", records[1].BeforeDisplay)
	assert.Equal(t, "Senior Backend Engineer", records[1].AfterDisplay)
}

func TestEnrich_AddedAndRemovedDoNotResolveMissingSide(t *testing.T) {
	raw := []types.ChangeDescriptor{
		{Section: "skills", Field: "hard_skills", Path: "skills.hard_skills", ChangeType: types.ChangeAdded, AfterValue: "Rust"},
		{Section: "skills", Field: "hard_skills", Path: "skills.hard_skills", ChangeType: types.ChangeRemoved, BeforeValue: "Perl"},
	}
	records := Enrich(raw, previousDoc(), currentDoc())
	assert.Nil(t, records[0].BeforeValue)
	assert.Equal(t, "", records[0].BeforeDisplay)
	assert.Equal(t, "Rust", records[0].AfterDisplay)
	assert.Nil(t, records[1].AfterValue)
	assert.Equal(t, "Perl", records[1].BeforeDisplay)
}

func TestEnrich_EntityDisplays(t *testing.T) {
	raw := []types.ChangeDescriptor{
		{Section: "experience", Field: "experience[2]", Path: "experience[2]", ChangeType: types.ChangeExperienceRemoved},
		{
			Section: "experience", Field: "experience[1]", Path: "experience[1]", ChangeType: types.ChangeMoveToProjects,
			ProjectData: map[string]any{"name": "Recipes"},
		},
		{Section: "experience", Field: "experience[0]", Path: "experience[0]", ChangeType: types.ChangeExperienceAdded},
	}
	records := Enrich(raw, previousDoc(), currentDoc())
	require.Len(t, records, 3)

	assert.Equal(t, "Cashier (Shop)", records[0].BeforeDisplay)
	assert.Empty(t, records[0].AfterDisplay)
	assert.Nil(t, records[0].AfterValue)

	assert.Equal(t, "Experience: Side Project", records[1].BeforeDisplay)
	assert.Equal(t, "Project: Recipes", records[1].AfterDisplay)

	assert.Empty(t, records[2].BeforeDisplay)
	assert.Equal(t, "Senior Backend Engineer (Acme)", records[2].AfterDisplay)
}

func TestEnrich_KeepsSuppliedDisplayAndStatus(t *testing.T) {
	raw := []types.ChangeDescriptor{{
		Section: "experience", Field: "responsibilities", Path: "experience[0].responsibilities",
		ChangeType: types.ChangeModified, BeforeDisplay: "• a", AfterDisplay: "• b", Status: types.StatusRejected,
	}}
	records := Enrich(raw, previousDoc(), currentDoc())
	assert.Equal(t, "• a", records[0].BeforeDisplay)
	assert.Equal(t, "• b", records[0].AfterDisplay)
	assert.Equal(t, types.StatusRejected, records[0].Status)
	assert.NotNil(t, records[0].BeforeValue)
}

func TestEnrich_SectionScopedIndexes(t *testing.T) {
	records := Enrich(Compute(previousDoc(), currentDoc(), DefaultOptions()), previousDoc(), currentDoc())

	next := map[string]int{}
	for _, r := range records {
		assert.Equal(t, next[r.Section], r.Index, "%s record out of sequence", r.Section)
		next[r.Section]++
	}
}

func TestEnrich_Ids(t *testing.T) {
	raw := Compute(previousDoc(), currentDoc(), DefaultOptions())
	first := Enrich(raw, previousDoc(), currentDoc())
	second := Enrich(raw, previousDoc(), currentDoc())

	ids := map[string]bool{}
	for _, r := range first {
		assert.False(t, ids[r.ID], "duplicate id %s", r.ID)
		ids[r.ID] = true
	}
	for _, r := range second {
		assert.False(t, ids[r.ID], "id %s reused across passes", r.ID)
	}
}

func TestEnrich_SuppliedIdsKeptUnlessColliding(t *testing.T) {
	n := 0
	e := Enricher{NewID: func() string {
		n++
		return fmt.Sprintf("gen_%d", n)
	}}
	raw := []types.ChangeDescriptor{
		{Section: "summary", Field: "description", ID: "change_fixed"},
		{Section: "summary", Field: "domains", ID: "change_fixed"},
		{Section: "summary", Field: "key_strengths"},
	}
	records := e.Enrich(raw, previousDoc(), currentDoc())
	assert.Equal(t, "change_fixed", records[0].ID)
	assert.Equal(t, "gen_1", records[1].ID)
	assert.Equal(t, "gen_2", records[2].ID)
}

func TestEnrich_MissingPathIsNotAnError(t *testing.T) {
	raw := []types.ChangeDescriptor{{Section: "certifications", Field: "aws", ChangeType: types.ChangeModified}}
	records := Enrich(raw, previousDoc(), currentDoc())
	require.Len(t, records, 1)
	assert.Nil(t, records[0].BeforeValue)
	assert.Empty(t, records[0].AfterDisplay)
}
