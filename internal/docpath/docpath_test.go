package docpath

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDoc() map[string]any {
	return map[string]any{
		"summary": map[string]any{"description": "Engineer"},
		"experience": []any{
			map[string]any{"title": "Dev", "responsibilities": []any{"Built APIs", "Wrote docs"}},
			map[string]any{"title": "Lead"},
		},
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		path string
		want []Segment
	}{
		{"summary.description", []Segment{{Key: "summary"}, {Key: "description"}}},
		{"experience[2].title", []Segment{{Key: "experience"}, {Key: "2", Index: 2, IsIndex: true}, {Key: "title"}}},
		{"experience.2.title", []Segment{{Key: "experience"}, {Key: "2", Index: 2, IsIndex: true}, {Key: "title"}}},
		{"matrix[0][1]", []Segment{{Key: "matrix"}, {Key: "0", IsIndex: true}, {Key: "1", Index: 1, IsIndex: true}}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.path))
		})
	}
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "experience[2].title", Join("experience", 2, "title"))
	assert.Equal(t, "skills.hard_skills", Join("skills", "hard_skills"))
	assert.Equal(t, "summary", Join("", "summary"))
}

func TestGet(t *testing.T) {
	doc := sampleDoc()

	v, ok := Get(doc, "summary.description")
	assert.True(t, ok)
	assert.Equal(t, "Engineer", v)

	v, ok = Get(doc, "experience[0].responsibilities[1]")
	assert.True(t, ok)
	assert.Equal(t, "Wrote docs", v)

	missing := []string{
		"header.title",
		"experience[5].title",
		"experience[-1].title",
		"experience.title",
		"summary.description.length",
		"summary[0]",
	}
	for _, p := range missing {
		v, ok := Get(doc, p)
		assert.False(t, ok, p)
		assert.Nil(t, v, p)
	}

	_, ok = Get(nil, "a.b")
	assert.False(t, ok)
}

func TestGet_DoesNotMutate(t *testing.T) {
	doc := sampleDoc()
	_, _ = Get(doc, "header.contact.email")
	_, exists := doc["header"]
	assert.False(t, exists)
}

func TestSet_ExistingAndCreated(t *testing.T) {
	doc := sampleDoc()

	require.NoError(t, Set(doc, "experience[1].title", "Staff Engineer"))
	v, _ := Get(doc, "experience[1].title")
	assert.Equal(t, "Staff Engineer", v)

	require.NoError(t, Set(doc, "header.contact.email", "a@b.c"))
	v, _ = Get(doc, "header.contact.email")
	assert.Equal(t, "a@b.c", v)

	require.NoError(t, Set(doc, "projects[0].name", "CLI"))
	projects, ok := doc["projects"].([]any)
	require.True(t, ok, "numeric next segment creates a list")
	require.Len(t, projects, 1)
	assert.Equal(t, map[string]any{"name": "CLI"}, projects[0])
}

func TestSet_GrowsNestedList(t *testing.T) {
	doc := sampleDoc()
	require.NoError(t, Set(doc, "experience[0].responsibilities[3]", "Mentored"))

	list, ok := Get(doc, "experience[0].responsibilities")
	require.True(t, ok)
	assert.Equal(t, []any{"Built APIs", "Wrote docs", nil, "Mentored"}, list)
}

func TestSet_ContractViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
		path string
	}{
		{"nil document", nil, "a"},
		{"empty path", map[string]any{}, ""},
		{"indexed root", map[string]any{}, "[0]"},
		{"through a string", sampleDoc(), "summary.description.text"},
		{"list by key", sampleDoc(), "experience.first"},
		{"negative index", sampleDoc(), "experience[-1].title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Set(tt.doc, tt.path, "x")
			require.Error(t, err)
			var pe *PathError
			assert.True(t, errors.As(err, &pe))
		})
	}
}

func TestDelete(t *testing.T) {
	doc := sampleDoc()

	require.NoError(t, Delete(doc, "experience[0].responsibilities[0]"))
	list, _ := Get(doc, "experience[0].responsibilities")
	assert.Equal(t, []any{"Wrote docs"}, list)

	require.NoError(t, Delete(doc, "experience[0]"))
	title, _ := Get(doc, "experience[0].title")
	assert.Equal(t, "Lead", title)

	require.NoError(t, Delete(doc, "summary.description"))
	_, ok := Get(doc, "summary.description")
	assert.False(t, ok)

	require.NoError(t, Delete(doc, "projects[3].name"), "missing paths are a no-op")
	require.NoError(t, Delete(doc, "experience[9]"))
	assert.Len(t, doc["experience"], 1)
}

func TestDelete_ContractViolations(t *testing.T) {
	var pe *PathError
	assert.True(t, errors.As(Delete(nil, "a"), &pe))
	assert.True(t, errors.As(Delete(map[string]any{}, ""), &pe))
	assert.True(t, errors.As(Delete(map[string]any{}, "[0]"), &pe))
}
