package schemas_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-review/internal/schemas"
	schemafiles "github.com/jonathan/resume-review/schemas"
)

var schemaFiles = []string{
	schemafiles.Resume,
	schemafiles.Changes,
	schemafiles.Decisions,
}

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	for _, schemaFile := range schemaFiles {
		t.Run(schemaFile, func(t *testing.T) {
			data, err := schemafiles.Files.ReadFile(schemaFile)
			require.NoError(t, err, "should be able to read schema file")

			var schemaObj map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &schemaObj), "schema file should be valid JSON: %s", schemaFile)

			_, hasSchema := schemaObj["$schema"]
			_, hasType := schemaObj["type"]
			assert.True(t, hasSchema && hasType, "schema should declare $schema and type")
		})
	}
}

func TestResumeSchema(t *testing.T) {
	valid := `{
		"header": {"current_title": "Engineer"},
		"skills": {"hard_skills": ["Go", {"name": "Rust", "proficiency": 3}]},
		"experience": [{"title": "Engineer", "company": "Acme", "responsibilities": ["Built APIs"]}],
		"education": ["BSc", {"degree": "MSc", "institution": "MIT"}],
		"custom_section": {"anything": true}
	}`
	assert.NoError(t, schemas.ValidateResume([]byte(valid)))

	invalid := `{"experience": {"title": "not a list"}}`
	err := schemas.ValidateResume([]byte(invalid))
	var ve *schemas.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "experience", ve.Errors[0].Field)
}

func TestChangesSchema(t *testing.T) {
	valid := `[{"section": "summary", "field": "description", "change_type": "modified", "change": "Rewritten"}]`
	assert.NoError(t, schemas.ValidateChanges([]byte(valid)))

	unknownType := `[{"section": "summary", "change_type": "renamed"}]`
	assert.Error(t, schemas.ValidateChanges([]byte(unknownType)))

	missingSection := `[{"change_type": "added"}]`
	assert.Error(t, schemas.ValidateChanges([]byte(missingSection)))
}

func TestDecisionsSchema(t *testing.T) {
	valid := `{"skills:1:hard_skills": "rejected", "summary:0:description": "accepted", "header:0": "pending"}`
	assert.NoError(t, schemas.ValidateDecisions([]byte(valid)))

	badKey := `{"skills-1": "rejected"}`
	assert.Error(t, schemas.ValidateDecisions([]byte(badKey)))

	badStatus := `{"skills:1:hard_skills": "maybe"}`
	assert.Error(t, schemas.ValidateDecisions([]byte(badStatus)))
}
