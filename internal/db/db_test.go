package db

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-review/internal/types"
)

func TestMigrations_UpAndDownPairs(t *testing.T) {
	entries, err := migrationFiles.ReadDir("migrations")
	require.NoError(t, err)

	pattern := regexp.MustCompile(`^(\d+)_.*\.(up|down)\.sql$`)
	byVersion := map[string]map[string]bool{}
	for _, entry := range entries {
		match := pattern.FindStringSubmatch(entry.Name())
		require.NotNil(t, match, "unexpected migration file %s", entry.Name())
		if byVersion[match[1]] == nil {
			byVersion[match[1]] = map[string]bool{}
		}
		byVersion[match[1]][match[2]] = true
	}

	require.NotEmpty(t, byVersion)
	for version, dirs := range byVersion {
		assert.True(t, dirs["up"] && dirs["down"], "version %s needs up and down files", version)
	}
}

func TestMigrations_Ordered(t *testing.T) {
	names, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "0001_applied_reviews.up.sql", names[0])
	for _, n := range names {
		assert.True(t, strings.HasSuffix(n, ".up.sql"))
	}
}

func TestAppliedReview_JSONShape(t *testing.T) {
	r := AppliedReview{
		SessionID: "s1",
		Document:  map[string]any{"summary": map[string]any{"description": "Engineer"}},
		Decisions: types.DecisionMap{
			{Section: "skills", Index: 1, Field: "hard_skills"}: types.StatusRejected,
		},
		Accepted: 0,
		Rejected: 1,
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "s1", decoded["session_id"])
	assert.Equal(t, map[string]any{"skills:1:hard_skills": "rejected"}, decoded["decisions"])
}
