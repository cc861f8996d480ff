package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const previousResume = `{
	"header": {"current_title": "Engineer"},
	"summary": {"description": "Backend engineer."},
	"skills": {"hard_skills": ["Go", "Perl"]},
	"experience": [{"title": "Engineer", "company": "Acme", "responsibilities": ["Built APIs"]}],
	"extras": [{"name": "Chess"}]
}`

const currentResume = `{
	"header": {"current_title": "Senior Engineer"},
	"summary": {"description": "Senior backend engineer."},
	"skills": {"hard_skills": ["Go", "Rust"]},
	"experience": [{"title": "Senior Engineer", "company": "Acme", "responsibilities": ["Built APIs"]}],
	"extras": [{"name": "Chess"}]
}`

// writeFile writes content into the test's temp dir and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// testCommand returns a command whose output is captured in the returned buffer.
func testCommand() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	return cmd, &buf
}

// resetGlobals restores shared flag state after a test.
func resetGlobals(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Cleanup(func() {
		configPath, verbose = "", false
		diffPrevious, diffCurrent, diffChanges, diffMode, diffFormat, diffOutput, diffShowAll = "", nil, "", "", "text", "", false
		reviewPrevious, reviewCurrent, reviewChanges, reviewDecisions, reviewOutput = "", "", "", "", ""
		reviewRecord, reviewStrict = false, false
		validateKind, validateSchema, validateJSON = "resume", "", ""
		migrateList = false
	})
}
