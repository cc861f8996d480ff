package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-review/internal/resume"
	"github.com/jonathan/resume-review/internal/review"
	"github.com/jonathan/resume-review/internal/types"
)

func setupReview(t *testing.T) {
	t.Helper()
	resetGlobals(t)
	reviewPrevious = writeFile(t, "previous.json", previousResume)
	reviewCurrent = writeFile(t, "current.json", currentResume)
	reviewOutput = filepath.Join(t.TempDir(), "final.json")
}

func readFinal(t *testing.T) resume.Document {
	t.Helper()
	doc, err := resume.Load(reviewOutput)
	require.NoError(t, err)
	return doc
}

func TestRunReview_AppliesDecisions(t *testing.T) {
	setupReview(t)
	reviewDecisions = writeFile(t, "decisions.json", `{
		"summary:0:description": "rejected",
		"skills:0:hard_skills": "rejected",
		"skills:1:hard_skills": "accepted",
		"experience:0:title": "accepted",
		"header:0:current_title": "accepted"
	}`)

	cmd, out := testCommand()
	require.NoError(t, runReview(cmd, nil))

	final := readFinal(t)
	assert.Equal(t, "Backend engineer.", resume.Field(resume.Object(final["summary"]), "description"))
	assert.Equal(t, []string{"Go"}, resume.Strings(resume.Object(final["skills"])["hard_skills"]))
	assert.Equal(t, "Senior Engineer", resume.Field(resume.Object(final["header"]), "current_title"))

	text := out.String()
	assert.NotContains(t, text, "Warning")
	assert.Contains(t, text, "APPLIED DECISIONS")
	assert.Contains(t, text, "Final resume written to "+reviewOutput)
	assert.NotContains(t, text, "Recorded applied review")
}

func TestRunReview_PendingAppliedWithWarning(t *testing.T) {
	setupReview(t)
	reviewDecisions = writeFile(t, "decisions.json", `{"summary:0:description": "rejected"}`)

	cmd, out := testCommand()
	require.NoError(t, runReview(cmd, nil))

	assert.Contains(t, out.String(), "Warning: 3 of 4 changes and 1 other change(s) were not reviewed")
	final := readFinal(t)
	assert.Equal(t, []string{"Go", "Rust"}, resume.Strings(resume.Object(final["skills"])["hard_skills"]))
}

func TestRunReview_NoDecisionsAcceptsEverything(t *testing.T) {
	setupReview(t)

	cmd, _ := testCommand()
	require.NoError(t, runReview(cmd, nil))

	current, err := resume.Parse([]byte(currentResume))
	require.NoError(t, err)
	assert.Equal(t, current, readFinal(t))
}

func TestRunReview_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T)
		wantErr string
	}{
		{
			name: "strict with pending changes",
			setup: func(*testing.T) {
				reviewStrict = true
			},
			wantErr: "4 of 4 changes and 1 other change(s) have no decision",
		},
		{
			name: "strict with only an undecided header change",
			setup: func(t *testing.T) {
				reviewStrict = true
				reviewDecisions = writeFile(t, "decisions.json", `{
					"summary:0:description": "accepted",
					"skills:0:hard_skills": "accepted",
					"skills:1:hard_skills": "accepted",
					"experience:0:title": "accepted"
				}`)
			},
			wantErr: "0 of 4 changes and 1 other change(s) have no decision",
		},
		{
			name: "decision for unknown section",
			setup: func(t *testing.T) {
				reviewDecisions = writeFile(t, "decisions.json", `{"hobbies:0:name": "accepted"}`)
			},
			wantErr: "decision hobbies:0:name",
		},
		{
			name: "decision file fails schema",
			setup: func(t *testing.T) {
				reviewDecisions = writeFile(t, "decisions.json", `{"summary:0:description": "maybe"}`)
			},
			wantErr: "invalid decisions file",
		},
		{
			name: "record without database",
			setup: func(*testing.T) {
				reviewRecord = true
			},
			wantErr: "--record requires DATABASE_URL",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupReview(t)
			tt.setup(t)

			cmd, _ := testCommand()
			err := runReview(cmd, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			_, statErr := os.Stat(reviewOutput)
			assert.True(t, os.IsNotExist(statErr), "no output should be written")
		})
	}
}

func TestDecideAll_UnknownSection(t *testing.T) {
	prev, err := resume.Parse([]byte(previousResume))
	require.NoError(t, err)
	cur, err := resume.Parse([]byte(currentResume))
	require.NoError(t, err)
	sess := review.NewSession(prev, cur, review.Options{})

	err = decideAll(sess, types.DecisionMap{
		{Section: "experience", Index: 0, Field: "title"}: types.StatusAccepted,
		{Section: "hobbies", Index: 0}:                     types.StatusRejected,
	})
	var decisionErr *review.DecisionError
	require.ErrorAs(t, err, &decisionErr)

	// keys are applied in order, so the earlier experience decision is kept
	status, ok := sess.Decision("experience", 0, "title")
	assert.True(t, ok)
	assert.Equal(t, types.StatusAccepted, status)
}
