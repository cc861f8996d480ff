package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-review/internal/types"
)

func countTypes(changes []types.BulletChange) map[types.ChangeType]int {
	out := make(map[types.ChangeType]int)
	for _, c := range changes {
		out[c.Type]++
	}
	return out
}

func TestBullets_RewordedAndAdded(t *testing.T) {
	before := []string{"Led team of 5 engineers.", "Wrote tests."}
	after := []string{"Led a team of five engineers", "Wrote comprehensive tests.", "Shipped v2."}

	changes := Bullets(before, after, BulletOptions{})
	counts := countTypes(changes)
	assert.Equal(t, 2, counts[types.ChangeModified])
	assert.Equal(t, 1, counts[types.ChangeAdded])
	assert.Zero(t, counts[types.ChangeRemoved])

	require.Len(t, changes, 3)
	assert.Equal(t, "Led team of 5 engineers.", changes[0].Before)
	assert.Equal(t, "Led a team of five engineers", changes[0].After)
	assert.Equal(t, "Wrote tests.", changes[1].Before)
	assert.Equal(t, "Wrote comprehensive tests.", changes[1].After)
	assert.Equal(t, "Shipped v2.", changes[2].After)
	assert.Equal(t, 2, changes[2].AfterIndex)
}

func TestBullets_ExactMatchIgnoresCaseAndPunctuation(t *testing.T) {
	before := []string{"Built the billing API.", "Mentored interns"}
	after := []string{"mentored interns!", "built the billing api"}
	assert.Empty(t, Bullets(before, after, BulletOptions{}))
}

func TestBullets_UnrelatedIsAddedAndRemoved(t *testing.T) {
	before := []string{"Wrote tests"}
	after := []string{"Wrote docs"}

	changes := Bullets(before, after, BulletOptions{})
	counts := countTypes(changes)
	assert.Equal(t, 1, counts[types.ChangeAdded])
	assert.Equal(t, 1, counts[types.ChangeRemoved])
	assert.Zero(t, counts[types.ChangeModified])
}

func TestBullets_BestPairWins(t *testing.T) {
	before := []string{"Designed data pipelines for analytics", "Designed data pipelines in Go for billing"}
	after := []string{"Designed data pipelines in Go for invoicing"}

	changes := Bullets(before, after, BulletOptions{})
	require.Len(t, changes, 2)
	assert.Equal(t, types.ChangeModified, changes[0].Type)
	assert.Equal(t, 1, changes[0].BeforeIndex)
	assert.Equal(t, types.ChangeRemoved, changes[1].Type)
	assert.Equal(t, 0, changes[1].BeforeIndex)
}

func TestBullets_ThresholdIsTunable(t *testing.T) {
	before := []string{"Wrote tests"}
	after := []string{"Wrote docs"}
	changes := Bullets(before, after, BulletOptions{Threshold: 0.5})
	require.Len(t, changes, 1)
	assert.Equal(t, types.ChangeModified, changes[0].Type)
}

func TestBullets_DuplicatesMatchOneToOne(t *testing.T) {
	before := []string{"Fixed bugs", "Fixed bugs"}
	after := []string{"Fixed bugs"}
	changes := Bullets(before, after, BulletOptions{})
	require.Len(t, changes, 1)
	assert.Equal(t, types.ChangeRemoved, changes[0].Type)
	assert.Equal(t, 1, changes[0].BeforeIndex)
}
