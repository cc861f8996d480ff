package reconcile

import (
	"sort"

	"github.com/jonathan/resume-review/internal/types"
)

// BulletOptions tunes the fuzzy pass of bullet reconciliation.
type BulletOptions struct {
	PrefixWords int
	Threshold   float64
}

func (o BulletOptions) withDefaults() BulletOptions {
	if o.PrefixWords <= 0 {
		o.PrefixWords = DefaultPrefixWords
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultBulletThreshold
	}
	return o
}

type bulletPair struct {
	before, after int
	score         float64
}

// Bullets reconciles two free-text bullet lists in two passes. The exact pass
// pairs bullets whose normalized text is identical; they produce no change.
// The fuzzy pass pairs remaining bullets whose significant starts score at
// least the threshold, best pairs first, and reports them as modified.
// Leftovers are added (after side) or removed (before side).
//
// Results list modifications, then additions, both in after order, then
// removals in before order.
func Bullets(before, after []string, opts BulletOptions) []types.BulletChange {
	opts = opts.withDefaults()

	matchedBefore := make([]bool, len(before))
	matchedAfter := make([]bool, len(after))

	normBefore := make([]string, len(before))
	for i, b := range before {
		normBefore[i] = NormalizeBullet(b)
	}
	for j, a := range after {
		norm := NormalizeBullet(a)
		for i := range before {
			if !matchedBefore[i] && normBefore[i] == norm {
				matchedBefore[i], matchedAfter[j] = true, true
				break
			}
		}
	}

	var candidates []bulletPair
	for j, a := range after {
		if matchedAfter[j] {
			continue
		}
		for i, b := range before {
			if matchedBefore[i] {
				continue
			}
			if score := PrefixScore(b, a, opts.PrefixWords); score >= opts.Threshold {
				candidates = append(candidates, bulletPair{before: i, after: j, score: score})
			}
		}
	}
	sort.SliceStable(candidates, func(x, y int) bool {
		return candidates[x].score > candidates[y].score
	})

	pairedWith := make(map[int]int)
	for _, c := range candidates {
		if matchedBefore[c.before] || matchedAfter[c.after] {
			continue
		}
		matchedBefore[c.before], matchedAfter[c.after] = true, true
		pairedWith[c.after] = c.before
	}

	var modified, added, removed []types.BulletChange
	for j, a := range after {
		if i, ok := pairedWith[j]; ok {
			modified = append(modified, types.BulletChange{
				Type: types.ChangeModified, Before: before[i], After: a, BeforeIndex: i, AfterIndex: j,
			})
		} else if !matchedAfter[j] {
			added = append(added, types.BulletChange{
				Type: types.ChangeAdded, After: a, BeforeIndex: -1, AfterIndex: j,
			})
		}
	}
	for i, b := range before {
		if !matchedBefore[i] {
			removed = append(removed, types.BulletChange{
				Type: types.ChangeRemoved, Before: b, BeforeIndex: i, AfterIndex: -1,
			})
		}
	}

	out := make([]types.BulletChange, 0, len(modified)+len(added)+len(removed))
	out = append(out, modified...)
	out = append(out, added...)
	return append(out, removed...)
}
