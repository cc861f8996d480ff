// Package reconcile matches elements of two versions of a collection and
// classifies each element as added, removed, modified or level-adjusted.
package reconcile

import (
	"github.com/jonathan/resume-review/internal/compare"
	"github.com/jonathan/resume-review/internal/resume"
	"github.com/jonathan/resume-review/internal/types"
)

// ItemChange is one element-level finding. BeforeIndex and AfterIndex are -1
// when the element does not exist on that side.
type ItemChange struct {
	Type        types.ChangeType
	Key         string
	Display     string
	Before      any
	After       any
	BeforeLevel *int
	AfterLevel  *int
	BeforeIndex int
	AfterIndex  int
}

// Collection reconciles keyed collections such as skills, languages or extras.
type Collection struct {
	Normalize resume.Normalizer
	// SkipAfter hides after-side elements already accounted for elsewhere.
	SkipAfter func(index int) bool
}

type indexed struct {
	item  resume.Item
	index int
}

// Reconcile compares two collections. Elements are keyed through Normalize;
// unkeyable elements are ignored and the first occurrence of a duplicate key
// wins. Results list additions (after order), then removals and then
// modifications (both in before order).
func (c Collection) Reconcile(before, after []any) []ItemChange {
	normalize := c.Normalize
	if normalize == nil {
		normalize = resume.NormalizeSkill
	}

	beforeItems, beforeByKey := c.index(before, normalize, nil)
	afterItems, afterByKey := c.index(after, normalize, c.SkipAfter)

	var added, removed, changed []ItemChange

	for _, a := range afterItems {
		if _, found := beforeByKey[a.item.Key]; found {
			continue
		}
		added = append(added, ItemChange{
			Type: types.ChangeAdded, Key: a.item.Key, Display: a.item.Display,
			After: a.item.Raw, AfterLevel: a.item.Level,
			BeforeIndex: -1, AfterIndex: a.index,
		})
	}

	for _, b := range beforeItems {
		a, found := afterByKey[b.item.Key]
		if !found {
			removed = append(removed, ItemChange{
				Type: types.ChangeRemoved, Key: b.item.Key, Display: b.item.Display,
				Before: b.item.Raw, BeforeLevel: b.item.Level,
				BeforeIndex: b.index, AfterIndex: -1,
			})
			continue
		}
		change := ItemChange{
			Key: b.item.Key, Display: a.item.Display,
			Before: b.item.Raw, After: a.item.Raw,
			BeforeLevel: b.item.Level, AfterLevel: a.item.Level,
			BeforeIndex: b.index, AfterIndex: a.index,
		}
		switch {
		case b.item.HasLevel() && a.item.HasLevel() && *b.item.Level != *a.item.Level:
			change.Type = types.ChangeLevelAdjusted
		case compare.AreDifferent(b.item.Raw, a.item.Raw):
			change.Type = types.ChangeModified
		default:
			continue
		}
		changed = append(changed, change)
	}

	out := make([]ItemChange, 0, len(added)+len(removed)+len(changed))
	out = append(out, added...)
	out = append(out, removed...)
	return append(out, changed...)
}

// index returns the keyed elements in list order, first occurrence only.
func (c Collection) index(list []any, normalize resume.Normalizer, skip func(int) bool) ([]indexed, map[string]indexed) {
	items := make([]indexed, 0, len(list))
	byKey := make(map[string]indexed, len(list))
	for i, raw := range list {
		if skip != nil && skip(i) {
			continue
		}
		item := normalize(raw)
		if item.Key == "" {
			continue
		}
		if _, dup := byKey[item.Key]; dup {
			continue
		}
		entry := indexed{item: item, index: i}
		byKey[item.Key] = entry
		items = append(items, entry)
	}
	return items, byKey
}
