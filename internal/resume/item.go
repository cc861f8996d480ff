package resume

import "strings"

// ItemKind tags the two shapes a collection element can take.
type ItemKind int

const (
	// StringItem is a bare string element such as "Go".
	StringItem ItemKind = iota
	// NamedItem is an object element such as {"name": "Go", "proficiency": 4}.
	NamedItem
)

// Item is the canonical form of a collection element used for reconciliation.
type Item struct {
	Kind    ItemKind
	Key     string // folded comparison key; empty means the element is unkeyable
	Display string
	Level   *int
	Raw     any
}

// HasLevel reports whether the item carries a usable proficiency level.
func (i Item) HasLevel() bool {
	return i.Level != nil
}

// KeyFields is the field priority used to name an object element.
var KeyFields = []string{"name", "label", "title", "value"}

// LevelFields is the field priority used to read an object element's proficiency.
var LevelFields = []string{"proficiency", "level"}

// Normalizer turns a raw collection element into an Item.
type Normalizer func(v any) Item

// NormalizeSkill keys strings by themselves and objects by KeyFields; any
// recognised proficiency (number or level name) becomes the item level.
func NormalizeSkill(v any) Item {
	return normalize(v, KeyFields, NormalizeLevel)
}

// NormalizeLanguage keys by name; only numeric levels count as levels, so
// CEFR or free-text levels surface as plain modifications.
func NormalizeLanguage(v any) Item {
	return normalize(v, []string{"name", "language", "label"}, NumericLevel)
}

// NormalizeNamed keys by name or title and ignores levels (extras, projects).
func NormalizeNamed(v any) Item {
	return normalize(v, []string{"name", "title"}, nil)
}

// NormalizeEducation keys an education entry by degree and institution.
func NormalizeEducation(v any) Item {
	if s, ok := v.(string); ok {
		return Item{Kind: StringItem, Key: Fold(s), Display: s, Raw: v}
	}
	m := Object(v)
	if m == nil {
		return Item{Raw: v}
	}
	degree := Field(m, "degree", "title")
	institution := Field(m, "institution", "school")
	display := degree
	if institution != "" {
		display = degree + " - " + institution
	}
	key := ""
	if degree != "" || institution != "" {
		key = Fold(degree) + "|" + Fold(institution)
	}
	return Item{Kind: NamedItem, Key: key, Display: display, Raw: v}
}

func normalize(v any, keyFields []string, levelOf func(any) (int, bool)) Item {
	switch t := v.(type) {
	case string:
		return Item{Kind: StringItem, Key: Fold(t), Display: strings.TrimSpace(t), Raw: v}
	case map[string]any:
		display := Field(t, keyFields...)
		item := Item{Kind: NamedItem, Key: Fold(display), Display: strings.TrimSpace(display), Raw: v}
		if levelOf != nil {
			for _, f := range LevelFields {
				raw, present := t[f]
				if !present || raw == nil {
					continue
				}
				if lvl, ok := levelOf(raw); ok {
					item.Level = &lvl
				}
				break
			}
		}
		return item
	default:
		return Item{Raw: v}
	}
}
