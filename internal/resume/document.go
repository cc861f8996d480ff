// Package resume provides the structured resume document model shared by the diff and review engine.
package resume

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Document is a resume decoded as a generic JSON tree.
// Section shapes are heterogeneous, so the engine reads them through the
// accessors below instead of binding them to fixed structs.
type Document = map[string]any

// Section names as they appear at the top level of a Document.
const (
	SectionHeader     = "header"
	SectionSummary    = "summary"
	SectionSkills     = "skills"
	SectionExperience = "experience"
	SectionEducation  = "education"
	SectionLanguages  = "languages"
	SectionProjects   = "projects"
	SectionExtras     = "extras"
)

// Skill sub-collections under the skills section.
const (
	SkillsHard          = "hard_skills"
	SkillsSoft          = "soft_skills"
	SkillsTools         = "tools"
	SkillsMethodologies = "methodologies"
)

// SkillCategories lists the skill sub-collections in comparison order.
var SkillCategories = []string{SkillsHard, SkillsSoft, SkillsTools, SkillsMethodologies}

// Parse decodes a JSON resume. A top-level value that is not an object is an error;
// everything below the top level is accepted as-is.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse resume JSON: %w", err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// Load reads and parses a JSON resume file.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resume file %s: %w", path, err)
	}
	return Parse(data)
}

// Clone returns a deep copy of a JSON tree. Values that are not JSON containers
// are shared, which is safe because they are immutable.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Clone(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Clone(val)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	default:
		return v
	}
}

// CloneDocument deep-copies a document. A nil document yields an empty one.
func CloneDocument(doc Document) Document {
	if doc == nil {
		return Document{}
	}
	return Clone(doc).(map[string]any)
}

// Object returns v as an object, or nil when v has another shape.
func Object(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// List returns v as a list. Missing or malformed values degrade to an empty list.
func List(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	default:
		return nil
	}
}

// Strings returns the string elements of a list, skipping anything else.
func Strings(v any) []string {
	items := List(v)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Text returns the string form of a scalar, or "" for anything else.
func Text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64, int, bool:
		return fmt.Sprint(t)
	default:
		return ""
	}
}

// Field returns the first non-empty text value among keys of an object.
func Field(m map[string]any, keys ...string) string {
	if m == nil {
		return ""
	}
	for _, k := range keys {
		if s := Text(m[k]); strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// Fold lowercases and trims a string for case-insensitive comparison.
func Fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SectionList returns a top-level list section, or a sub-list of an object section.
func SectionList(doc Document, section string, sub ...string) []any {
	if doc == nil {
		return nil
	}
	v := doc[section]
	for _, key := range sub {
		v = Object(v)[key]
	}
	return List(v)
}
