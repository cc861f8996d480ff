// Package compare decides whether two document values differ and renders values for display.
package compare

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/jonathan/resume-review/internal/resume"
)

// AreDifferent reports whether a and b differ once formatting noise is ignored.
// Rules apply in order:
//  1. absence against an empty string or list is equal, against anything else different
//  2. strings compare after trimming and collapsing whitespace runs
//  3. lists differ on length, otherwise compare as order-insensitive multisets
//  4. objects compare by canonical serialization
//  5. everything else compares strictly
func AreDifferent(a, b any) bool {
	a, b = resume.Clone(a), resume.Clone(b)

	if a == nil || b == nil {
		if a == nil && b == nil {
			return false
		}
		present := a
		if present == nil {
			present = b
		}
		return !isBlank(present)
	}

	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return NormalizeSpace(sa) != NormalizeSpace(sb)
		}
		return true
	}

	la, aIsList := a.([]any)
	lb, bIsList := b.([]any)
	if aIsList && bIsList {
		if len(la) != len(lb) {
			return true
		}
		ka, errA := canonicalList(la)
		kb, errB := canonicalList(lb)
		if errA != nil || errB != nil {
			return !reflect.DeepEqual(la, lb)
		}
		return ka != kb
	}

	ma, aIsObj := a.(map[string]any)
	mb, bIsObj := b.(map[string]any)
	if aIsObj && bIsObj {
		ja, errA := json.Marshal(ma)
		jb, errB := json.Marshal(mb)
		if errA != nil || errB != nil {
			return !reflect.DeepEqual(ma, mb)
		}
		return string(ja) != string(jb)
	}

	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			return fa != fb
		}
	}
	return !reflect.DeepEqual(a, b)
}

// NormalizeSpace trims s and collapses internal whitespace runs to one space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	}
	return false
}

// canonicalList serializes each element and sorts the results so that two
// lists holding the same elements in different orders produce the same key.
func canonicalList(list []any) (string, error) {
	parts := make([]string, len(list))
	for i, v := range list {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		parts[i] = string(b)
	}
	sort.Strings(parts)
	return "[" + strings.Join(parts, ",") + "]", nil
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

// FormatForDisplay renders a value as a single display string. It is
// deterministic and never panics: absent values render empty, lists of named
// records render their names, objects render as indented JSON.
func FormatForDisplay(v any) string {
	v = resume.Clone(v)
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		if len(t) > 0 {
			if first := resume.Object(t[0]); first != nil && resume.Text(first["name"]) != "" {
				names := make([]string, 0, len(t))
				for _, item := range t {
					names = append(names, resume.Field(resume.Object(item), "name"))
				}
				return strings.Join(names, ", ")
			}
		}
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = element(item)
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		b, err := json.MarshalIndent(t, "", "  ")
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

func element(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

// BulletPrefix marks each line of a bulleted display.
const BulletPrefix = "• "

// FormatBullets renders free-text bullets as a multi-line bulleted list.
func FormatBullets(bullets []string) string {
	if len(bullets) == 0 {
		return ""
	}
	lines := make([]string, len(bullets))
	for i, b := range bullets {
		lines[i] = BulletPrefix + b
	}
	return strings.Join(lines, "\n")
}
