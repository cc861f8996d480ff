package resume

import (
	"math"
	"strconv"
	"strings"
)

// Skill proficiency scale. Numeric levels in documents map onto it directly;
// level names are accepted case-insensitively.
const (
	LevelAwareness = iota
	LevelBeginner
	LevelIntermediate
	LevelProficient
	LevelAdvanced
	LevelExpert
)

var levelNames = []string{"awareness", "beginner", "intermediate", "proficient", "advanced", "expert"}

var levelAliases = map[string]int{
	"familiar":    LevelAwareness,
	"novice":      LevelBeginner,
	"basic":       LevelBeginner,
	"junior":      LevelBeginner,
	"competent":   LevelProficient,
	"confirmed":   LevelProficient,
	"experienced": LevelAdvanced,
	"senior":      LevelAdvanced,
	"master":      LevelExpert,
}

// NormalizeLevel converts a raw proficiency value (number, numeric string or
// level name) to the numeric scale. ok is false when v carries no usable level.
func NormalizeLevel(v any) (level int, ok bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int(math.Round(t)), true
	case int:
		return t, true
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		if s == "" {
			return 0, false
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return int(math.Round(n)), true
		}
		for i, name := range levelNames {
			if s == name {
				return i, true
			}
		}
		if n, found := levelAliases[s]; found {
			return n, true
		}
	}
	return 0, false
}

// NumericLevel accepts only numeric proficiency values (numbers or numeric strings).
// Language levels such as "C1" or "fluent" are not numeric and are compared as text.
func NumericLevel(v any) (level int, ok bool) {
	switch t := v.(type) {
	case float64, int:
		return NormalizeLevel(t)
	case string:
		if _, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return NormalizeLevel(t)
		}
	}
	return 0, false
}

// LevelName returns the display name for a level, or its number when off-scale.
func LevelName(level int) string {
	if level >= 0 && level < len(levelNames) {
		return levelNames[level]
	}
	return strconv.Itoa(level)
}
