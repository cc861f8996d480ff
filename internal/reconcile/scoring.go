package reconcile

import (
	"strings"

	"github.com/jonathan/resume-review/internal/resume"
)

// Default heuristic tuning.
const (
	DefaultPrefixWords          = 5
	DefaultBulletThreshold      = 0.55
	DefaultProjectMoveThreshold = 0.5
	summaryPrefixLen            = 50
)

// Scores contributed by each project move signal. The overall score is the strongest signal.
const (
	scoreNameMatch    = 1.0
	scoreSummaryMatch = 0.8
	scoreTechOverlap  = 0.6
)

const bulletPunctuation = ".,:;!?"

// NormalizeBullet lowercases and trims a bullet and strips trailing punctuation.
func NormalizeBullet(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimRight(s, bulletPunctuation)
	return strings.TrimSpace(s)
}

// SignificantStart returns the first n words of a normalized bullet.
func SignificantStart(s string, n int) []string {
	words := strings.Fields(NormalizeBullet(s))
	out := make([]string, 0, n)
	for _, w := range words {
		if len(out) == n {
			break
		}
		if w = strings.Trim(w, bulletPunctuation+`"'()`); w != "" {
			out = append(out, w)
		}
	}
	return out
}

// PrefixScore rates how likely two bullets are rewordings of each other by
// comparing their significant starts as word multisets (Dice coefficient).
// Identical starts score 1; disjoint ones score 0.
func PrefixScore(a, b string, words int) float64 {
	if words <= 0 {
		words = DefaultPrefixWords
	}
	wa, wb := SignificantStart(a, words), SignificantStart(b, words)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	counts := make(map[string]int, len(wa))
	for _, w := range wa {
		counts[w]++
	}
	common := 0
	for _, w := range wb {
		if counts[w] > 0 {
			counts[w]--
			common++
		}
	}
	return 2 * float64(common) / float64(len(wa)+len(wb))
}

// ProjectMoveScore rates how likely a removed experience reappears as project p.
// Signals: the project's name or role equals the experience title (or its name
// equals the company); the project summary contains the start of the experience
// description; the project tech stack shares a skill with the experience.
func ProjectMoveScore(exp resume.Experience, p resume.Project) float64 {
	title, company := resume.Fold(exp.Title), resume.Fold(exp.Company)
	name, role := resume.Fold(p.Name), resume.Fold(p.Role)

	if title != "" && (name == title || role == title) {
		return scoreNameMatch
	}
	if company != "" && name == company {
		return scoreNameMatch
	}

	if desc := resume.Fold(exp.Description); desc != "" {
		if r := []rune(desc); len(r) > summaryPrefixLen {
			desc = strings.TrimSpace(string(r[:summaryPrefixLen]))
		}
		if strings.Contains(resume.Fold(p.Summary), desc) {
			return scoreSummaryMatch
		}
	}

	if sharesSkill(exp.SkillsUsed, p.TechStack) {
		return scoreTechOverlap
	}
	return 0
}

func sharesSkill(skills []any, stack []string) bool {
	if len(skills) == 0 || len(stack) == 0 {
		return false
	}
	inStack := make(map[string]bool, len(stack))
	for _, s := range stack {
		if k := resume.Fold(s); k != "" {
			inStack[k] = true
		}
	}
	for _, s := range skills {
		if key := resume.NormalizeSkill(s).Key; key != "" && inStack[key] {
			return true
		}
	}
	return false
}
