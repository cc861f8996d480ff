package reconcile

import (
	"github.com/jonathan/resume-review/internal/compare"
	"github.com/jonathan/resume-review/internal/resume"
)

// Pair links a before-experience to the after-experience it became.
type Pair struct {
	Before int
	After  int
}

// ExperienceMatch is the result of pairing two experience lists.
type ExperienceMatch struct {
	Pairs           []Pair // in after order
	UnmatchedBefore []int
	UnmatchedAfter  []int
}

type pairRule func(b, a resume.Experience, ctx *pairing) bool

type pairing struct {
	before, after      []resume.Experience
	claimedB, claimedA []bool
}

var pairRules = []pairRule{
	// identical content, so that unlabeled or non-object entries still pair with themselves
	func(b, a resume.Experience, _ *pairing) bool {
		return !compare.AreDifferent(b.Value, a.Value)
	},
	// title and company
	func(b, a resume.Experience, _ *pairing) bool {
		bt, bc := resume.Fold(b.Title), resume.Fold(b.Company)
		return bt+bc != "" && bt == resume.Fold(a.Title) && bc == resume.Fold(a.Company)
	},
	// company and start date
	func(b, a resume.Experience, _ *pairing) bool {
		bc, bd := resume.Fold(b.Company), resume.Fold(b.StartDate)
		return bc != "" && bd != "" && bc == resume.Fold(a.Company) && bd == resume.Fold(a.StartDate)
	},
	// company, only when it is unambiguous on both sides
	func(b, a resume.Experience, ctx *pairing) bool {
		bc := resume.Fold(b.Company)
		if bc == "" || bc != resume.Fold(a.Company) {
			return false
		}
		return countCompany(ctx.after, ctx.claimedA, bc) == 1 && countCompany(ctx.before, ctx.claimedB, bc) == 1
	},
	// title only
	func(b, a resume.Experience, _ *pairing) bool {
		bt := resume.Fold(b.Title)
		return bt != "" && bt == resume.Fold(a.Title)
	},
}

// PairExperiences pairs entries one-to-one. Rules are tried from strongest to
// weakest over the whole list before moving on, so a strong match is never
// stolen by an earlier entry's weak one. Within a rule, before-entries are
// visited in order and take the first unclaimed after-entry that fits.
func PairExperiences(before, after []resume.Experience) ExperienceMatch {
	ctx := &pairing{
		before:   before,
		after:    after,
		claimedB: make([]bool, len(before)),
		claimedA: make([]bool, len(after)),
	}
	pairOf := make([]int, len(after))
	for j := range pairOf {
		pairOf[j] = -1
	}

	for _, rule := range pairRules {
		for i, b := range before {
			if ctx.claimedB[i] {
				continue
			}
			for j, a := range after {
				if ctx.claimedA[j] || !rule(b, a, ctx) {
					continue
				}
				ctx.claimedB[i], ctx.claimedA[j] = true, true
				pairOf[j] = i
				break
			}
		}
	}

	var m ExperienceMatch
	for j, i := range pairOf {
		if i >= 0 {
			m.Pairs = append(m.Pairs, Pair{Before: i, After: j})
		} else {
			m.UnmatchedAfter = append(m.UnmatchedAfter, j)
		}
	}
	for i, claimed := range ctx.claimedB {
		if !claimed {
			m.UnmatchedBefore = append(m.UnmatchedBefore, i)
		}
	}
	return m
}

func countCompany(list []resume.Experience, claimed []bool, company string) int {
	n := 0
	for i, e := range list {
		if !claimed[i] && resume.Fold(e.Company) == company {
			n++
		}
	}
	return n
}

// Move records an experience that reappears as a new project.
type Move struct {
	Experience int
	Project    int
	Score      float64
}

// DetectMoves checks each unmatched before-experience against the after
// projects that did not exist before. The best-scoring project at or above
// threshold wins (earliest on ties) and cannot be claimed twice.
func DetectMoves(exps []resume.Experience, unmatched []int, beforeProjects, afterProjects []resume.Project, threshold float64) []Move {
	if threshold <= 0 {
		threshold = DefaultProjectMoveThreshold
	}
	consumed := make([]bool, len(afterProjects))
	for j, p := range afterProjects {
		consumed[j] = existedBefore(p, beforeProjects)
	}

	var moves []Move
	for _, i := range unmatched {
		if i < 0 || i >= len(exps) {
			continue
		}
		best, bestScore := -1, 0.0
		for j, p := range afterProjects {
			if consumed[j] {
				continue
			}
			if score := ProjectMoveScore(exps[i], p); score >= threshold && score > bestScore {
				best, bestScore = j, score
			}
		}
		if best >= 0 {
			consumed[best] = true
			moves = append(moves, Move{Experience: i, Project: best, Score: bestScore})
		}
	}
	return moves
}

func existedBefore(p resume.Project, previous []resume.Project) bool {
	name, summary := resume.Fold(p.Name), resume.Fold(p.Summary)
	for _, old := range previous {
		if name != "" && resume.Fold(old.Name) == name {
			return true
		}
		if summary != "" && resume.Fold(old.Summary) == summary {
			return true
		}
	}
	return false
}
