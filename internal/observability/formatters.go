// Package observability provides formatted text output of review sessions for the CLI.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/resume-review/internal/review"
	"github.com/jonathan/resume-review/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of changes displayed per section
	maxItemsToShow = 12
	// valueWidth bounds before/after excerpts
	valueWidth = 60
)

// Printer handles formatted output of change records
type Printer struct {
	out      io.Writer
	maxItems int
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, maxItems: maxItemsToShow}
}

// ShowAll disables truncation of long sections.
func (p *Printer) ShowAll() {
	p.maxItems = 0
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, boxWidth-4), boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintHeading prints a single-line banner, e.g. the name of a candidate version.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintHeading(text string) {
	fmt.Fprintf(p.out, "\n== %s ==\n", text)
}

// PrintSection outputs the changes of one section with their review status.
func (p *Printer) PrintSection(group review.SectionGroup) {
	if len(group.Changes) == 0 {
		return
	}
	title := fmt.Sprintf("%s (%d)", strings.ToUpper(group.Section), len(group.Changes))
	p.printBox(title, p.describe(group.Changes))
}

// PrintUngrouped outputs informational changes that are not offered for review.
func (p *Printer) PrintUngrouped(records []types.ChangeRecord) {
	if len(records) == 0 {
		return
	}
	p.printBox(fmt.Sprintf("OTHER CHANGES (%d)", len(records)), p.describe(records))
}

func (p *Printer) describe(records []types.ChangeRecord) string {
	var sb strings.Builder
	count := len(records)
	if p.maxItems > 0 && count > p.maxItems {
		count = p.maxItems
	}
	for i := 0; i < count; i++ {
		r := records[i]
		sb.WriteString(fmt.Sprintf("%s %s\n", statusMark(r.Status), r.Change))
		if r.BeforeDisplay != "" {
			sb.WriteString(fmt.Sprintf("    - %s\n", firstLine(r.BeforeDisplay)))
		}
		if r.AfterDisplay != "" {
			sb.WriteString(fmt.Sprintf("    + %s\n", firstLine(r.AfterDisplay)))
		}
		for _, b := range r.Bullets {
			switch b.Type {
			case types.ChangeAdded:
				sb.WriteString(fmt.Sprintf("      + %s\n", b.After))
			case types.ChangeRemoved:
				sb.WriteString(fmt.Sprintf("      - %s\n", b.Before))
			default:
				sb.WriteString(fmt.Sprintf("      ~ %s\n", b.After))
			}
		}
	}
	if len(records) > count {
		sb.WriteString(fmt.Sprintf("... and %d more changes\n", len(records)-count))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// PrintProgress outputs review progress and decision counts.
func (p *Printer) PrintProgress(progress types.Progress, stats types.ReviewStats) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Reviewed: %d/%d (%d%%)\n", progress.Reviewed, progress.Total, progress.PercentComplete))
	sb.WriteString(fmt.Sprintf("Accepted: %d\n", stats.Accepted))
	sb.WriteString(fmt.Sprintf("Rejected: %d\n", stats.Rejected))
	sb.WriteString(fmt.Sprintf("Pending:  %d", progress.Pending))
	if progress.Pending > 0 {
		sb.WriteString("  (pending changes are applied as accepted)")
	}
	p.printBox("REVIEW PROGRESS", sb.String())
}

// PrintDecisionStats outputs the per-section summary of an exported decision map.
func (p *Printer) PrintDecisionStats(stats types.DecisionStats) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Decisions: %d  accepted: %d  rejected: %d  (%.0f%% accepted)\n",
		stats.Total, stats.Accepted, stats.Rejected, stats.AcceptRatio*100))

	sections := make([]string, 0, len(stats.BySection))
	for s := range stats.BySection {
		sections = append(sections, s)
	}
	sort.Strings(sections)
	for _, s := range sections {
		sec := stats.BySection[s]
		sb.WriteString(fmt.Sprintf("  %-12s ✓ %d  ✗ %d\n", s, sec.Accepted, sec.Rejected))
	}
	p.printBox("APPLIED DECISIONS", strings.TrimSuffix(sb.String(), "\n"))
}

func statusMark(s types.Status) string {
	switch s {
	case types.StatusAccepted:
		return "[✓]"
	case types.StatusRejected:
		return "[✗]"
	default:
		return "[ ]"
	}
}

func firstLine(s string) string {
	line, _, more := strings.Cut(s, "\n")
	if more {
		line += " …"
	}
	return truncate(line, valueWidth)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
