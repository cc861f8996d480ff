package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-review/internal/observability"
	"github.com/jonathan/resume-review/internal/review"
	"github.com/jonathan/resume-review/internal/types"
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "List the changes between a resume and its rewritten versions",
	Long: "Computes the reviewable changes between --previous and each --current document. " +
		"Several --current versions are compared against the same previous document in parallel.",
	RunE: runDiff,
}

var (
	diffPrevious string
	diffCurrent  []string
	diffChanges  string
	diffMode     string
	diffFormat   string
	diffOutput   string
	diffShowAll  bool
)

func init() {
	diffCmd.Flags().StringVarP(&diffPrevious, "previous", "p", "", "Path to the original resume JSON (required)")
	diffCmd.Flags().StringArrayVarP(&diffCurrent, "current", "c", nil, "Path to a rewritten resume JSON (required, repeatable)")
	diffCmd.Flags().StringVar(&diffChanges, "changes", "", "Path to changes reported by the rewriting step (optional)")
	diffCmd.Flags().StringVar(&diffMode, "mode", "", "compute, enrich or merge (default: enrich when --changes is set)")
	diffCmd.Flags().StringVarP(&diffFormat, "format", "f", "text", "Output format: text or json")
	diffCmd.Flags().StringVarP(&diffOutput, "out", "o", "", "Write output to a file instead of stdout")
	diffCmd.Flags().BoolVar(&diffShowAll, "all", false, "Show every change instead of truncating long sections")

	if err := diffCmd.MarkFlagRequired("previous"); err != nil {
		panic(fmt.Sprintf("failed to mark previous flag as required: %v", err))
	}
	if err := diffCmd.MarkFlagRequired("current"); err != nil {
		panic(fmt.Sprintf("failed to mark current flag as required: %v", err))
	}

	rootCmd.AddCommand(diffCmd)
}

// diffResult is the change list of one candidate version.
type diffResult struct {
	Current   string                `json:"current"`
	Sections  []review.SectionGroup `json:"sections"`
	Ungrouped []types.ChangeRecord  `json:"ungrouped,omitempty"`
	Stats     types.ReviewStats     `json:"stats"`
	Progress  types.Progress        `json:"progress"`
}

func runDiff(cmd *cobra.Command, _ []string) error {
	if diffFormat != "text" && diffFormat != "json" {
		return fmt.Errorf("unknown format %q: expected text or json", diffFormat)
	}
	mode := types.Mode(diffMode)
	switch mode {
	case "", types.ModeCompute, types.ModeEnrich, types.ModeMerge:
	default:
		return fmt.Errorf("unknown mode %q: expected compute, enrich or merge", diffMode)
	}
	if diffChanges != "" && len(diffCurrent) != 1 {
		return fmt.Errorf("--changes describes a single rewrite; pass exactly one --current")
	}

	cfg, err := settings()
	if err != nil {
		return err
	}
	previous, err := loadDocument(diffPrevious)
	if err != nil {
		return err
	}
	supplied, err := loadChanges(diffChanges)
	if err != nil {
		return err
	}

	results := make([]diffResult, len(diffCurrent))
	var g errgroup.Group
	for i, path := range diffCurrent {
		g.Go(func() error {
			current, err := loadDocument(path)
			if err != nil {
				return err
			}
			sess := review.NewSession(previous, current, review.Options{
				ID:          path,
				Mode:        mode,
				ChangesMade: supplied,
				Diff:        cfg.MatchOptions(),
			})
			results[i] = diffResult{
				Current:   path,
				Sections:  sess.Grouped(),
				Ungrouped: sess.Ungrouped(),
				Stats:     sess.Stats(),
				Progress:  sess.Progress(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return writeTo(cmd.OutOrStdout(), diffOutput, func(w io.Writer) error {
		if diffFormat == "json" {
			return writeJSON(w, results)
		}
		printDiff(w, results)
		return nil
	})
}

func printDiff(w io.Writer, results []diffResult) {
	printer := observability.NewPrinter(w)
	if diffShowAll {
		printer.ShowAll()
	}
	for _, res := range results {
		printer.PrintHeading(res.Current)
		if len(res.Sections) == 0 && len(res.Ungrouped) == 0 {
			_, _ = fmt.Fprintln(w, "No changes.")
			continue
		}
		for _, group := range res.Sections {
			printer.PrintSection(group)
		}
		printer.PrintUngrouped(res.Ungrouped)
		printer.PrintProgress(res.Progress, res.Stats)
	}
}
