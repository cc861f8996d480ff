package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-review/internal/apply"
	"github.com/jonathan/resume-review/internal/db"
	"github.com/jonathan/resume-review/internal/observability"
	"github.com/jonathan/resume-review/internal/review"
	"github.com/jonathan/resume-review/internal/types"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Apply accept/reject decisions and write the final resume",
	Long: "Loads a decision file (section:index:field -> accepted|rejected), rolls back every rejected change " +
		"on the rewritten resume and writes the final document. Changes without a decision are applied.",
	RunE: runReview,
}

var (
	reviewPrevious  string
	reviewCurrent   string
	reviewChanges   string
	reviewDecisions string
	reviewOutput    string
	reviewRecord    bool
	reviewStrict    bool
)

func init() {
	reviewCmd.Flags().StringVarP(&reviewPrevious, "previous", "p", "", "Path to the original resume JSON (required)")
	reviewCmd.Flags().StringVarP(&reviewCurrent, "current", "c", "", "Path to the rewritten resume JSON (required)")
	reviewCmd.Flags().StringVar(&reviewChanges, "changes", "", "Path to changes reported by the rewriting step (optional)")
	reviewCmd.Flags().StringVarP(&reviewDecisions, "decisions", "d", "", "Path to decisions JSON (optional, default accepts everything)")
	reviewCmd.Flags().StringVarP(&reviewOutput, "out", "o", "", "Path to the final resume JSON (required)")
	reviewCmd.Flags().BoolVar(&reviewRecord, "record", false, "Store the applied review in PostgreSQL (DATABASE_URL)")
	reviewCmd.Flags().BoolVar(&reviewStrict, "strict", false, "Fail when a change has no decision")

	for _, name := range []string{"previous", "current", "out"} {
		if err := reviewCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}

	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, _ []string) error {
	cfg, err := settings()
	if err != nil {
		return err
	}
	ctx := context.Background()

	previous, current, err := loadPair(reviewPrevious, reviewCurrent)
	if err != nil {
		return err
	}
	supplied, err := loadChanges(reviewChanges)
	if err != nil {
		return err
	}

	sess := review.NewSession(previous, current, review.Options{
		ID:          reviewCurrent,
		ChangesMade: supplied,
		Diff:        cfg.MatchOptions(),
	})

	if reviewDecisions != "" {
		decisions, err := loadDecisions(reviewDecisions)
		if err != nil {
			return err
		}
		if err := decideAll(sess, decisions); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	progress, other := sess.Progress(), sess.UngroupedPending()
	if progress.Pending > 0 || other > 0 {
		undecided := fmt.Sprintf("%d of %d changes", progress.Pending, progress.Total)
		if other > 0 {
			undecided += fmt.Sprintf(" and %d other change(s)", other)
		}
		if reviewStrict {
			return fmt.Errorf("%s have no decision", undecided)
		}
		_, _ = fmt.Fprintf(out, "Warning: %s were not reviewed and will be applied.\n", undecided)
	}

	var recorder apply.Recorder
	if reviewRecord {
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("--record requires DATABASE_URL (environment or config file)")
		}
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			return err
		}
		recorder = database
	}

	result, err := sess.Apply(ctx, apply.NewApplier(recorder))
	if err != nil {
		return err
	}

	if err := writeTo(out, reviewOutput, func(w io.Writer) error { return writeJSON(w, result.Document) }); err != nil {
		return err
	}

	observability.NewPrinter(out).PrintDecisionStats(result.Stats)
	if result.ReviewID != "" {
		_, _ = fmt.Fprintf(out, "Recorded applied review %s\n", result.ReviewID)
	}
	_, _ = fmt.Fprintf(out, "Final resume written to %s\n", reviewOutput)
	return nil
}

// decideAll records a decision file in key order so errors are reported deterministically.
func decideAll(sess *review.Session, decisions types.DecisionMap) error {
	keys := make([]types.DecisionKey, 0, len(decisions))
	for k := range decisions {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	for _, k := range keys {
		if err := sess.Decide(k, decisions[k]); err != nil {
			return fmt.Errorf("decision %s: %w", k, err)
		}
	}
	return nil
}
