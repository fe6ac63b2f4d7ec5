package main

import (
	"time"

	"github.com/spf13/cobra"

	"docdelta/internal/diff"
	"docdelta/internal/errors"
	"docdelta/internal/revision"
)

var (
	diffFormat         string
	diffAll            bool
	diffFailOnDegraded bool
	diffRefresh        bool
	diffNoHistory      bool
)

var diffCmd = &cobra.Command{
	Use:   "diff <before> [after]",
	Short: "Compare documentation quality between two revisions",
	Long: `Compare the documentation grades of every code object between two revisions.

<before> must be a git revision (hash, tag or branch). [after] defaults to the
live working tree, including uncommitted changes; pass WORKTREE to name it
explicitly.

Objects are reported as added, removed, improved or degraded. Unchanged
objects are omitted unless --all is given.

Examples:
  # What did my uncommitted work do to the docs?
  docdelta diff HEAD

  # Compare a release tag with main
  docdelta diff v1.2.0 main

  # Fail CI when documentation got worse
  docdelta diff origin/main --fail-on-degraded

  # Machine-readable output
  docdelta diff v1.2.0 --format json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().StringVar(&diffFormat, "format", "human", "Output format (json, yaml, human)")
	diffCmd.Flags().BoolVar(&diffAll, "all", false, "Include unchanged objects")
	diffCmd.Flags().BoolVar(&diffFailOnDegraded, "fail-on-degraded", false, "Exit with status 1 when any object degraded")
	diffCmd.Flags().BoolVar(&diffRefresh, "refresh", false, "Ignore cached snapshots and rebuild them")
	diffCmd.Flags().BoolVar(&diffNoHistory, "no-history", false, "Do not record this comparison in the history database")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	start := time.Now()

	before, err := parseRevisionArg(args[0])
	if err != nil {
		return err
	}
	after := revision.Live()
	if len(args) == 2 {
		if after, err = parseRevisionArg(args[1]); err != nil {
			return err
		}
	}

	ctx, cancel := newContext(cmd)
	defer cancel()

	a, err := newApp(cmd, !diffNoHistory)
	if err != nil {
		return err
	}
	defer a.Close()

	a.materializer.SetRefresh(diffRefresh)

	d, err := diff.New(ctx, a.materializer, a.repoRoot, before, after)
	if err != nil {
		return err
	}

	report := diff.NewReport(d, diff.ReportOptions{IncludeUnchanged: diffAll})
	if !report.ValidateCounts() {
		return errors.New(errors.InternalError, "Report counts do not match the comparison summary", nil, nil)
	}

	if after.IsLive() && a.git.IsAvailable() {
		if state, err := a.git.RepoState(ctx, a.repoRoot); err != nil {
			a.logger.Debug("Could not compute repository state", "error", err)
		} else {
			report.After.Dirty = state.Dirty
		}
	}

	if a.history != nil {
		id, err := a.history.SaveRun(ctx, report)
		if err != nil {
			a.logger.Warn("Failed to record comparison", "error", err)
		} else {
			a.logger.Debug("Recorded comparison", "runId", id)
		}
	}

	a.logger.Info("Comparison completed",
		"before", before.String(),
		"after", after.String(),
		"added", report.Summary.Added,
		"removed", report.Summary.Removed,
		"improved", report.Summary.Improved,
		"degraded", report.Summary.Degraded,
		"duration", time.Since(start).Milliseconds(),
	)

	if err := writeOutput(cmd, report, diffFormat); err != nil {
		return err
	}

	if diffFailOnDegraded && report.HasDegraded() {
		return &exitCodeError{code: exitDegraded}
	}
	return nil
}

// parseRevisionArg parses a CLI revision, mapping bad input to a usage error.
func parseRevisionArg(s string) (revision.Revision, error) {
	rev, err := revision.Parse(s)
	if err != nil {
		return revision.Revision{}, errors.New(errors.UsageError, "Invalid revision: "+s, err, nil)
	}
	return rev, nil
}
