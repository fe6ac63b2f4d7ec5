package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"docdelta/internal/errors"
	"docdelta/internal/storage"
)

var (
	historyFormat     string
	historyLimit      int
	historyStatsLimit int
	historyOlderThan  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past comparisons",
	Long: `Every diff is recorded in .docdelta/docdelta.db together with how each
revision was materialized. Disable recording with history.enabled=false or
diff --no-history.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent comparisons",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the report of a past comparison",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show snapshot cache effectiveness",
	Args:  cobra.NoArgs,
	RunE:  runHistoryStats,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old history records",
	Long: `Delete comparisons and materialization records older than --older-than.

Durations accept Go syntax (72h, 90m) and whole days (30d).`,
	Args: cobra.NoArgs,
	RunE: runHistoryPrune,
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyFormat, "format", "human", "Output format (json, yaml, human)")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum comparisons to list (0 = all)")
	historyStatsCmd.Flags().IntVar(&historyStatsLimit, "limit", 10, "Recent materializations to show (0 = all)")
	historyPruneCmd.Flags().StringVar(&historyOlderThan, "older-than", "30d", "Age of records to delete")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}

// HistoryListResponseCLI is the response of history list
type HistoryListResponseCLI struct {
	Runs []storage.Run `json:"runs" yaml:"runs"`
}

// HistoryStatsResponseCLI is the response of history stats
type HistoryStatsResponseCLI struct {
	Cache  storage.CacheStats        `json:"cache" yaml:"cache"`
	Recent []storage.Materialization `json:"recent" yaml:"recent"`
}

// openHistory builds the app and fails when no history database is open.
func openHistory(cmd *cobra.Command) (*app, error) {
	a, err := newApp(cmd, true)
	if err != nil {
		return nil, err
	}
	if a.history == nil {
		a.Close()
		return nil, errors.New(errors.UsageError, "History is not available", nil, []errors.FixAction{{
			Type:        errors.RunCommand,
			Command:     "docdelta config show",
			Safe:        true,
			Description: "Check that history.enabled is true",
		}})
	}
	return a, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	ctx, cancel := newContext(cmd)
	defer cancel()

	a, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	runs, err := a.history.ListRuns(ctx, historyLimit)
	if err != nil {
		return errors.New(errors.InternalError, "Failed to read history", err, nil)
	}
	if runs == nil {
		runs = []storage.Run{}
	}
	return writeOutput(cmd, &HistoryListResponseCLI{Runs: runs}, historyFormat)
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := newContext(cmd)
	defer cancel()

	a, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.history.GetReport(ctx, args[0])
	if err != nil {
		return errors.New(errors.InternalError, "Failed to read history", err, nil)
	}
	if report == nil {
		return errors.New(errors.UsageError, "No comparison with id "+args[0], nil, []errors.FixAction{{
			Type:    errors.RunCommand,
			Command: "docdelta history list",
			Safe:    true,
		}})
	}
	return writeOutput(cmd, report, historyFormat)
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	ctx, cancel := newContext(cmd)
	defer cancel()

	a, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.history.CacheStats(ctx)
	if err != nil {
		return errors.New(errors.InternalError, "Failed to read history", err, nil)
	}
	recent, err := a.history.ListMaterializations(ctx, historyStatsLimit)
	if err != nil {
		return errors.New(errors.InternalError, "Failed to read history", err, nil)
	}
	if recent == nil {
		recent = []storage.Materialization{}
	}
	return writeOutput(cmd, &HistoryStatsResponseCLI{Cache: stats, Recent: recent}, historyFormat)
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	age, err := parseAge(historyOlderThan)
	if err != nil {
		return errors.New(errors.UsageError, "Invalid --older-than: "+historyOlderThan, err, nil)
	}

	ctx, cancel := newContext(cmd)
	defer cancel()

	a, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	cutoff := time.Now().Add(-age)
	removed, err := a.history.Prune(ctx, cutoff)
	if err != nil {
		return errors.New(errors.InternalError, "Failed to prune history", err, nil)
	}

	a.logger.Info("History pruned", "removed", removed, "cutoff", cutoff.UTC())
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d record(s) older than %s\n", removed, historyOlderThan)
	return err
}

// parseAge parses a Go duration or a whole number of days such as "30d".
func parseAge(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid day count %q", days)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}
