package main

import (
	"github.com/spf13/cobra"

	"docdelta/internal/version"
)

var (
	// repoFlag is the working directory to compare (default: cwd)
	repoFlag string
	// verbosity is the count of -v flags
	verbosity int
	// quietFlag silences all logging on stderr
	quietFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "docdelta",
	Short: "docdelta - documentation quality diff between revisions",
	Long: `docdelta grades the documentation of every class, module and method in a
codebase and shows how it changed between two git revisions, or between a
revision and the uncommitted working tree.

Snapshots of committed revisions are cached in .docdelta/cache, so repeated
comparisons against the same revision skip cloning and parsing.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("docdelta version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&repoFlag, "repo", "C", "",
		"Working directory to analyze (default: current directory)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false,
		"Suppress log output")
}
