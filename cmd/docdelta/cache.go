package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docdelta/internal/errors"
	"docdelta/internal/snapshot"
)

var cacheFormat string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage cached revision snapshots",
	Long: `Snapshots of fixed revisions are cached in .docdelta/cache so later
comparisons skip cloning and parsing. The live working tree is never cached.`,
}

var cacheLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List cached snapshots",
	Args:  cobra.NoArgs,
	RunE:  runCacheLs,
}

var cachePathCmd = &cobra.Command{
	Use:   "path <revision>",
	Short: "Print the cache file a revision maps to",
	Args:  cobra.ExactArgs(1),
	RunE:  runCachePath,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached snapshots",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

func init() {
	cacheLsCmd.Flags().StringVar(&cacheFormat, "format", "human", "Output format (json, yaml, human)")

	cacheCmd.AddCommand(cacheLsCmd)
	cacheCmd.AddCommand(cachePathCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

// CacheListResponseCLI is the response of cache ls
type CacheListResponseCLI struct {
	Dir        string           `json:"dir" yaml:"dir"`
	Entries    []snapshot.Entry `json:"entries" yaml:"entries"`
	TotalBytes int64            `json:"totalBytes" yaml:"totalBytes"`
}

func runCacheLs(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := a.store.List()
	if err != nil {
		return errors.New(errors.InternalError, "Failed to list cache", err, nil)
	}

	resp := &CacheListResponseCLI{Dir: a.store.Dir(), Entries: entries}
	if resp.Entries == nil {
		resp.Entries = []snapshot.Entry{}
	}
	for _, e := range entries {
		resp.TotalBytes += e.Bytes
	}
	return writeOutput(cmd, resp, cacheFormat)
}

func runCachePath(cmd *cobra.Command, args []string) error {
	rev, err := parseRevisionArg(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	path, err := a.store.Filename(rev)
	if err != nil {
		return err
	}

	exists := "missing"
	if _, err := os.Stat(path); err == nil {
		exists = "cached"
	}
	a.logger.Debug("Resolved cache path", "revision", rev.String(), "state", exists)

	_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
	return err
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	removed, err := a.store.Clear()
	if err != nil {
		return errors.New(errors.InternalError, "Failed to clear cache", err, nil).
			WithDetails(map[string]int{"removed": removed})
	}

	a.logger.Info("Cache cleared", "removed", removed, "dir", a.store.Dir())
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached snapshot(s)\n", removed)
	return err
}
