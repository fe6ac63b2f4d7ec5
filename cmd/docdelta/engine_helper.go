package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"docdelta/internal/backends/git"
	"docdelta/internal/config"
	"docdelta/internal/errors"
	"docdelta/internal/grading"
	"docdelta/internal/materialize"
	"docdelta/internal/parser"
	"docdelta/internal/paths"
	"docdelta/internal/slogutil"
	"docdelta/internal/snapshot"
	"docdelta/internal/storage"
)

// app wires the components one command needs.
type app struct {
	repoRoot string
	cfg      *config.Config
	logger   *slog.Logger
	factory  *slogutil.LoggerFactory

	git          *git.Adapter
	grader       *grading.Grader
	parser       *parser.Parser
	store        *snapshot.Store
	materializer *materialize.Materializer

	// db and history are nil when history is disabled
	db      *storage.DB
	history *storage.History
}

// newApp resolves the working directory, loads its configuration and
// builds the logger, cache, parser and materializer. withHistory opens the
// history database when it is enabled in the configuration.
func newApp(cmd *cobra.Command, withHistory bool) (*app, error) {
	repoRoot, err := resolveRepoRoot(commandContext(cmd))
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		return nil, errors.New(errors.ConfigInvalid, "Failed to load configuration", err, nil).
			WithDetails(map[string]string{"path": paths.GetConfigPath(repoRoot)})
	}

	factory := slogutil.NewLoggerFactory(repoRoot, cfg, cliLevel())
	logger := factory.Logger(cmd.ErrOrStderr()).With("command", cmd.Name())

	a := &app{
		repoRoot: repoRoot,
		cfg:      cfg,
		logger:   logger,
		factory:  factory,
		git:      git.NewAdapter(cfg, logger.With("component", "git")),
	}

	weights, err := loadWeights(repoRoot, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.grader = grading.New(weights)
	a.parser = parser.NewFromConfig(cfg, a.grader, logger.With("component", "parser"))

	cacheDir := paths.GetCacheDir(repoRoot, cfg.Cache.Dir)
	warnCacheInWorkTree(logger, repoRoot, cacheDir)

	a.store, err = snapshot.NewStore(cacheDir, cfg.Cache.MemoEntries, logger.With("component", "cache"))
	if err != nil {
		a.Close()
		return nil, errors.New(errors.InternalError, "Failed to open snapshot cache", err, nil)
	}
	a.store.SetNamespace(cacheNamespace(cfg, weights))

	a.materializer = materialize.New(a.git, a.store, a.parser, logger.With("component", "materialize"))

	if withHistory && cfg.History.Enabled {
		db, err := storage.Open(repoRoot, logger.With("component", "storage"))
		if err != nil {
			// history is best effort; comparisons still work without it
			logger.Warn("History database unavailable", "error", err)
		} else {
			a.db = db
			a.history = storage.NewHistory(db)
			a.materializer.SetRecorder(a.history)
		}
	}

	logger.Debug("Initialized",
		"repoRoot", repoRoot,
		"cacheDir", a.store.Dir(),
		"history", a.history != nil,
	)
	return a, nil
}

// Close releases the database and log files.
func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("Failed to close history database", "error", err)
		}
	}
	if a.factory != nil {
		a.factory.Close()
	}
}

// resolveRepoRoot returns --repo or the current directory, moved up to
// the top of its git work tree when there is one.
func resolveRepoRoot(ctx context.Context) (string, error) {
	dir := repoFlag
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", errors.New(errors.InternalError, "Failed to get current directory", err, nil)
		}
		dir = cwd
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.New(errors.UsageError, "Invalid directory: "+dir, err, nil)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return "", errors.New(errors.UsageError, "Not a directory: "+abs, err, nil)
	}

	adapter := git.NewAdapter(nil, nil)
	if adapter.IsAvailable() {
		if top, err := adapter.RepoRoot(ctx, abs); err == nil && top != "" {
			return top, nil
		}
	}
	return abs, nil
}

// warnCacheInWorkTree flags a cache directory that git would report as
// untracked, which marks every live snapshot dirty.
func warnCacheInWorkTree(logger *slog.Logger, repoRoot, cacheDir string) {
	if !paths.IsWithinRepo(cacheDir, repoRoot) {
		return
	}
	rel, err := paths.CanonicalizePath(cacheDir, repoRoot)
	if err != nil || rel == paths.DataDirName || strings.HasPrefix(rel, paths.DataDirName+"/") {
		return
	}
	logger.Warn("Cache directory is inside the work tree; add it to .gitignore", "dir", rel)
}

// cliLevel returns the console level chosen with -v/--quiet, or nil.
func cliLevel() *slog.Level {
	if verbosity == 0 && !quietFlag {
		return nil
	}
	level := slogutil.LevelFromVerbosity(verbosity, quietFlag)
	return &level
}

// loadWeights reads the configured grading file; relative paths resolve
// against the repository root.
func loadWeights(repoRoot string, cfg *config.Config) (grading.Weights, error) {
	if cfg.Grading.File == "" {
		return grading.DefaultWeights(), nil
	}

	path := cfg.Grading.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(repoRoot, path)
	}
	w, err := grading.LoadWeights(path)
	if err != nil {
		return grading.Weights{}, errors.New(errors.ConfigInvalid, "Invalid grading weights", err, nil).
			WithDetails(map[string]string{"path": path})
	}
	return w, nil
}

// cacheNamespace fingerprints every setting that changes parse results.
func cacheNamespace(cfg *config.Config, w grading.Weights) string {
	data, _ := json.Marshal(struct {
		Parser  config.ParserConfig
		Weights grading.Weights
	}{cfg.Parser, w})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// newContext returns a context cancelled on interrupt.
func newContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(commandContext(cmd), os.Interrupt)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// writeOutput formats resp and writes it to the command's stdout.
func writeOutput(cmd *cobra.Command, resp interface{}, format string) error {
	out, err := FormatResponse(resp, OutputFormat(format))
	if err != nil {
		return fmt.Errorf("error formatting output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}
