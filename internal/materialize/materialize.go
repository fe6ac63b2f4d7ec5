// Package materialize turns a revision of a working directory into a
// parsed snapshot, either from the snapshot cache or by cloning the
// directory, resetting the clone to the revision and parsing it.
package materialize

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"docdelta/internal/codebase"
	"docdelta/internal/errors"
	"docdelta/internal/revision"
	"docdelta/internal/slogutil"
)

// VCS is the versioned-filesystem boundary.
type VCS interface {
	// Clone makes a full local copy of src, history included, at dst.
	Clone(ctx context.Context, src, dst string) error
	// VerifyRevision resolves rev to a commit in dir.
	VerifyRevision(ctx context.Context, dir, rev string) (string, error)
	// ResetHard forces dir's working tree to match rev exactly.
	ResetHard(ctx context.Context, dir, rev string) error
}

// Cache stores snapshots of fixed revisions.
type Cache interface {
	Filename(rev revision.Revision) (string, error)
	Load(path string) (*codebase.Snapshot, error)
	Save(snap *codebase.Snapshot, path string, rev revision.Revision) error
}

// Source says where a snapshot came from.
type Source string

const (
	SourceLive  Source = "live"
	SourceCache Source = "cache"
	SourceClone Source = "clone"
)

// Event describes one materialization.
type Event struct {
	Revision  revision.Revision
	Source    Source
	Commit    string // resolved commit; empty for live and cache hits
	CachePath string // empty for live
	Objects   int
	Duration  time.Duration
}

// Recorder receives an Event for every successful materialization.
type Recorder interface {
	RecordMaterialization(ctx context.Context, ev Event) error
}

// Result is a snapshot and how it was obtained.
type Result struct {
	Snapshot *codebase.Snapshot
	Event    Event
}

// Materializer produces snapshots for revisions of a working directory.
// A Materializer holds no per-call state; the temporary clone directory
// belongs to a single call.
type Materializer struct {
	vcs      VCS
	cache    Cache
	parser   codebase.Parser
	recorder Recorder
	logger   *slog.Logger

	// refresh skips cache reads; results are still written.
	refresh bool
}

// New creates a materializer.
func New(vcs VCS, cache Cache, parser codebase.Parser, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Materializer{
		vcs:    vcs,
		cache:  cache,
		parser: parser,
		logger: logger,
	}
}

// SetRecorder installs r as the recorder. nil disables recording.
func (m *Materializer) SetRecorder(r Recorder) {
	m.recorder = r
}

// SetRefresh makes fixed revisions bypass cache reads, so every call
// clones and parses and then overwrites the cache file.
func (m *Materializer) SetRefresh(refresh bool) {
	m.refresh = refresh
}

// Materialize returns the snapshot of workDir at rev.
func (m *Materializer) Materialize(ctx context.Context, workDir string, rev revision.Revision) (*codebase.Snapshot, error) {
	res, err := m.Resolve(ctx, workDir, rev)
	if err != nil {
		return nil, err
	}
	return res.Snapshot, nil
}

// Resolve is Materialize with provenance. Live revisions parse workDir
// directly and never touch the cache. Fixed revisions are loaded from the
// cache when present; otherwise workDir is cloned into a temporary
// directory, reset to rev, parsed and saved. A cache file that exists but
// cannot be decoded is returned as an error, not rebuilt.
func (m *Materializer) Resolve(ctx context.Context, workDir string, rev revision.Revision) (*Result, error) {
	start := time.Now()

	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, errors.New(errors.UsageError, "invalid working directory: "+workDir, err, nil)
	}

	var res *Result
	if rev.IsLive() {
		res, err = m.live(ctx, absDir, rev)
	} else {
		res, err = m.fixed(ctx, absDir, rev)
	}
	if err != nil {
		return nil, err
	}

	res.Event.Duration = time.Since(start)
	res.Event.Objects = res.Snapshot.Len()

	m.logger.Info("Materialized revision",
		"revision", rev.String(),
		"source", string(res.Event.Source),
		"objects", res.Event.Objects,
		"duration", res.Event.Duration,
	)
	m.record(ctx, res.Event)
	return res, nil
}

func (m *Materializer) live(ctx context.Context, dir string, rev revision.Revision) (*Result, error) {
	snap, err := m.parser.Parse(ctx, dir)
	if err != nil {
		return nil, err
	}
	return &Result{Snapshot: snap, Event: Event{Revision: rev, Source: SourceLive}}, nil
}

func (m *Materializer) fixed(ctx context.Context, dir string, rev revision.Revision) (*Result, error) {
	path, err := m.cache.Filename(rev)
	if err != nil {
		return nil, err
	}

	if !m.refresh {
		snap, err := m.cache.Load(path)
		switch {
		case err == nil:
			m.logger.Debug("Snapshot cache hit", "revision", rev.String(), "path", path)
			return &Result{
				Snapshot: snap,
				Event:    Event{Revision: rev, Source: SourceCache, CachePath: path},
			}, nil
		case !stderrors.Is(err, os.ErrNotExist):
			return nil, err
		}
		m.logger.Debug("Snapshot cache miss", "revision", rev.String(), "path", path)
	}

	snap, commit, err := m.fromClone(ctx, dir, rev)
	if err != nil {
		return nil, err
	}

	if err := m.cache.Save(snap, path, rev); err != nil {
		return nil, errors.New(errors.InternalError, "failed to save snapshot cache", err, nil).
			WithDetails(map[string]string{"revision": rev.ID(), "path": path})
	}
	m.saveAlias(snap, rev, commit)

	return &Result{
		Snapshot: snap,
		Event:    Event{Revision: rev, Source: SourceClone, Commit: commit, CachePath: path},
	}, nil
}

// fromClone parses rev in a throwaway clone of dir. The clone is removed
// on every path.
func (m *Materializer) fromClone(ctx context.Context, dir string, rev revision.Revision) (*codebase.Snapshot, string, error) {
	tmp, err := os.MkdirTemp("", "docdelta-")
	if err != nil {
		return nil, "", errors.New(errors.InternalError, "failed to create temporary directory", err, nil)
	}
	defer func() {
		if err := os.RemoveAll(tmp); err != nil {
			m.logger.Warn("Failed to remove temporary clone", "dir", tmp, "error", err)
		}
	}()

	clone := filepath.Join(tmp, filepath.Base(dir))
	if err := m.vcs.Clone(ctx, dir, clone); err != nil {
		return nil, "", err
	}

	commit, err := m.vcs.VerifyRevision(ctx, clone, rev.ID())
	if err != nil {
		return nil, "", err
	}
	if err := m.vcs.ResetHard(ctx, clone, commit); err != nil {
		return nil, "", err
	}

	snap, err := m.parser.Parse(ctx, clone)
	if err != nil {
		return nil, "", err
	}
	return snap, commit, nil
}

// saveAlias also caches the snapshot under the resolved commit hash, so
// asking for a branch and later for its commit parses once. Failures
// only cost a future cache miss.
func (m *Materializer) saveAlias(snap *codebase.Snapshot, rev revision.Revision, commit string) {
	if commit == "" || commit == rev.ID() {
		return
	}
	alias, err := revision.Fixed(commit)
	if err != nil {
		return
	}
	path, err := m.cache.Filename(alias)
	if err != nil {
		return
	}
	if err := m.cache.Save(snap, path, alias); err != nil {
		m.logger.Warn("Failed to cache snapshot under commit hash", "commit", commit, "error", err)
	}
}

func (m *Materializer) record(ctx context.Context, ev Event) {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.RecordMaterialization(ctx, ev); err != nil {
		m.logger.Warn("Failed to record materialization", "revision", ev.Revision.String(), "error", err)
	}
}
