// Package diff compares the documentation of two revisions of a working
// directory. It materializes both snapshots and pairs their objects; it
// computes nothing itself.
package diff

import (
	"context"

	"docdelta/internal/codebase"
	"docdelta/internal/compare"
	"docdelta/internal/errors"
	"docdelta/internal/materialize"
	"docdelta/internal/revision"
)

// Materializer produces snapshots with provenance.
type Materializer interface {
	Resolve(ctx context.Context, workDir string, rev revision.Revision) (*materialize.Result, error)
}

// Diff holds the two snapshots of a comparison and their comparer.
type Diff struct {
	workDir  string
	before   revision.Revision
	after    revision.Revision
	old      *materialize.Result
	new      *materialize.Result
	comparer *compare.Codebases
}

// New materializes before and after in workDir, old first, and pairs
// them. after is usually revision.Live(), the uncommitted working tree,
// which is also what the zero Revision denotes. before must be a fixed
// revision.
func New(ctx context.Context, m Materializer, workDir string, before, after revision.Revision) (*Diff, error) {
	if before.IsLive() {
		return nil, errors.New(errors.UsageError, "the before revision must be a commit, tag or branch", nil, nil)
	}

	old, err := m.Resolve(ctx, workDir, before)
	if err != nil {
		return nil, err
	}
	newer, err := m.Resolve(ctx, workDir, after)
	if err != nil {
		return nil, err
	}

	comparer, err := compare.NewCodebases(old.Snapshot, newer.Snapshot)
	if err != nil {
		return nil, err
	}

	return &Diff{
		workDir:  workDir,
		before:   before,
		after:    after,
		old:      old,
		new:      newer,
		comparer: comparer,
	}, nil
}

// WorkDir returns the directory that was compared.
func (d *Diff) WorkDir() string { return d.workDir }

// Before returns the old revision.
func (d *Diff) Before() revision.Revision { return d.before }

// After returns the new revision.
func (d *Diff) After() revision.Revision { return d.after }

// Old returns the snapshot of the before revision.
func (d *Diff) Old() *codebase.Snapshot { return d.old.Snapshot }

// New returns the snapshot of the after revision.
func (d *Diff) New() *codebase.Snapshot { return d.new.Snapshot }

// Comparer returns the pairing of Old and New.
func (d *Diff) Comparer() *compare.Codebases { return d.comparer }

// Events returns how the old and new snapshots were obtained.
func (d *Diff) Events() (old, new materialize.Event) {
	return d.old.Event, d.new.Event
}
