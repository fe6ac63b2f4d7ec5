package diff

import (
	"time"

	"docdelta/internal/codebase"
	"docdelta/internal/compare"
	"docdelta/internal/materialize"
)

// SchemaVersion is the current report schema version
const SchemaVersion = 1

// Report is the serializable outcome of a Diff, consumed by the CLI
// renderers and the run history.
type Report struct {
	// SchemaVersion for forward compatibility
	SchemaVersion int `json:"schemaVersion" yaml:"schemaVersion"`

	WorkDir string       `json:"workDir" yaml:"workDir"`
	Before  RevisionInfo `json:"before" yaml:"before"`
	After   RevisionInfo `json:"after" yaml:"after"`

	// GeneratedAt is when the report was built
	GeneratedAt time.Time `json:"generatedAt" yaml:"generatedAt"`

	Summary compare.Summary `json:"summary" yaml:"summary"`

	// Entries lists changed objects, sorted by fullname. Unchanged
	// objects are included only on request.
	Entries []Entry `json:"entries" yaml:"entries"`
}

// RevisionInfo describes one side of the comparison.
type RevisionInfo struct {
	Revision   string `json:"revision" yaml:"revision"`
	Live       bool   `json:"live" yaml:"live"`
	Source     string `json:"source" yaml:"source"`
	Commit     string `json:"commit,omitempty" yaml:"commit,omitempty"`
	SnapshotID string `json:"snapshotId" yaml:"snapshotId"`
	Objects    int    `json:"objects" yaml:"objects"`
	DurationMs int64  `json:"durationMs" yaml:"durationMs"`

	// Dirty is set for the live tree when it has uncommitted changes
	Dirty bool `json:"dirty,omitempty" yaml:"dirty,omitempty"`
}

// Entry is one classified pair.
type Entry struct {
	Fullname    string         `json:"fullname" yaml:"fullname"`
	State       compare.State  `json:"state" yaml:"state"`
	Kind        codebase.Kind  `json:"kind" yaml:"kind"`
	File        string         `json:"file,omitempty" yaml:"file,omitempty"`
	Line        int            `json:"line,omitempty" yaml:"line,omitempty"`
	Scores      [2]int         `json:"scores" yaml:"scores"`
	Delta       int            `json:"delta" yaml:"delta"`
	GradeBefore codebase.Grade `json:"gradeBefore,omitempty" yaml:"gradeBefore,omitempty"`
	Grade       codebase.Grade `json:"grade,omitempty" yaml:"grade,omitempty"`
}

// ReportOptions configures report generation
type ReportOptions struct {
	IncludeUnchanged bool
	Now              func() time.Time
}

// NewReport builds a report from a finished diff.
func NewReport(d *Diff, opts ReportOptions) *Report {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	oldEv, newEv := d.Events()
	r := &Report{
		SchemaVersion: SchemaVersion,
		WorkDir:       d.WorkDir(),
		Before:        revisionInfo(oldEv, d.Old()),
		After:         revisionInfo(newEv, d.New()),
		GeneratedAt:   now().UTC(),
		Summary:       d.Comparer().Summary(),
		Entries:       []Entry{},
	}

	for _, p := range d.Comparer().Pairs() {
		if p.Unchanged() && !opts.IncludeUnchanged {
			continue
		}
		r.Entries = append(r.Entries, entryFor(p))
	}
	return r
}

func revisionInfo(ev materialize.Event, snap *codebase.Snapshot) RevisionInfo {
	return RevisionInfo{
		Revision:   ev.Revision.String(),
		Live:       ev.Revision.IsLive(),
		Source:     string(ev.Source),
		Commit:     ev.Commit,
		SnapshotID: SnapshotID(snap),
		Objects:    snap.Len(),
		DurationMs: ev.Duration.Milliseconds(),
	}
}

func entryFor(p *compare.CodeObjects) Entry {
	e := Entry{
		Fullname: p.Fullname(),
		State:    p.State(),
		Scores:   p.Scores(),
	}
	if p.Present() {
		e.Delta = p.Delta()
	}

	// location and kind come from the newest side
	ref := p.After()
	if ref == nil {
		ref = p.Before()
	}
	e.Kind = ref.Kind
	e.File = ref.File
	e.Line = ref.Line

	if b := p.Before(); b != nil {
		e.GradeBefore = b.Grade
	}
	if g, err := p.Grade(); err == nil {
		e.Grade = g
	}
	return e
}

// Counts tallies entries per state.
func (r *Report) Counts() map[compare.State]int {
	counts := make(map[compare.State]int)
	for _, e := range r.Entries {
		counts[e.State]++
	}
	return counts
}

// ValidateCounts checks that the entries agree with the summary. Unchanged
// entries are only checked when the report includes them.
func (r *Report) ValidateCounts() bool {
	c := r.Counts()
	ok := c[compare.StateAdded] == r.Summary.Added &&
		c[compare.StateRemoved] == r.Summary.Removed &&
		c[compare.StateImproved] == r.Summary.Improved &&
		c[compare.StateDegraded] == r.Summary.Degraded
	if n := c[compare.StateUnchanged]; n > 0 {
		ok = ok && n == r.Summary.Unchanged
	}
	return ok
}

// IsEmpty returns true if nothing was added, removed, improved or degraded
func (r *Report) IsEmpty() bool {
	s := r.Summary
	return s.Added == 0 && s.Removed == 0 && s.Improved == 0 && s.Degraded == 0
}

// HasDegraded reports whether any object's documentation got worse.
func (r *Report) HasDegraded() bool {
	return r.Summary.Degraded > 0
}
