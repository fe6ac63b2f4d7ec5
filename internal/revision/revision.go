// Package revision models the point-in-time states a codebase can be
// compared at: a fixed git revision, or the live working tree.
package revision

import (
	"fmt"
	"strings"
)

// Kind distinguishes fixed revisions from the live working tree.
type Kind int

const (
	// KindLive is the current, unsaved working tree.
	KindLive Kind = iota
	// KindFixed is an immutable git revision (hash, tag, branch).
	KindFixed
)

// LiveName is how the live working tree is displayed and accepted on the CLI.
const LiveName = "WORKTREE"

// Revision identifies a state of the codebase. The zero value is Live.
type Revision struct {
	kind Kind
	id   string
}

// Live returns the revision denoting the current working tree.
func Live() Revision {
	return Revision{kind: KindLive}
}

// Fixed returns a revision for a git commit-ish. The identifier is
// trimmed; an empty identifier is rejected.
func Fixed(id string) (Revision, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Revision{}, fmt.Errorf("revision identifier must not be empty")
	}
	if strings.HasPrefix(id, "-") {
		return Revision{}, fmt.Errorf("revision identifier %q must not start with '-'", id)
	}
	return Revision{kind: KindFixed, id: id}, nil
}

// MustFixed is like Fixed but panics on an invalid identifier.
func MustFixed(id string) Revision {
	r, err := Fixed(id)
	if err != nil {
		panic(err)
	}
	return r
}

// Parse turns CLI input into a revision. Empty input and LiveName map to Live.
func Parse(s string) (Revision, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, LiveName) {
		return Live(), nil
	}
	return Fixed(s)
}

// Kind reports whether the revision is fixed or live.
func (r Revision) Kind() Kind { return r.kind }

// IsLive reports whether the revision is the working tree.
func (r Revision) IsLive() bool { return r.kind == KindLive }

// ID returns the git identifier of a fixed revision, or "" for Live.
func (r Revision) ID() string { return r.id }

// CacheKey returns the key a snapshot of this revision may be cached
// under. Live revisions are mutable and never have one.
func (r Revision) CacheKey() (string, bool) {
	if r.kind != KindFixed {
		return "", false
	}
	return r.id, true
}

func (r Revision) String() string {
	if r.kind == KindLive {
		return LiveName
	}
	return r.id
}
