// Package compare pairs code objects across two snapshots and classifies
// how their documentation changed.
package compare

import (
	"docdelta/internal/codebase"
	"docdelta/internal/errors"
)

// State is the classification of a pair. Exactly one holds per pair.
type State string

const (
	StateAdded     State = "added"
	StateRemoved   State = "removed"
	StateUnchanged State = "unchanged"
	StateImproved  State = "improved"
	StateDegraded  State = "degraded"
)

// CodeObjects is the same code object before and after a change. Either
// side may be nil, never both.
type CodeObjects struct {
	before *codebase.Object
	after  *codebase.Object
}

// NewCodeObjects pairs two objects. Passing the same instance twice is a
// caller bug and fails with IDENTITY_COLLISION.
func NewCodeObjects(before, after *codebase.Object) (*CodeObjects, error) {
	if before == nil && after == nil {
		return nil, errors.New(errors.UsageError, "a pair needs at least one object", nil, nil)
	}
	if before != nil && before == after {
		return nil, errors.New(
			errors.IdentityCollision,
			"before and after are the identical object",
			nil,
			nil,
		).WithDetails(map[string]string{"fullname": before.Fullname})
	}
	return &CodeObjects{before: before, after: after}, nil
}

// Before returns the object in the old snapshot, or nil.
func (c *CodeObjects) Before() *codebase.Object { return c.before }

// After returns the object in the new snapshot, or nil.
func (c *CodeObjects) After() *codebase.Object { return c.after }

// Fullname returns the identity key shared by both sides.
func (c *CodeObjects) Fullname() string {
	if c.before != nil {
		return c.before.Fullname
	}
	return c.after.Fullname
}

// Present reports whether both sides exist.
func (c *CodeObjects) Present() bool {
	return c.before != nil && c.after != nil
}

// Added reports whether the object only exists after the change.
func (c *CodeObjects) Added() bool {
	return c.before == nil && c.after != nil
}

// Removed reports whether the object only exists before the change.
func (c *CodeObjects) Removed() bool {
	return c.before != nil && c.after == nil
}

// Unchanged reports whether both sides exist with equal integer scores.
func (c *CodeObjects) Unchanged() bool {
	return c.Present() && c.before.IntScore() == c.after.IntScore()
}

// Changed reports whether both sides exist with different integer scores.
func (c *CodeObjects) Changed() bool {
	return c.Present() && !c.Unchanged()
}

// Degraded reports whether the score dropped.
func (c *CodeObjects) Degraded() bool {
	return c.Changed() && c.before.IntScore() > c.after.IntScore()
}

// Improved reports whether the score rose.
func (c *CodeObjects) Improved() bool {
	return c.Changed() && c.before.IntScore() < c.after.IntScore()
}

// Scores returns the integer scores before and after. A missing side
// reads as 0; this only affects display, never classification.
func (c *CodeObjects) Scores() [2]int {
	var s [2]int
	if c.before != nil {
		s[0] = c.before.IntScore()
	}
	if c.after != nil {
		s[1] = c.after.IntScore()
	}
	return s
}

// Delta returns after minus before, using Scores.
func (c *CodeObjects) Delta() int {
	s := c.Scores()
	return s[1] - s[0]
}

// Grade returns the current grade. A removed object has none.
func (c *CodeObjects) Grade() (codebase.Grade, error) {
	if c.after == nil {
		return "", errors.New(errors.UsageError, "removed object has no current grade", nil, nil).
			WithDetails(map[string]string{"fullname": c.Fullname()})
	}
	return c.after.Grade, nil
}

// State returns the single classification that holds for this pair.
func (c *CodeObjects) State() State {
	switch {
	case c.Added():
		return StateAdded
	case c.Removed():
		return StateRemoved
	case c.Improved():
		return StateImproved
	case c.Degraded():
		return StateDegraded
	default:
		return StateUnchanged
	}
}
