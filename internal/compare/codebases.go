package compare

import (
	"sort"

	"docdelta/internal/codebase"
	"docdelta/internal/errors"
)

// Codebases compares every object of two snapshots.
type Codebases struct {
	old   *codebase.Snapshot
	new   *codebase.Snapshot
	pairs []*CodeObjects
	index map[string]*CodeObjects
}

// Summary aggregates a comparison.
type Summary struct {
	Added         int                    `json:"added" yaml:"added"`
	Removed       int                    `json:"removed" yaml:"removed"`
	Improved      int                    `json:"improved" yaml:"improved"`
	Degraded      int                    `json:"degraded" yaml:"degraded"`
	Unchanged     int                    `json:"unchanged" yaml:"unchanged"`
	ObjectsBefore int                    `json:"objectsBefore" yaml:"objectsBefore"`
	ObjectsAfter  int                    `json:"objectsAfter" yaml:"objectsAfter"`
	AverageBefore float64                `json:"averageBefore" yaml:"averageBefore"`
	AverageAfter  float64                `json:"averageAfter" yaml:"averageAfter"`
	NetDelta      int                    `json:"netDelta" yaml:"netDelta"`
	GradesBefore  map[codebase.Grade]int `json:"gradesBefore" yaml:"gradesBefore"`
	GradesAfter   map[codebase.Grade]int `json:"gradesAfter" yaml:"gradesAfter"`
}

// NewCodebases pairs every object of old and new by fullname. Comparing
// a snapshot instance with itself fails with IDENTITY_COLLISION.
func NewCodebases(old, new *codebase.Snapshot) (*Codebases, error) {
	if old == nil || new == nil {
		return nil, errors.New(errors.UsageError, "both snapshots are required", nil, nil)
	}
	if old == new || old.Generation() == new.Generation() {
		return nil, errors.New(
			errors.IdentityCollision,
			"old and new are the identical snapshot",
			nil,
			nil,
		).WithDetails(map[string]uint64{"generation": old.Generation()})
	}

	c := &Codebases{
		old:   old,
		new:   new,
		index: make(map[string]*CodeObjects, max(old.Len(), new.Len())),
	}

	for _, before := range old.Objects() {
		after, _ := new.Find(before.Fullname)
		if err := c.add(before, after); err != nil {
			return nil, err
		}
	}
	for _, after := range new.Objects() {
		if _, seen := c.index[after.Fullname]; seen {
			continue
		}
		if err := c.add(nil, after); err != nil {
			return nil, err
		}
	}

	sort.Slice(c.pairs, func(i, j int) bool {
		return c.pairs[i].Fullname() < c.pairs[j].Fullname()
	})

	return c, nil
}

func (c *Codebases) add(before, after *codebase.Object) error {
	pair, err := NewCodeObjects(before, after)
	if err != nil {
		return err
	}
	c.pairs = append(c.pairs, pair)
	c.index[pair.Fullname()] = pair
	return nil
}

// Old returns the snapshot before the change.
func (c *Codebases) Old() *codebase.Snapshot { return c.old }

// New returns the snapshot after the change.
func (c *Codebases) New() *codebase.Snapshot { return c.new }

// Pairs returns all pairs ordered by fullname.
func (c *Codebases) Pairs() []*CodeObjects {
	out := make([]*CodeObjects, len(c.pairs))
	copy(out, c.pairs)
	return out
}

// Find returns the pair for a fullname.
func (c *Codebases) Find(fullname string) (*CodeObjects, bool) {
	p, ok := c.index[fullname]
	return p, ok
}

// InState returns the pairs classified as state.
func (c *Codebases) InState(state State) []*CodeObjects {
	var out []*CodeObjects
	for _, p := range c.pairs {
		if p.State() == state {
			out = append(out, p)
		}
	}
	return out
}

// Added, Removed, Improved, Degraded and Unchanged return the pairs in
// that state, ordered by fullname.
func (c *Codebases) Added() []*CodeObjects     { return c.InState(StateAdded) }
func (c *Codebases) Removed() []*CodeObjects   { return c.InState(StateRemoved) }
func (c *Codebases) Improved() []*CodeObjects  { return c.InState(StateImproved) }
func (c *Codebases) Degraded() []*CodeObjects  { return c.InState(StateDegraded) }
func (c *Codebases) Unchanged() []*CodeObjects { return c.InState(StateUnchanged) }

// Changed returns the pairs present on both sides whose score moved.
func (c *Codebases) Changed() []*CodeObjects {
	var out []*CodeObjects
	for _, p := range c.pairs {
		if p.Changed() {
			out = append(out, p)
		}
	}
	return out
}

// Summary computes aggregate statistics.
func (c *Codebases) Summary() Summary {
	s := Summary{
		ObjectsBefore: c.old.Len(),
		ObjectsAfter:  c.new.Len(),
		GradesBefore:  make(map[codebase.Grade]int),
		GradesAfter:   make(map[codebase.Grade]int),
	}

	for _, p := range c.pairs {
		switch p.State() {
		case StateAdded:
			s.Added++
		case StateRemoved:
			s.Removed++
		case StateImproved:
			s.Improved++
		case StateDegraded:
			s.Degraded++
		case StateUnchanged:
			s.Unchanged++
		}
		if p.Present() {
			s.NetDelta += p.Delta()
		}
	}

	s.AverageBefore = averageScore(c.old, s.GradesBefore)
	s.AverageAfter = averageScore(c.new, s.GradesAfter)
	return s
}

func averageScore(snap *codebase.Snapshot, grades map[codebase.Grade]int) float64 {
	if snap.Len() == 0 {
		return 0
	}
	var total int
	for _, o := range snap.Objects() {
		total += o.IntScore()
		grades[o.Grade]++
	}
	return float64(total) / float64(snap.Len())
}
