package codebase

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// generations hands out a distinct tag to every snapshot built in this
// process, whether parsed or loaded from cache.
var generations atomic.Uint64

// Snapshot is the object graph of a codebase at one revision.
type Snapshot struct {
	generation uint64
	objects    []*Object
	index      map[string]*Object
}

// NewSnapshot builds a snapshot from parsed objects. Objects are ordered
// by fullname. Duplicate or empty fullnames are rejected because the
// fullname is the pairing key across revisions.
func NewSnapshot(objects []*Object) (*Snapshot, error) {
	s := &Snapshot{
		generation: generations.Add(1),
		objects:    make([]*Object, 0, len(objects)),
		index:      make(map[string]*Object, len(objects)),
	}

	for _, o := range objects {
		if o == nil {
			continue
		}
		if o.Fullname == "" {
			return nil, fmt.Errorf("object %q in %s has no fullname", o.Name, o.File)
		}
		if prev, dup := s.index[o.Fullname]; dup {
			return nil, fmt.Errorf("duplicate fullname %q (%s:%d and %s:%d)",
				o.Fullname, prev.File, prev.Line, o.File, o.Line)
		}
		s.index[o.Fullname] = o
		s.objects = append(s.objects, o)
	}

	sort.Slice(s.objects, func(i, j int) bool {
		return s.objects[i].Fullname < s.objects[j].Fullname
	})

	return s, nil
}

// Generation identifies this snapshot instance. Two snapshots never
// share a generation, even when parsed from identical content.
func (s *Snapshot) Generation() uint64 { return s.generation }

// Len returns the number of objects.
func (s *Snapshot) Len() int { return len(s.objects) }

// Objects returns the objects ordered by fullname. The slice is a copy.
func (s *Snapshot) Objects() []*Object {
	out := make([]*Object, len(s.objects))
	copy(out, s.objects)
	return out
}

// Find looks up an object by fullname.
func (s *Snapshot) Find(fullname string) (*Object, bool) {
	o, ok := s.index[fullname]
	return o, ok
}

// Fullnames returns all fullnames in order.
func (s *Snapshot) Fullnames() []string {
	names := make([]string, len(s.objects))
	for i, o := range s.objects {
		names[i] = o.Fullname
	}
	return names
}

// Filter returns the objects matching pred, in fullname order.
func (s *Snapshot) Filter(pred func(*Object) bool) []*Object {
	var out []*Object
	for _, o := range s.objects {
		if pred(o) {
			out = append(out, o)
		}
	}
	return out
}
