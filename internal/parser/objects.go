package parser

import (
	"sort"

	"docdelta/internal/codebase"
)

// objectSet collects objects across files. The first object seen for a
// fullname wins, except that a module without documentation adopts the
// first documentation found in a later file of the same module.
type objectSet struct {
	byName map[string]*codebase.Object
	order  []*codebase.Object
}

func newObjectSet() *objectSet {
	return &objectSet{byName: make(map[string]*codebase.Object)}
}

// add reports whether o was added.
func (s *objectSet) add(o *codebase.Object) bool {
	if o.Fullname == "" {
		return false
	}
	if prev, ok := s.byName[o.Fullname]; ok {
		if prev.Kind == codebase.KindModule && prev.Doc == "" && o.Doc != "" {
			prev.Doc = o.Doc
			prev.File = o.File
			prev.Line = o.Line
		}
		return false
	}
	s.byName[o.Fullname] = o
	s.order = append(s.order, o)
	return true
}

// finish links namespaces to their children and returns the objects.
func (s *objectSet) finish() []*codebase.Object {
	for _, o := range s.order {
		if o.Container == "" {
			continue
		}
		if parent, ok := s.byName[o.Container]; ok && parent.IsNamespace() {
			parent.Children = append(parent.Children, o.Fullname)
		}
	}
	for _, o := range s.order {
		sort.Strings(o.Children)
	}
	return s.order
}
