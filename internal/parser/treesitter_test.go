//go:build cgo

package parser

import (
	"context"
	"reflect"
	"testing"

	"docdelta/internal/codebase"
)

const goSource = `// Package shapes draws things.
package shapes

// Shape is anything with an area.
type Shape interface {
	Area() float64
}

// Square is a square.
type Square struct{ side float64 }

// Area returns the area of the square.
func (s *Square) Area() float64 { return s.side * s.side }

func helper(a, b int) {}
`

const pythonSource = `"""Geometry helpers."""


class Circle:
    """A circle."""

    def area(self, precision):
        """Return the area rounded to precision."""
        return 3.14


def _private():
    pass
`

const tsSource = `/** Greets people. */
export class Greeter {
  /** Says hello to name. */
  greet(name: string): string {
    return "hi " + name;
  }
}

export const add = (a: number, b: number) => a + b;
`

const javaSource = `package com.acme;

/** A counter. */
public class Counter {
    /** Adds delta to the count. */
    public int add(int delta) { return delta; }

    void reset() {}
}
`

const rustSource = `//! Crate docs.

/// A point.
#[derive(Debug)]
pub struct Point { x: i32 }

impl Point {
    /// Creates a point.
    pub fn new(x: i32) -> Self { Point { x } }
}
`

const kotlinSource = `package demo

/** Says hello. */
class Greeter {
    /** Greets name. */
    fun greet(name: String): String = "hi " + name
}
`

func parseFixture(t *testing.T) *codebase.Snapshot {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "shapes.go", goSource)
	writeFile(t, root, "geo.py", pythonSource)
	writeFile(t, root, "web/app.ts", tsSource)
	writeFile(t, root, "src/Counter.java", javaSource)
	writeFile(t, root, "src/lib.rs", rustSource)
	writeFile(t, root, "demo/Greeter.kt", kotlinSource)

	snap, err := New(Options{}).Parse(context.Background(), root)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return snap
}

func TestParse_Objects(t *testing.T) {
	snap := parseFixture(t)

	tests := []struct {
		fullname string
		kind     codebase.Kind
		doc      string
		exported bool
		params   []string
		returns  bool
	}{
		{"shapes", codebase.KindModule, "Package shapes draws things.", true, nil, false},
		{"shapes.Shape", codebase.KindClass, "Shape is anything with an area.", true, nil, false},
		{"shapes.Square", codebase.KindClass, "Square is a square.", true, nil, false},
		{"shapes.Square#Area", codebase.KindMethod, "Area returns the area of the square.", true, nil, true},
		{"shapes.helper", codebase.KindFunction, "", false, []string{"a", "b"}, false},

		{"geo", codebase.KindModule, "Geometry helpers.", true, nil, false},
		{"geo.Circle", codebase.KindClass, "A circle.", true, nil, false},
		{"geo.Circle#area", codebase.KindMethod, "Return the area rounded to precision.", true, []string{"precision"}, true},
		{"geo._private", codebase.KindFunction, "", false, nil, false},

		{"web/app.Greeter", codebase.KindClass, "Greets people.", true, nil, false},
		{"web/app.Greeter#greet", codebase.KindMethod, "Says hello to name.", true, []string{"name"}, true},
		{"web/app.add", codebase.KindFunction, "", true, []string{"a", "b"}, true},

		{"com.acme.Counter", codebase.KindClass, "A counter.", true, nil, false},
		{"com.acme.Counter#add", codebase.KindMethod, "Adds delta to the count.", true, []string{"delta"}, true},
		{"com.acme.Counter#reset", codebase.KindMethod, "", false, nil, false},

		{"src/lib", codebase.KindModule, "Crate docs.", true, nil, false},
		{"src/lib.Point", codebase.KindClass, "A point.", true, nil, false},
		{"src/lib.Point#new", codebase.KindMethod, "Creates a point.", true, []string{"x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.fullname, func(t *testing.T) {
			o, ok := snap.Find(tt.fullname)
			if !ok {
				t.Fatalf("object %q not found; have %v", tt.fullname, snap.Fullnames())
			}
			if o.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", o.Kind, tt.kind)
			}
			if o.Doc != tt.doc {
				t.Errorf("Doc = %q, want %q", o.Doc, tt.doc)
			}
			if o.Exported != tt.exported {
				t.Errorf("Exported = %v, want %v", o.Exported, tt.exported)
			}
			if !reflect.DeepEqual(o.Params, tt.params) {
				t.Errorf("Params = %v, want %v", o.Params, tt.params)
			}
			if o.Returns != tt.returns {
				t.Errorf("Returns = %v, want %v", o.Returns, tt.returns)
			}
			if o.Grade == "" {
				t.Error("object was not graded")
			}
			if tt.doc == "" && o.Grade != codebase.GradeU {
				t.Errorf("undocumented object graded %s", o.Grade)
			}
		})
	}
}

func TestParse_Kotlin(t *testing.T) {
	snap := parseFixture(t)

	cls, ok := snap.Find("demo.Greeter")
	if !ok {
		t.Fatalf("Kotlin class not found; have %v", snap.Fullnames())
	}
	if cls.Doc != "Says hello." {
		t.Errorf("class doc = %q", cls.Doc)
	}
	if m, ok := snap.Find("demo.Greeter#greet"); !ok || m.Doc != "Greets name." {
		t.Errorf("Kotlin method not extracted correctly: %+v", m)
	}
}

func TestParse_ChildrenAndSource(t *testing.T) {
	snap := parseFixture(t)

	sq, _ := snap.Find("shapes.Square")
	if !reflect.DeepEqual(sq.Children, []string{"shapes.Square#Area"}) {
		t.Errorf("Square children = %v", sq.Children)
	}

	area, _ := snap.Find("shapes.Square#Area")
	if area.Source == "" || area.Line != 13 || area.File != "shapes.go" {
		t.Errorf("unexpected method location: line %d file %s", area.Line, area.File)
	}
}

func TestParse_Deterministic(t *testing.T) {
	a := parseFixture(t)
	b := parseFixture(t)

	if !reflect.DeepEqual(a.Fullnames(), b.Fullnames()) {
		t.Fatal("fullnames differ between parses")
	}
	for _, name := range a.Fullnames() {
		oa, _ := a.Find(name)
		ob, _ := b.Find(name)
		if oa.Score != ob.Score || oa.Grade != ob.Grade {
			t.Errorf("%s graded differently: %v/%s vs %v/%s", name, oa.Score, oa.Grade, ob.Score, ob.Grade)
		}
	}
	if a.Generation() == b.Generation() {
		t.Error("separate parses must yield distinct generations")
	}
}

func TestParse_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", goSource)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(Options{}).Parse(ctx, root); err == nil {
		t.Error("expected error for cancelled context")
	}
}
