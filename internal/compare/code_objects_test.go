package compare

import (
	"testing"

	"docdelta/internal/codebase"
	"docdelta/internal/errors"
)

func obj(fullname string, score float64) *codebase.Object {
	return &codebase.Object{Fullname: fullname, Score: score, Grade: codebase.GradeB}
}

func TestNewCodeObjects_IdentityCollision(t *testing.T) {
	o := obj("Foo#bar", 40)

	_, err := NewCodeObjects(o, o)
	if !errors.IsCode(err, errors.IdentityCollision) {
		t.Fatalf("expected IDENTITY_COLLISION, got %v", err)
	}

	// Equal content in distinct instances is fine.
	if _, err := NewCodeObjects(obj("Foo#bar", 40), obj("Foo#bar", 40)); err != nil {
		t.Fatalf("distinct instances should pair: %v", err)
	}
}

func TestNewCodeObjects_BothNil(t *testing.T) {
	_, err := NewCodeObjects(nil, nil)
	if !errors.IsCode(err, errors.UsageError) {
		t.Fatalf("expected USAGE_ERROR, got %v", err)
	}
}

func TestCodeObjects_Classification(t *testing.T) {
	tests := []struct {
		name   string
		before *codebase.Object
		after  *codebase.Object
		want   State
		scores [2]int
	}{
		{"improved", obj("A", 40), obj("A", 70), StateImproved, [2]int{40, 70}},
		{"degraded", obj("A", 70), obj("A", 40), StateDegraded, [2]int{70, 40}},
		{"unchanged", obj("A", 55), obj("A", 55), StateUnchanged, [2]int{55, 55}},
		{"sub-integer change is unchanged", obj("A", 40.4), obj("A", 40.6), StateUnchanged, [2]int{40, 40}},
		{"added", nil, obj("A", 10), StateAdded, [2]int{0, 10}},
		{"removed", obj("A", 30), nil, StateRemoved, [2]int{30, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewCodeObjects(tt.before, tt.after)
			if err != nil {
				t.Fatalf("NewCodeObjects failed: %v", err)
			}
			if got := p.State(); got != tt.want {
				t.Errorf("State() = %s, want %s", got, tt.want)
			}
			if got := p.Scores(); got != tt.scores {
				t.Errorf("Scores() = %v, want %v", got, tt.scores)
			}
			if p.Fullname() != "A" {
				t.Errorf("Fullname() = %q", p.Fullname())
			}
		})
	}
}

// Exactly one of the five predicates holds for every pair.
func TestCodeObjects_ExclusiveAndExhaustive(t *testing.T) {
	scores := []float64{0, 0.5, 1, 39.9, 40, 40.2, 70, 100}

	check := func(t *testing.T, p *CodeObjects) {
		t.Helper()
		held := 0
		for _, b := range []bool{p.Added(), p.Removed(), p.Unchanged(), p.Improved(), p.Degraded()} {
			if b {
				held++
			}
		}
		if held != 1 {
			t.Errorf("%s: %d predicates hold (added=%v removed=%v unchanged=%v improved=%v degraded=%v)",
				p.Fullname(), held, p.Added(), p.Removed(), p.Unchanged(), p.Improved(), p.Degraded())
		}
	}

	for _, b := range scores {
		for _, a := range scores {
			p, err := NewCodeObjects(obj("X", b), obj("X", a))
			if err != nil {
				t.Fatal(err)
			}
			check(t, p)

			bi, ai := int(b), int(a)
			switch {
			case bi == ai && !p.Unchanged():
				t.Errorf("%v -> %v should be unchanged", b, a)
			case bi < ai && !p.Improved():
				t.Errorf("%v -> %v should be improved", b, a)
			case bi > ai && !p.Degraded():
				t.Errorf("%v -> %v should be degraded", b, a)
			}
		}

		removed, _ := NewCodeObjects(obj("X", b), nil)
		check(t, removed)
		added, _ := NewCodeObjects(nil, obj("X", b))
		check(t, added)
	}
}

func TestCodeObjects_OneSidedPredicates(t *testing.T) {
	removed, _ := NewCodeObjects(obj("Foo#qux", 20), nil)
	if !removed.Removed() || removed.Added() || removed.Changed() || removed.Unchanged() || removed.Present() {
		t.Errorf("removed pair predicates wrong: %+v", removed)
	}

	added, _ := NewCodeObjects(nil, obj("Foo#baz", 10))
	if !added.Added() || added.Removed() || added.Changed() || added.Unchanged() ||
		added.Improved() || added.Degraded() || added.Present() {
		t.Errorf("added pair predicates wrong: %+v", added)
	}
}

func TestCodeObjects_Grade(t *testing.T) {
	after := obj("A", 90)
	after.Grade = codebase.GradeA

	p, _ := NewCodeObjects(obj("A", 10), after)
	g, err := p.Grade()
	if err != nil || g != codebase.GradeA {
		t.Errorf("Grade() = %q, %v; want A", g, err)
	}

	removed, _ := NewCodeObjects(obj("A", 10), nil)
	if _, err := removed.Grade(); !errors.IsCode(err, errors.UsageError) {
		t.Errorf("Grade() on removed pair should fail with USAGE_ERROR, got %v", err)
	}
}

func TestCodeObjects_FullnamePrefersBefore(t *testing.T) {
	p, _ := NewCodeObjects(obj("Before", 1), obj("After", 1))
	if p.Fullname() != "Before" {
		t.Errorf("Fullname() = %q, want Before", p.Fullname())
	}
}
