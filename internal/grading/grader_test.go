package grading

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docdelta/internal/codebase"
)

func TestGrader_Evaluate(t *testing.T) {
	tests := []struct {
		name      string
		obj       codebase.Object
		wantScore float64
		wantGrade codebase.Grade
	}{
		{
			name:      "undocumented function",
			obj:       codebase.Object{Kind: codebase.KindFunction, Params: []string{"name"}, Returns: true, Exported: true},
			wantScore: 0,
			wantGrade: codebase.GradeU,
		},
		{
			name: "short doc mentioning param and return",
			obj: codebase.Object{
				Kind: codebase.KindFunction, Params: []string{"name"}, Returns: true,
				Doc: "Greet returns a greeting for name.",
			},
			wantScore: 75,
			wantGrade: codebase.GradeB,
		},
		{
			name: "complete doc",
			obj: codebase.Object{
				Kind: codebase.KindFunction, Params: []string{"name"}, Returns: true,
				Doc: "Greet returns a friendly greeting for name, suitable for logs.\n\nExample:\n  Greet(\"x\")",
			},
			wantScore: 100,
			wantGrade: codebase.GradeA,
		},
		{
			name:      "class with short doc",
			obj:       codebase.Object{Kind: codebase.KindClass, Doc: "Widget holds state."},
			wantScore: 66.7,
			wantGrade: codebase.GradeB,
		},
		{
			name: "todo caps the score",
			obj: codebase.Object{
				Kind: codebase.KindClass,
				Doc:  "TODO: document this properly once the widget API settles down for good.",
			},
			wantScore: 60,
			wantGrade: codebase.GradeB,
		},
	}

	g := NewDefault()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := tt.obj
			g.Evaluate(&o)
			if o.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v (roles %+v)", o.Score, tt.wantScore, o.Roles)
			}
			if o.Grade != tt.wantGrade {
				t.Errorf("Grade = %s, want %s", o.Grade, tt.wantGrade)
			}
			if o.Score < o.Evaluation.MinScore || o.Score > o.Evaluation.MaxScore {
				t.Errorf("score %v outside [%v, %v]", o.Score, o.Evaluation.MinScore, o.Evaluation.MaxScore)
			}
		})
	}
}

func TestGrader_PotentialScores(t *testing.T) {
	o := &codebase.Object{Kind: codebase.KindMethod, Params: []string{"a", "b"}, Doc: "Sum adds a to something."}
	NewDefault().Evaluate(o)

	var with, without *codebase.Role
	for i := range o.Roles {
		switch o.Roles[i].Name {
		case RoleParamMention:
			with = &o.Roles[i]
		case RoleNoParamMention:
			without = &o.Roles[i]
		}
	}
	if with == nil || without == nil {
		t.Fatalf("expected both parameter roles, got %+v", o.Roles)
	}
	if with.Score <= 0 || with.PotentialScore != nil {
		t.Errorf("applied role should carry a score: %+v", with)
	}
	if without.Score != 0 || without.PotentialScore == nil || *without.PotentialScore <= 0 {
		t.Errorf("missing role should carry a potential score: %+v", without)
	}
}

func TestGrader_Priority(t *testing.T) {
	g := NewDefault()

	public := &codebase.Object{Kind: codebase.KindClass, Exported: true}
	private := &codebase.Object{Kind: codebase.KindFunction}
	g.Evaluate(public)
	g.Evaluate(private)

	if public.Priority != 3 {
		t.Errorf("exported namespace priority = %d, want 3", public.Priority)
	}
	if private.Priority != -2 {
		t.Errorf("unexported function priority = %d, want -2", private.Priority)
	}
}

func TestGradeFor(t *testing.T) {
	g := NewDefault()
	tests := []struct {
		score      float64
		documented bool
		want       codebase.Grade
	}{
		{0, false, codebase.GradeU},
		{90, false, codebase.GradeU},
		{10, true, codebase.GradeC},
		{49.9, true, codebase.GradeC},
		{50, true, codebase.GradeB},
		{80, true, codebase.GradeA},
		{100, true, codebase.GradeA},
	}
	for _, tt := range tests {
		if got := g.GradeFor(tt.score, tt.documented); got != tt.want {
			t.Errorf("GradeFor(%v, %v) = %s, want %s", tt.score, tt.documented, got, tt.want)
		}
	}
}

func TestLoadWeights(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, WeightsFileName)
	content := "has_doc = 70\n\n[grades]\na = 90\nb = 60\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := LoadWeights(path)
	if err != nil {
		t.Fatalf("LoadWeights failed: %v", err)
	}
	if w.HasDoc != 70 || w.Grades.A != 90 || w.Grades.B != 60 {
		t.Errorf("overrides not applied: %+v", w)
	}
	if w.CodeExample != DefaultWeights().CodeExample {
		t.Errorf("unset keys should keep defaults: %+v", w)
	}
}

func TestLoadWeights_Invalid(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"negative": "doc_detail = -1\n",
		"grades":   "[grades]\na = 40\nb = 60\n",
		"syntax":   "has_doc = = 1\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".toml")
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadWeights(path); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := LoadWeights(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCreateExampleWeightsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", WeightsFileName)
	if err := CreateExampleWeightsFile(path); err != nil {
		t.Fatalf("CreateExampleWeightsFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "has_doc") {
		t.Errorf("example file missing keys:\n%s", data)
	}

	w, err := LoadWeights(path)
	if err != nil {
		t.Fatalf("example file does not load: %v", err)
	}
	if w != DefaultWeights() {
		t.Errorf("round trip changed weights: %+v", w)
	}
}
