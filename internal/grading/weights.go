package grading

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Weights controls how roles contribute to a score. A weights file only
// needs the keys it overrides; the rest keep their defaults.
type Weights struct {
	Version int `toml:"version"`

	HasDoc        float64 `toml:"has_doc"`
	DocDetail     float64 `toml:"doc_detail"`
	ParamMention  float64 `toml:"param_mention"`  // split across all parameters
	ReturnMention float64 `toml:"return_mention"` // only for objects that return a value
	CodeExample   float64 `toml:"code_example"`

	DetailWords int `toml:"detail_words"` // words needed for doc_detail

	// TodoMaxScore caps the score of objects whose doc carries a TODO or
	// FIXME marker. 0 disables the cap.
	TodoMaxScore float64 `toml:"todo_max_score"`

	Grades GradeThresholds `toml:"grades"`
}

// GradeThresholds are inclusive lower bounds. Any documented object below
// B gets C; an object without documentation gets U.
type GradeThresholds struct {
	A float64 `toml:"a"`
	B float64 `toml:"b"`
}

// DefaultWeights returns the built-in weights.
func DefaultWeights() Weights {
	return Weights{
		Version:       1,
		HasDoc:        50,
		DocDetail:     15,
		ParamMention:  15,
		ReturnMention: 10,
		CodeExample:   10,
		DetailWords:   8,
		TodoMaxScore:  60,
		Grades: GradeThresholds{
			A: 80,
			B: 50,
		},
	}
}

// LoadWeights reads a TOML weights file on top of the defaults.
func LoadWeights(path string) (Weights, error) {
	w := DefaultWeights()

	data, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("read weights file: %w", err)
	}
	if _, err := toml.Decode(string(data), &w); err != nil {
		return w, fmt.Errorf("parse weights file: %w", err)
	}
	if err := w.Validate(); err != nil {
		return w, fmt.Errorf("invalid weights: %w", err)
	}
	return w, nil
}

// Validate checks that the weights are usable.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"has_doc":        w.HasDoc,
		"doc_detail":     w.DocDetail,
		"param_mention":  w.ParamMention,
		"return_mention": w.ReturnMention,
		"code_example":   w.CodeExample,
		"todo_max_score": w.TodoMaxScore,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if w.HasDoc == 0 {
		return fmt.Errorf("has_doc must be positive")
	}
	if w.DetailWords < 0 {
		return fmt.Errorf("detail_words must not be negative")
	}
	if w.Grades.B <= 0 || w.Grades.A < w.Grades.B || w.Grades.A > MaxScore {
		return fmt.Errorf("grade thresholds must satisfy 0 < b <= a <= %v", MaxScore)
	}
	return nil
}
