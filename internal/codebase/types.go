// Package codebase defines the parsed object graph of a codebase at one
// revision, and the parser boundary that produces it.
package codebase

import "context"

// Kind is the kind of a documentable code object.
type Kind string

const (
	KindModule   Kind = "module"
	KindClass    Kind = "class"
	KindMethod   Kind = "method"
	KindFunction Kind = "function"
)

// Grade is a letter bucket for a documentation score.
type Grade string

const (
	GradeA Grade = "A" // well documented
	GradeB Grade = "B" // properly documented, could be improved
	GradeC Grade = "C" // needs work
	GradeU Grade = "U" // undocumented
)

// Role is one scoring rule that applied to an object.
type Role struct {
	Name string `json:"name"`
	// Score is the contribution of the role; negative roles penalise.
	Score float64 `json:"score"`
	// PotentialScore is what the role would add if it applied. Set for
	// roles that are missing, such as an absent parameter mention.
	PotentialScore *float64 `json:"potentialScore,omitempty"`
	Priority       int      `json:"priority"`
	MinScore       *float64 `json:"minScore,omitempty"`
	MaxScore       *float64 `json:"maxScore,omitempty"`
}

// Evaluation bounds the score an object can reach.
type Evaluation struct {
	MinScore float64 `json:"minScore"`
	MaxScore float64 `json:"maxScore"`
}

// Object is a documentable program entity. Objects are created once per
// parse and not modified afterwards.
type Object struct {
	Fullname   string     `json:"fullname"`
	Name       string     `json:"name"`
	Kind       Kind       `json:"kind"`
	Language   string     `json:"language"`
	File       string     `json:"file"`
	Line       int        `json:"line"`
	Container  string     `json:"container,omitempty"`
	Exported   bool       `json:"exported"`
	Params     []string   `json:"params,omitempty"`
	Returns    bool       `json:"returns,omitempty"`
	Doc        string     `json:"doc,omitempty"`
	Source     string     `json:"source,omitempty"`
	Score      float64    `json:"score"`
	Grade      Grade      `json:"grade"`
	Priority   int        `json:"priority"`
	Roles      []Role     `json:"roles,omitempty"`
	Evaluation Evaluation `json:"evaluation"`
	Children   []string   `json:"children,omitempty"`
}

// IntScore is the score used for change classification. Fractional
// scores truncate toward zero.
func (o *Object) IntScore() int {
	return int(o.Score)
}

// IsNamespace reports whether the object can contain other objects.
func (o *Object) IsNamespace() bool {
	return o.Kind == KindModule || o.Kind == KindClass
}

// Parser turns a directory into a snapshot. Implementations must be
// deterministic for a given directory content.
type Parser interface {
	Parse(ctx context.Context, dir string) (*Snapshot, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(ctx context.Context, dir string) (*Snapshot, error)

// Parse calls f(ctx, dir).
func (f ParserFunc) Parse(ctx context.Context, dir string) (*Snapshot, error) {
	return f(ctx, dir)
}
