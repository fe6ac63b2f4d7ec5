// Package grading scores the documentation of code objects.
//
// Every object gets a list of roles. A role either contributes points,
// or, when it is missing, records the points it would have contributed
// as a potential score. The sum of contributions is normalized to
// [0, MaxScore] and then clamped to the object's evaluation bounds.
package grading

import (
	"math"
	"regexp"
	"strings"

	"docdelta/internal/codebase"
)

// MaxScore is the best possible score.
const MaxScore = 100.0

// Role names.
const (
	RoleWithDoc        = "WithDoc"
	RoleWithoutDoc     = "WithoutDoc"
	RoleDetailedDoc    = "WithDetailedDoc"
	RoleShortDoc       = "WithShortDoc"
	RoleParamMention   = "WithParameterMention"
	RoleNoParamMention = "WithoutParameterMention"
	RoleReturnMention  = "WithReturnMention"
	RoleNoReturn       = "WithoutReturnMention"
	RoleCodeExample    = "WithCodeExample"
	RoleNoCodeExample  = "WithoutCodeExample"
	RoleTodo           = "TaggedAsTodo"
	RolePublic         = "Public"
	RolePrivate        = "Private"
	RoleNamespace      = "Namespace"
)

var (
	returnPattern  = regexp.MustCompile(`(?i)\breturn(s|ed|ing)?\b`)
	examplePattern = regexp.MustCompile("(?im)(^\\s*example|```|^\\s*>>>|^\\s*\\$ |@example)")
	todoPattern    = regexp.MustCompile(`\b(TODO|FIXME|XXX)\b`)
)

// Grader assigns scores, grades, roles and priorities.
type Grader struct {
	weights Weights
}

// New creates a grader with the given weights.
func New(w Weights) *Grader {
	return &Grader{weights: w}
}

// NewDefault creates a grader with DefaultWeights.
func NewDefault() *Grader {
	return New(DefaultWeights())
}

// Weights returns the grader's weights.
func (g *Grader) Weights() Weights {
	return g.weights
}

// Evaluate fills Score, Grade, Roles, Priority and Evaluation of o.
// It must run before o is added to a snapshot.
func (g *Grader) Evaluate(o *codebase.Object) {
	w := g.weights
	doc := strings.TrimSpace(o.Doc)
	hasDoc := doc != ""

	type contribution struct {
		role     string
		weight   float64
		applies  bool
		priority int
	}

	contribs := []contribution{
		{roleFor(hasDoc, RoleWithDoc, RoleWithoutDoc), w.HasDoc, hasDoc, 0},
		{roleFor(hasDoc && wordCount(doc) >= w.DetailWords, RoleDetailedDoc, RoleShortDoc),
			w.DocDetail, hasDoc && wordCount(doc) >= w.DetailWords, 0},
	}

	if len(o.Params) > 0 && !o.IsNamespace() {
		mentioned := 0
		for _, p := range o.Params {
			if mentionsWord(doc, p) {
				mentioned++
			}
		}
		share := w.ParamMention / float64(len(o.Params))
		if mentioned > 0 {
			contribs = append(contribs, contribution{RoleParamMention, share * float64(mentioned), true, 0})
		}
		if missing := len(o.Params) - mentioned; missing > 0 {
			contribs = append(contribs, contribution{RoleNoParamMention, share * float64(missing), false, 0})
		}
	}

	if o.Returns && !o.IsNamespace() {
		ok := hasDoc && returnPattern.MatchString(doc)
		contribs = append(contribs, contribution{roleFor(ok, RoleReturnMention, RoleNoReturn), w.ReturnMention, ok, 0})
	}

	example := hasDoc && examplePattern.MatchString(doc)
	contribs = append(contribs, contribution{roleFor(example, RoleCodeExample, RoleNoCodeExample), w.CodeExample, example, 0})

	var possible float64
	for _, c := range contribs {
		possible += c.weight
	}
	if possible == 0 {
		possible = 1
	}

	roles := make([]codebase.Role, 0, len(contribs)+2)
	var score float64
	for _, c := range contribs {
		if c.weight == 0 {
			continue
		}
		points := c.weight / possible * MaxScore
		r := codebase.Role{Name: c.role, Priority: c.priority}
		if c.applies {
			r.Score = points
			score += points
		} else {
			r.PotentialScore = &points
		}
		roles = append(roles, r)
	}

	eval := codebase.Evaluation{MinScore: 0, MaxScore: MaxScore}
	if w.TodoMaxScore > 0 && todoPattern.MatchString(doc) {
		limit := w.TodoMaxScore
		roles = append(roles, codebase.Role{Name: RoleTodo, Priority: -1, MaxScore: &limit})
		eval.MaxScore = limit
	}

	// Visibility and namespaces only shift priority.
	if o.Exported {
		roles = append(roles, codebase.Role{Name: RolePublic, Priority: 2})
	} else {
		roles = append(roles, codebase.Role{Name: RolePrivate, Priority: -2})
	}
	if o.IsNamespace() {
		roles = append(roles, codebase.Role{Name: RoleNamespace, Priority: 1})
	}

	priority := 0
	for _, r := range roles {
		priority += r.Priority
	}

	score = math.Round(score*10) / 10
	score = math.Max(eval.MinScore, math.Min(eval.MaxScore, score))

	o.Score = score
	o.Grade = g.GradeFor(score, hasDoc)
	o.Roles = roles
	o.Priority = priority
	o.Evaluation = eval
}

// EvaluateAll evaluates every object.
func (g *Grader) EvaluateAll(objects []*codebase.Object) {
	for _, o := range objects {
		if o != nil {
			g.Evaluate(o)
		}
	}
}

// GradeFor maps a score to a grade.
func (g *Grader) GradeFor(score float64, documented bool) codebase.Grade {
	switch {
	case !documented:
		return codebase.GradeU
	case score >= g.weights.Grades.A:
		return codebase.GradeA
	case score >= g.weights.Grades.B:
		return codebase.GradeB
	default:
		return codebase.GradeC
	}
}

func roleFor(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// mentionsWord reports whether doc contains name as a whole word.
func mentionsWord(doc, name string) bool {
	if doc == "" || name == "" {
		return false
	}
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(name) + `\b`)
	if err != nil {
		return strings.Contains(doc, name)
	}
	return re.MatchString(doc)
}
