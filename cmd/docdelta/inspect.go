package main

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"docdelta/internal/codebase"
	"docdelta/internal/revision"
)

var (
	inspectFormat string
	inspectRev    string
	inspectGrade  string
	inspectLimit  int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [fullname...]",
	Short: "Show how code objects were graded",
	Long: `Show the evaluation of code objects at one revision.

With names, each object is shown with the roles that applied to it, its
score bounds, priority, leading comment and an abbreviated source. Without
names, objects are listed by priority, lowest scores first.

Examples:
  docdelta inspect 'pkg/server.Server#Start'
  docdelta inspect --rev v1.2.0 --grade U
  docdelta inspect --format json --limit 0`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "human", "Output format (json, yaml, human)")
	inspectCmd.Flags().StringVar(&inspectRev, "rev", revision.LiveName, "Revision to inspect")
	inspectCmd.Flags().StringVar(&inspectGrade, "grade", "", "Only list objects with this grade (A, B, C, U)")
	inspectCmd.Flags().IntVar(&inspectLimit, "limit", 20, "Maximum objects to list without names (0 = all)")
	rootCmd.AddCommand(inspectCmd)
}

// InspectResponseCLI is the response of inspect
type InspectResponseCLI struct {
	Revision string             `json:"revision" yaml:"revision"`
	Detailed bool               `json:"detailed" yaml:"detailed"`
	Objects  []InspectObjectCLI `json:"objects" yaml:"objects"`
	Missing  []string           `json:"missing,omitempty" yaml:"missing,omitempty"`
	Total    int                `json:"total" yaml:"total"`
}

// InspectObjectCLI is one inspected object
type InspectObjectCLI struct {
	Fullname string         `json:"fullname" yaml:"fullname"`
	Kind     codebase.Kind  `json:"kind" yaml:"kind"`
	File     string         `json:"file" yaml:"file"`
	Line     int            `json:"line" yaml:"line"`
	Score    int            `json:"score" yaml:"score"`
	Grade    codebase.Grade `json:"grade" yaml:"grade"`
	Priority int            `json:"priority" yaml:"priority"`
	MinScore float64        `json:"minScore" yaml:"minScore"`
	MaxScore float64        `json:"maxScore" yaml:"maxScore"`
	Roles    []RoleCLI      `json:"roles,omitempty" yaml:"roles,omitempty"`
	Doc      string         `json:"doc,omitempty" yaml:"doc,omitempty"`
	Source   string         `json:"source,omitempty" yaml:"source,omitempty"`
	Children []string       `json:"children,omitempty" yaml:"children,omitempty"`
}

// RoleCLI is one scoring role
type RoleCLI struct {
	Name      string   `json:"name" yaml:"name"`
	Score     float64  `json:"score" yaml:"score"`
	Potential *float64 `json:"potential,omitempty" yaml:"potential,omitempty"`
	Priority  int      `json:"priority" yaml:"priority"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	rev, err := parseRevisionArg(inspectRev)
	if err != nil {
		return err
	}

	ctx, cancel := newContext(cmd)
	defer cancel()

	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := a.materializer.Materialize(ctx, a.repoRoot, rev)
	if err != nil {
		return err
	}

	resp := &InspectResponseCLI{
		Revision: rev.String(),
		Detailed: len(args) > 0,
		Objects:  []InspectObjectCLI{},
		Total:    snap.Len(),
	}

	if len(args) > 0 {
		for _, name := range args {
			o, ok := snap.Find(name)
			if !ok {
				resp.Missing = append(resp.Missing, name)
				continue
			}
			resp.Objects = append(resp.Objects, inspectObject(o, true))
		}
		return writeOutput(cmd, resp, inspectFormat)
	}

	grade := codebase.Grade(strings.ToUpper(inspectGrade))
	objects := snap.Filter(func(o *codebase.Object) bool {
		return grade == "" || o.Grade == grade
	})
	sort.SliceStable(objects, func(i, j int) bool {
		if objects[i].Priority != objects[j].Priority {
			return objects[i].Priority > objects[j].Priority
		}
		return objects[i].IntScore() < objects[j].IntScore()
	})
	if inspectLimit > 0 && len(objects) > inspectLimit {
		objects = objects[:inspectLimit]
	}
	for _, o := range objects {
		resp.Objects = append(resp.Objects, inspectObject(o, false))
	}
	return writeOutput(cmd, resp, inspectFormat)
}

func inspectObject(o *codebase.Object, detailed bool) InspectObjectCLI {
	out := InspectObjectCLI{
		Fullname: o.Fullname,
		Kind:     o.Kind,
		File:     o.File,
		Line:     o.Line,
		Score:    o.IntScore(),
		Grade:    o.Grade,
		Priority: o.Priority,
		MinScore: o.Evaluation.MinScore,
		MaxScore: o.Evaluation.MaxScore,
	}
	if !detailed {
		return out
	}

	for _, r := range o.Roles {
		out.Roles = append(out.Roles, RoleCLI{
			Name:      r.Name,
			Score:     r.Score,
			Potential: r.PotentialScore,
			Priority:  r.Priority,
		})
	}
	out.Doc = o.Doc
	out.Source = abbreviateSource(o.Source)
	out.Children = o.Children
	return out
}

// abbreviateSource keeps the first and last two lines of src.
func abbreviateSource(src string) string {
	lines := strings.Split(strings.TrimRight(src, "\n"), "\n")
	if len(lines) < 5 {
		return strings.Join(lines, "\n")
	}

	second := lines[1]
	indent := second[:len(second)-len(strings.TrimLeft(second, " \t"))]

	out := make([]string, 0, 5)
	out = append(out, lines[0], lines[1], indent+"... snip ...")
	out = append(out, lines[len(lines)-2:]...)
	return strings.Join(out, "\n")
}
