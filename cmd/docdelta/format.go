package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"docdelta/internal/codebase"
	"docdelta/internal/compare"
	"docdelta/internal/diff"
	"docdelta/internal/version"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
	FormatYAML  OutputFormat = "yaml"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatYAML:
		return formatYAML(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatYAML formats the response as YAML
func formatYAML(resp interface{}) (string, error) {
	data, err := yaml.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *diff.Report:
		return formatReportHuman(v)
	case *InspectResponseCLI:
		return formatInspectHuman(v)
	case *CacheListResponseCLI:
		return formatCacheListHuman(v)
	case *HistoryListResponseCLI:
		return formatHistoryListHuman(v)
	case *HistoryStatsResponseCLI:
		return formatHistoryStatsHuman(v)
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

// stateOrder is the order sections appear in a human report
var stateOrder = []compare.State{
	compare.StateImproved,
	compare.StateDegraded,
	compare.StateAdded,
	compare.StateRemoved,
	compare.StateUnchanged,
}

var stateIcons = map[compare.State]string{
	compare.StateImproved:  "↑",
	compare.StateDegraded:  "↓",
	compare.StateAdded:     "+",
	compare.StateRemoved:   "-",
	compare.StateUnchanged: "=",
}

// formatReportHuman formats a diff report in human-readable format
func formatReportHuman(r *diff.Report) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("docdelta v%s: %s .. %s\n", version.Version, r.Before.Revision, r.After.Revision))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("  Before: %s\n", describeSide(r.Before)))
	b.WriteString(fmt.Sprintf("  After:  %s\n\n", describeSide(r.After)))

	byState := make(map[compare.State][]diff.Entry)
	for _, e := range r.Entries {
		byState[e.State] = append(byState[e.State], e)
	}

	for _, state := range stateOrder {
		entries := byState[state]
		if len(entries) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("%s (%d):\n", titleCase(string(state)), len(entries)))
		for _, e := range entries {
			b.WriteString(formatEntryLine(e))
		}
		b.WriteString("\n")
	}

	if r.IsEmpty() {
		b.WriteString("No documentation changes.\n\n")
	}

	s := r.Summary
	b.WriteString(fmt.Sprintf("Summary: %d added, %d removed, %d improved, %d degraded, %d unchanged\n",
		s.Added, s.Removed, s.Improved, s.Degraded, s.Unchanged))
	b.WriteString(fmt.Sprintf("  Average score: %.1f -> %.1f (net %s)\n",
		s.AverageBefore, s.AverageAfter, signed(s.NetDelta)))
	b.WriteString("  Grades:")
	for _, g := range []codebase.Grade{codebase.GradeA, codebase.GradeB, codebase.GradeC, codebase.GradeU} {
		b.WriteString(fmt.Sprintf("  %s %d->%d", g, s.GradesBefore[g], s.GradesAfter[g]))
	}
	b.WriteString("\n")

	return b.String(), nil
}

func describeSide(info diff.RevisionInfo) string {
	parts := []string{info.Source, fmt.Sprintf("%d objects", info.Objects)}
	if info.Commit != "" {
		parts = append(parts, shortHash(info.Commit))
	}
	if info.Dirty {
		parts = append(parts, "dirty")
	}
	return fmt.Sprintf("%s (%s, %dms)", info.Revision, strings.Join(parts, ", "), info.DurationMs)
}

func formatEntryLine(e diff.Entry) string {
	grade := string(e.Grade)
	if e.State == compare.StateRemoved {
		grade = string(e.GradeBefore)
	}
	if grade == "" {
		grade = " "
	}

	var scores string
	switch e.State {
	case compare.StateAdded:
		scores = fmt.Sprintf("%d", e.Scores[1])
	case compare.StateRemoved:
		scores = fmt.Sprintf("%d", e.Scores[0])
	case compare.StateUnchanged:
		scores = fmt.Sprintf("%d", e.Scores[1])
	default:
		scores = fmt.Sprintf("%d -> %d (%s)", e.Scores[0], e.Scores[1], signed(e.Delta))
	}

	return fmt.Sprintf("  %s %s  %-48s %s\n", stateIcons[e.State], grade, truncate(e.Fullname, 48), scores)
}

func signed(n int) string {
	if n > 0 {
		return fmt.Sprintf("+%d", n)
	}
	return fmt.Sprintf("%d", n)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n+3:]
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatInspectHuman formats inspect output in human-readable format
func formatInspectHuman(r *InspectResponseCLI) (string, error) {
	var b strings.Builder

	if !r.Detailed {
		b.WriteString(fmt.Sprintf("Objects at %s (%d of %d shown)\n", r.Revision, len(r.Objects), r.Total))
		b.WriteString(strings.Repeat("=", 60) + "\n\n")
		for _, o := range r.Objects {
			b.WriteString(fmt.Sprintf("  %s %3d  %-48s %s:%d\n", o.Grade, o.Score, truncate(o.Fullname, 48), o.File, o.Line))
		}
		return b.String(), nil
	}

	for i, o := range r.Objects {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("# %s\n", o.Fullname))
		b.WriteString(strings.Repeat("-", 60) + "\n")
		b.WriteString(fmt.Sprintf("-> %s:%d\n", o.File, o.Line))
		b.WriteString(fmt.Sprintf("   %s, grade %s, score %d (min %.0f, max %.0f), priority %d\n",
			o.Kind, o.Grade, o.Score, o.MinScore, o.MaxScore, o.Priority))

		if len(o.Roles) > 0 {
			b.WriteString("\n   Roles:\n")
			for _, role := range o.Roles {
				value := fmt.Sprintf("%+.1f", role.Score)
				if role.Potential != nil {
					value = fmt.Sprintf("(%+.1f)", *role.Potential)
				}
				b.WriteString(fmt.Sprintf("     %-32s %8s  priority %d\n", role.Name, value, role.Priority))
			}
		}

		if o.Doc != "" {
			b.WriteString("\n   Doc:\n")
			b.WriteString(indentLines(o.Doc, "     "))
		}
		if o.Source != "" {
			b.WriteString("\n   Source:\n")
			b.WriteString(indentLines(o.Source, "     "))
		}
		if len(o.Children) > 0 {
			b.WriteString(fmt.Sprintf("\n   Children (%d):\n", len(o.Children)))
			for _, c := range o.Children {
				b.WriteString("     " + c + "\n")
			}
		}
	}

	for _, name := range r.Missing {
		b.WriteString(fmt.Sprintf("\nNot found at %s: %s\n", r.Revision, name))
	}
	return b.String(), nil
}

// formatCacheListHuman formats cache ls output in human-readable format
func formatCacheListHuman(r *CacheListResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Cache: %s\n", r.Dir))
	if len(r.Entries) == 0 {
		b.WriteString("\nNo cached snapshots.\n")
		return b.String(), nil
	}

	b.WriteString("\n")
	for _, e := range r.Entries {
		if e.Error != "" {
			b.WriteString(fmt.Sprintf("  ✗ %-40s %10s  %s\n", filepath.Base(e.Path), formatBytes(e.Bytes), e.Error))
			continue
		}
		b.WriteString(fmt.Sprintf("  ✓ %-40s %10s  %5d objects  %s\n",
			truncate(e.Revision, 40), formatBytes(e.Bytes), e.Objects, e.CreatedAt.Local().Format("2006-01-02 15:04")))
	}
	b.WriteString(fmt.Sprintf("\n%d snapshot(s), %s\n", len(r.Entries), formatBytes(r.TotalBytes)))
	return b.String(), nil
}

// formatHistoryListHuman formats history list output in human-readable format
func formatHistoryListHuman(r *HistoryListResponseCLI) (string, error) {
	if len(r.Runs) == 0 {
		return "No comparisons recorded.\n", nil
	}

	var b strings.Builder
	for _, run := range r.Runs {
		b.WriteString(fmt.Sprintf("%s  %s  %s .. %s\n",
			run.ID, run.CreatedAt.Local().Format("2006-01-02 15:04"), run.BeforeRev, run.AfterRev))
		b.WriteString(fmt.Sprintf("    +%d -%d ↑%d ↓%d =%d  net %s\n",
			run.Added, run.Removed, run.Improved, run.Degraded, run.Unchanged, signed(run.NetDelta)))
	}
	return b.String(), nil
}

// formatHistoryStatsHuman formats history stats output in human-readable format
func formatHistoryStatsHuman(r *HistoryStatsResponseCLI) (string, error) {
	var b strings.Builder

	c := r.Cache
	b.WriteString("Snapshot cache\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString(fmt.Sprintf("  Hits:     %d\n", c.Hits))
	b.WriteString(fmt.Sprintf("  Misses:   %d\n", c.Misses))
	b.WriteString(fmt.Sprintf("  Live:     %d\n", c.Live))
	b.WriteString(fmt.Sprintf("  Hit rate: %.0f%%\n", c.HitRate*100))

	if len(r.Recent) > 0 {
		b.WriteString("\nRecent materializations:\n")
		for _, m := range r.Recent {
			b.WriteString(fmt.Sprintf("  %-6s %-24s %5d objects  %6dms  %s\n",
				m.Source, truncate(m.Revision, 24), m.Objects, m.DurationMs, m.CreatedAt.Local().Format("2006-01-02 15:04")))
		}
	}
	return b.String(), nil
}

func indentLines(s, prefix string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		b.WriteString(prefix + line + "\n")
	}
	return b.String()
}
