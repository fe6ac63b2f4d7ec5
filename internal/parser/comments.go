package parser

import (
	"strings"
)

// leadingComment returns the comment block directly above line (0-based).
// The scan walks upward one line at a time and stops at the first line
// that is not part of a comment.
func leadingComment(lines []string, line int, lang Language) string {
	if line > len(lines) {
		line = len(lines)
	}

	var block []string
	for i := line - 1; i >= 0; i-- {
		text := strings.TrimSpace(lines[i])
		if !isCommentLine(text, lang) {
			break
		}
		block = append(block, text)
	}

	for i, j := 0, len(block)-1; i < j; i, j = i+1, j-1 {
		block[i], block[j] = block[j], block[i]
	}
	return cleanComment(block, lang)
}

func isCommentLine(text string, lang Language) bool {
	switch lang {
	case LangPython:
		return strings.HasPrefix(text, "#") && !strings.HasPrefix(text, "#!")
	case LangRust:
		// Attributes sit between docs and the item.
		if strings.HasPrefix(text, "#[") {
			return true
		}
		if strings.HasPrefix(text, "//!") {
			return false
		}
	}
	return strings.HasPrefix(text, "//") ||
		strings.HasPrefix(text, "/*") ||
		strings.HasPrefix(text, "*")
}

var commentMarkers = []string{"///", "//!", "//", "/**", "/*", "*/", "*", "#"}

// cleanComment strips comment markers and drops non-text lines.
func cleanComment(block []string, lang Language) string {
	out := make([]string, 0, len(block))
	for _, text := range block {
		if lang == LangRust && strings.HasPrefix(text, "#[") {
			continue
		}
		if lang != LangPython && strings.HasPrefix(text, "#") {
			continue
		}
		text = strings.TrimSuffix(text, "*/")
		for _, m := range commentMarkers {
			if strings.HasPrefix(text, m) {
				text = strings.TrimPrefix(text, m)
				break
			}
		}
		// Directives like //go:generate are not documentation.
		if lang == LangGo && isGoDirective(text) {
			continue
		}
		out = append(out, strings.TrimRight(strings.TrimPrefix(text, " "), " \t"))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func isGoDirective(text string) bool {
	if text == "" || text[0] == ' ' {
		return false
	}
	i := strings.IndexByte(text, ':')
	if i <= 0 {
		return false
	}
	for _, r := range text[:i] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// innerDoc returns the leading //! block of a Rust file.
func innerDoc(lines []string) string {
	var block []string
	for _, line := range lines {
		text := strings.TrimSpace(line)
		if !strings.HasPrefix(text, "//!") {
			break
		}
		block = append(block, text)
	}
	return cleanComment(block, LangRust)
}

// cleanDocstring turns a Python string literal into its text, removing
// the quotes and the common indentation of continuation lines.
func cleanDocstring(literal string) string {
	s := strings.TrimLeft(literal, "rRuUbBfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			s = s[len(q) : len(s)-len(q)]
			break
		}
	}

	lines := strings.Split(strings.ReplaceAll(s, "\t", "    "), "\n")
	indent := -1
	for _, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " ")
		if trimmed == "" {
			continue
		}
		if n := len(line) - len(trimmed); indent < 0 || n < indent {
			indent = n
		}
	}

	lines[0] = strings.TrimSpace(lines[0])
	for i := 1; i < len(lines); i++ {
		if indent > 0 && len(lines[i]) >= indent {
			lines[i] = lines[i][indent:]
		}
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
