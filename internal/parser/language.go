// Package parser extracts documentable code objects from a source tree
// with tree-sitter and grades them into a codebase snapshot.
package parser

import "strings"

// Language represents a supported programming language.
type Language string

const (
	LangGo         Language = "go"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangJava       Language = "java"
	LangKotlin     Language = "kotlin"
)

// AllLanguages lists every language the parser understands.
var AllLanguages = []Language{
	LangGo, LangPython, LangJavaScript, LangTypeScript, LangTSX, LangJava, LangRust, LangKotlin,
}

// LanguageFromExtension returns the Language for a file extension.
func LanguageFromExtension(ext string) (Language, bool) {
	switch strings.ToLower(ext) {
	case ".go":
		return LangGo, true
	case ".js", ".mjs", ".cjs", ".jsx":
		return LangJavaScript, true
	case ".ts", ".mts", ".cts":
		return LangTypeScript, true
	case ".tsx":
		return LangTSX, true
	case ".py", ".pyw":
		return LangPython, true
	case ".rs":
		return LangRust, true
	case ".java":
		return LangJava, true
	case ".kt", ".kts":
		return LangKotlin, true
	default:
		return "", false
	}
}

// ParseLanguage accepts a language name as written in the config.
func ParseLanguage(s string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "go", "golang":
		return LangGo, true
	case "javascript", "js":
		return LangJavaScript, true
	case "typescript", "ts":
		return LangTypeScript, true
	case "tsx":
		return LangTSX, true
	case "python", "py":
		return LangPython, true
	case "rust", "rs":
		return LangRust, true
	case "java":
		return LangJava, true
	case "kotlin", "kt":
		return LangKotlin, true
	default:
		return "", false
	}
}
