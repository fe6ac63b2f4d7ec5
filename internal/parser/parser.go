package parser

import (
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"docdelta/internal/config"
	"docdelta/internal/grading"
	"docdelta/internal/paths"
	"docdelta/internal/slogutil"
)

// Options configures a Parser.
type Options struct {
	// Languages limits parsing to these languages. Empty means all.
	Languages []Language
	// Ignore lists directory or file names skipped anywhere in the tree.
	Ignore []string
	// MaxFileBytes skips larger files. 0 means no limit.
	MaxFileBytes int64
	Grader       *grading.Grader
	Logger       *slog.Logger
}

// Parser turns a directory into a graded snapshot. A Parser holds no
// per-parse state and is safe for concurrent use.
type Parser struct {
	languages    map[Language]bool
	ignore       map[string]bool
	maxFileBytes int64
	grader       *grading.Grader
	logger       *slog.Logger
}

// New creates a parser.
func New(opts Options) *Parser {
	p := &Parser{
		languages:    make(map[Language]bool),
		ignore:       make(map[string]bool),
		maxFileBytes: opts.MaxFileBytes,
		grader:       opts.Grader,
		logger:       opts.Logger,
	}

	langs := opts.Languages
	if len(langs) == 0 {
		langs = AllLanguages
	}
	for _, l := range langs {
		p.languages[l] = true
	}
	for _, name := range opts.Ignore {
		p.ignore[name] = true
	}

	if p.grader == nil {
		p.grader = grading.NewDefault()
	}
	if p.logger == nil {
		p.logger = slogutil.NewDiscardLogger()
	}
	return p
}

// NewFromConfig creates a parser from the parser section of cfg.
// Unknown language names are logged and ignored.
func NewFromConfig(cfg *config.Config, grader *grading.Grader, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}

	var langs []Language
	for _, name := range cfg.Parser.Languages {
		lang, ok := ParseLanguage(name)
		if !ok {
			logger.Warn("Ignoring unknown parser language", "language", name)
			continue
		}
		langs = append(langs, lang)
	}

	return New(Options{
		Languages:    langs,
		Ignore:       cfg.Parser.Ignore,
		MaxFileBytes: int64(cfg.Parser.MaxFileBytes),
		Grader:       grader,
		Logger:       logger,
	})
}

// sourceFile is one file selected for parsing.
type sourceFile struct {
	rel  string // slash-separated, relative to the parsed directory
	abs  string
	lang Language
}

// sourceFiles lists parseable files under dir in lexical order. Hidden
// and ignored entries are skipped, as are files over the size limit.
func (p *Parser) sourceFiles(dir string) ([]sourceFile, error) {
	var files []sourceFile

	err := filepath.WalkDir(dir, func(abs string, d fs.DirEntry, err error) error {
		if err != nil {
			if abs == dir {
				return err
			}
			p.logger.Debug("Skipping unreadable path", "path", abs, "error", err)
			return nil
		}

		name := d.Name()
		if abs != dir && (strings.HasPrefix(name, ".") || p.ignore[name]) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		lang, ok := LanguageFromExtension(filepath.Ext(name))
		if !ok || !p.languages[lang] {
			return nil
		}

		if p.maxFileBytes > 0 {
			info, err := d.Info()
			if err != nil {
				return nil
			}
			if info.Size() > p.maxFileBytes {
				p.logger.Debug("Skipping large file", "path", abs, "size", info.Size())
				return nil
			}
		}

		rel, err := filepath.Rel(dir, abs)
		if err != nil {
			return nil
		}
		files = append(files, sourceFile{rel: paths.NormalizePath(rel), abs: abs, lang: lang})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].rel < files[j].rel })
	return files, nil
}

// moduleFromPath derives a module name from a file path for languages
// without package declarations.
func moduleFromPath(rel string, lang Language) string {
	noExt := strings.TrimSuffix(rel, path.Ext(rel))

	switch lang {
	case LangPython:
		if path.Base(noExt) == "__init__" {
			if dir := path.Dir(noExt); dir != "." {
				noExt = dir
			}
		}
		return strings.ReplaceAll(noExt, "/", ".")
	case LangGo, LangJava, LangKotlin:
		dir := path.Dir(rel)
		if dir == "." {
			return ""
		}
		if lang == LangGo {
			return dir
		}
		return strings.ReplaceAll(dir, "/", ".")
	default:
		return noExt
	}
}

// join builds a namespace-qualified name.
func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// methodName builds the fullname of a method of container.
func methodName(container, name string) string {
	return container + "#" + name
}
