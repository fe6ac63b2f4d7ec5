package slogutil

import (
	"io"
	"log/slog"

	"docdelta/internal/config"
	"docdelta/internal/paths"
)

// LoggerFactory builds the CLI logger: console output at the verbosity
// chosen on the command line, teed into the repository log file at the
// configured level.
type LoggerFactory struct {
	repoRoot string
	config   *config.Config
	cliLevel *slog.Level
	closers  []io.Closer
}

// NewLoggerFactory creates a new logger factory. cliLevel is nil when no
// verbosity flag was given.
func NewLoggerFactory(repoRoot string, cfg *config.Config, cliLevel *slog.Level) *LoggerFactory {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &LoggerFactory{
		repoRoot: repoRoot,
		config:   cfg,
		cliLevel: cliLevel,
	}
}

// Logger returns a logger writing to console and, when a repository root
// is known, to <repoRoot>/.docdelta/logs/docdelta.log. A log file that
// cannot be opened is skipped rather than failing the command.
func (f *LoggerFactory) Logger(console io.Writer) *slog.Logger {
	format := Format(f.config.Logging.Format)
	handlers := []slog.Handler{NewHandler(console, format, f.consoleLevel())}

	if fh, err := f.fileHandler(format); err == nil && fh != nil {
		handlers = append(handlers, fh)
	}

	if len(handlers) == 1 {
		return slog.New(handlers[0])
	}
	return slog.New(NewTeeHandler(handlers...))
}

func (f *LoggerFactory) fileHandler(format Format) (slog.Handler, error) {
	if f.repoRoot == "" {
		return nil, nil
	}

	rf, err := OpenRotatingFile(
		paths.GetLogPath(f.repoRoot),
		ParseSize(f.config.Logging.MaxSize),
		f.config.Logging.MaxBackups,
	)
	if err != nil {
		return nil, err
	}
	f.closers = append(f.closers, rf)

	return NewHandler(rf, format, f.fileLevel()), nil
}

// consoleLevel: CLI flag > warn
func (f *LoggerFactory) consoleLevel() slog.Level {
	if f.cliLevel != nil {
		return *f.cliLevel
	}
	return slog.LevelWarn
}

// fileLevel: CLI flag when more verbose > config > info
func (f *LoggerFactory) fileLevel() slog.Level {
	level := slog.LevelInfo
	if f.config.Logging.Level != "" {
		level = LevelFromString(f.config.Logging.Level)
	}
	if f.cliLevel != nil && *f.cliLevel < level {
		level = *f.cliLevel
	}
	return level
}

// Close closes all open log files.
func (f *LoggerFactory) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}
