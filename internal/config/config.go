package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"docdelta/internal/paths"
)

// CurrentVersion is the config schema version
const CurrentVersion = 1

// Config represents the complete docdelta configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Cache   CacheConfig   `json:"cache" mapstructure:"cache"`
	Git     GitConfig     `json:"git" mapstructure:"git"`
	Parser  ParserConfig  `json:"parser" mapstructure:"parser"`
	Grading GradingConfig `json:"grading" mapstructure:"grading"`
	History HistoryConfig `json:"history" mapstructure:"history"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// CacheConfig contains snapshot cache configuration
type CacheConfig struct {
	// Dir is the cache directory; relative paths resolve against the repo root
	Dir string `json:"dir" mapstructure:"dir"`
	// MemoEntries bounds the in-process decoded snapshot memo
	MemoEntries int `json:"memoEntries" mapstructure:"memoEntries"`
}

// GitConfig contains git subprocess configuration
type GitConfig struct {
	Binary    string `json:"binary" mapstructure:"binary"`
	TimeoutMs int    `json:"timeoutMs" mapstructure:"timeoutMs"` // 0 disables the timeout
}

// ParserConfig contains source parsing configuration
type ParserConfig struct {
	Languages    []string `json:"languages" mapstructure:"languages"`
	Ignore       []string `json:"ignore" mapstructure:"ignore"`
	MaxFileBytes int      `json:"maxFileBytes" mapstructure:"maxFileBytes"`
}

// GradingConfig contains grading configuration
type GradingConfig struct {
	// File is an optional TOML file overriding role weights
	File string `json:"file" mapstructure:"file"`
}

// HistoryConfig contains comparison history configuration
type HistoryConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format     string `json:"format" mapstructure:"format"`
	Level      string `json:"level" mapstructure:"level"`
	MaxSize    string `json:"maxSize" mapstructure:"maxSize"`
	MaxBackups int    `json:"maxBackups" mapstructure:"maxBackups"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Cache: CacheConfig{
			Dir:         "",
			MemoEntries: 8,
		},
		Git: GitConfig{
			Binary:    "git",
			TimeoutMs: 120000,
		},
		Parser: ParserConfig{
			Languages:    []string{"go", "python", "javascript", "typescript", "tsx", "java", "rust", "kotlin"},
			Ignore:       []string{"node_modules", "vendor", "testdata", "__pycache__", "dist", "build"},
			MaxFileBytes: 1000000,
		},
		Grading: GradingConfig{},
		History: HistoryConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Format:     "human",
			Level:      "info",
			MaxSize:    "10MB",
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from .docdelta/config.json. Values can
// be overridden with DOCDELTA_* environment variables, e.g.
// DOCDELTA_GIT_TIMEOUTMS=5000.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(repoRoot, paths.DataDirName))

	v.SetEnvPrefix("DOCDELTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.memoEntries", d.Cache.MemoEntries)
	v.SetDefault("git.binary", d.Git.Binary)
	v.SetDefault("git.timeoutMs", d.Git.TimeoutMs)
	v.SetDefault("parser.languages", d.Parser.Languages)
	v.SetDefault("parser.ignore", d.Parser.Ignore)
	v.SetDefault("parser.maxFileBytes", d.Parser.MaxFileBytes)
	v.SetDefault("grading.file", d.Grading.File)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.maxSize", d.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)
}

// Save writes the configuration to .docdelta/config.json
func (c *Config) Save(repoRoot string) error {
	if _, err := paths.EnsureDir(paths.GetDataDir(repoRoot)); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(paths.GetConfigPath(repoRoot), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Cache.MemoEntries < 0 {
		return &ConfigError{Field: "cache.memoEntries", Message: "must not be negative"}
	}
	if c.Git.TimeoutMs < 0 {
		return &ConfigError{Field: "git.timeoutMs", Message: "must not be negative"}
	}
	if c.Git.Binary == "" {
		return &ConfigError{Field: "git.binary", Message: "must not be empty"}
	}
	if c.Parser.MaxFileBytes < 0 {
		return &ConfigError{Field: "parser.maxFileBytes", Message: "must not be negative"}
	}
	switch c.Logging.Format {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be human or json"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
