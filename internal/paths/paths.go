package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DataDirName is the per-repository state directory
	DataDirName = ".docdelta"
	// CacheDirName holds serialized snapshots
	CacheDirName = "cache"
	// LogsDirName holds log files
	LogsDirName = "logs"
	// DatabaseFileName is the comparison history database
	DatabaseFileName = "docdelta.db"
	// LogFileName is the main log file
	LogFileName = "docdelta.log"
	// ConfigFileName is the configuration file inside DataDirName
	ConfigFileName = "config.json"
)

// GetDataDir returns <repoRoot>/.docdelta
func GetDataDir(repoRoot string) string {
	return filepath.Join(repoRoot, DataDirName)
}

// GetCacheDir resolves the snapshot cache directory. A relative dir is
// taken relative to the repository root; empty means the default.
func GetCacheDir(repoRoot, dir string) string {
	if dir == "" {
		return filepath.Join(GetDataDir(repoRoot), CacheDirName)
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(repoRoot, dir)
}

// GetLogPath returns <repoRoot>/.docdelta/logs/docdelta.log
func GetLogPath(repoRoot string) string {
	return filepath.Join(GetDataDir(repoRoot), LogsDirName, LogFileName)
}

// GetDatabasePath returns <repoRoot>/.docdelta/docdelta.db
func GetDatabasePath(repoRoot string) string {
	return filepath.Join(GetDataDir(repoRoot), DatabaseFileName)
}

// GetConfigPath returns <repoRoot>/.docdelta/config.json
func GetConfigPath(repoRoot string) string {
	return filepath.Join(GetDataDir(repoRoot), ConfigFileName)
}

// EnsureDir creates dir and its parents if needed and returns it.
func EnsureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return dir, nil
}

// CanonicalizePath converts an absolute path to a repo-relative canonical path
// - Resolves symlinks to real paths
// - Makes path relative to repo root
// - Converts backslashes to forward slashes
func CanonicalizePath(absolutePath string, repoRoot string) (string, error) {
	resolved, err := filepath.EvalSymlinks(absolutePath)
	if err != nil {
		if os.IsNotExist(err) {
			resolved = absolutePath
		} else {
			return "", err
		}
	}

	repoRootResolved, err := filepath.EvalSymlinks(repoRoot)
	if err != nil {
		if os.IsNotExist(err) {
			repoRootResolved = repoRoot
		} else {
			return "", err
		}
	}

	relativePath, err := filepath.Rel(repoRootResolved, resolved)
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(relativePath), nil
}

// IsWithinRepo checks if a path is within the repository root
func IsWithinRepo(path string, repoRoot string) bool {
	canonical, err := CanonicalizePath(path, repoRoot)
	if err != nil {
		return false
	}
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}

// NormalizePath converts backslashes to forward slashes
func NormalizePath(path string) string {
	return filepath.ToSlash(path)
}
