// Package git runs the git subprocesses needed to materialize a
// revision: clone, verify and hard reset.
package git

import (
	"bytes"
	"context"
	stderrors "errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"docdelta/internal/config"
	"docdelta/internal/errors"
	"docdelta/internal/slogutil"
)

const (
	// DefaultBinary is the git executable looked up on PATH.
	DefaultBinary = "git"

	// DefaultTimeout bounds a single git invocation.
	DefaultTimeout = 120 * time.Second
)

// Adapter executes git commands with a per-command timeout.
type Adapter struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewAdapter creates an adapter from the git section of cfg. A nil cfg
// uses the defaults.
func NewAdapter(cfg *config.Config, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}

	binary := DefaultBinary
	timeout := DefaultTimeout
	if cfg != nil {
		if cfg.Git.Binary != "" {
			binary = cfg.Git.Binary
		}
		// 0 disables the timeout
		timeout = time.Duration(cfg.Git.TimeoutMs) * time.Millisecond
	}

	return &Adapter{
		binary:  binary,
		timeout: timeout,
		logger:  logger,
	}
}

// IsAvailable reports whether the git binary can be found.
func (g *Adapter) IsAvailable() bool {
	_, err := exec.LookPath(g.binary)
	return err == nil
}

// Clone clones the repository at src into dst. dst must not exist.
func (g *Adapter) Clone(ctx context.Context, src, dst string) error {
	_, err := g.run(ctx, "", "clone", "--quiet", "--no-hardlinks", src, dst)
	if err != nil {
		if errors.IsCode(err, errors.Timeout) {
			return err
		}
		return errors.New(errors.CloneFailed, "Failed to clone working directory", err, nil).
			WithDetails(map[string]string{"source": src, "destination": dst, "stderr": stderrOf(err)})
	}
	return nil
}

// VerifyRevision resolves rev to a commit hash in dir. In a fresh clone
// only the default branch exists locally, so other branch names are
// retried as remote-tracking branches of origin.
func (g *Adapter) VerifyRevision(ctx context.Context, dir, rev string) (string, error) {
	var lastErr error
	for _, candidate := range []string{rev, "origin/" + rev} {
		out, err := g.run(ctx, dir, "rev-parse", "--verify", "--quiet", candidate+"^{commit}")
		if err == nil {
			return out, nil
		}
		if !errors.IsCode(err, errors.SubprocessFailed) {
			return "", err
		}
		lastErr = err
	}
	return "", errors.New(errors.RevisionNotFound, "Revision not found: "+rev, lastErr, nil).
		WithDetails(map[string]string{"revision": rev})
}

// ResetHard moves dir's HEAD, index and working tree to rev.
func (g *Adapter) ResetHard(ctx context.Context, dir, rev string) error {
	_, err := g.run(ctx, dir, "reset", "--hard", "--quiet", rev)
	return err
}

// HeadCommit returns the commit hash of HEAD in dir.
func (g *Adapter) HeadCommit(ctx context.Context, dir string) (string, error) {
	return g.run(ctx, dir, "rev-parse", "HEAD")
}

// RepoRoot returns the top level of the work tree containing dir.
func (g *Adapter) RepoRoot(ctx context.Context, dir string) (string, error) {
	return g.run(ctx, dir, "rev-parse", "--show-toplevel")
}

// run executes git with args in dir and returns trimmed stdout.
// Failures carry TIMEOUT or SUBPROCESS_FAILED with the captured stderr.
func (g *Adapter) run(ctx context.Context, dir string, args ...string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, g.binary, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	g.logger.Debug("Executing git command", "args", args, "dir", dir, "timeout", g.timeout.String())

	start := time.Now()
	err := cmd.Run()
	if err != nil {
		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", errors.New(errors.Timeout, "Git command timed out", err, nil).
				WithDetails(map[string]interface{}{"args": args, "timeout": g.timeout.String()})
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		details := map[string]interface{}{
			"args":   args,
			"stderr": strings.TrimSpace(stderr.String()),
		}
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			details["exitCode"] = exitErr.ExitCode()
			return "", errors.New(errors.SubprocessFailed, "Git command failed", err, nil).WithDetails(details)
		}
		return "", errors.New(errors.SubprocessFailed, "Failed to execute git command", err, nil).WithDetails(details)
	}

	g.logger.Debug("Git command finished", "args", args, "duration", time.Since(start))
	return strings.TrimSpace(stdout.String()), nil
}

// stderrOf extracts captured stderr from a SUBPROCESS_FAILED error.
func stderrOf(err error) string {
	var de *errors.DeltaError
	if !stderrors.As(err, &de) {
		return ""
	}
	if m, ok := de.Details.(map[string]interface{}); ok {
		if s, ok := m["stderr"].(string); ok {
			return s
		}
	}
	return ""
}
