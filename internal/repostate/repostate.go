// Package repostate fingerprints the live working tree: HEAD plus hashes
// of the staged diff, the unstaged diff and the untracked file list.
package repostate

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"docdelta/internal/errors"
	"docdelta/internal/paths"
)

const (
	// EmptyHash represents an empty diff/list hash
	EmptyHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
)

// RepoState represents the current state of the repository
type RepoState struct {
	RepoStateID         string `json:"repoStateId" yaml:"repoStateId"`
	HeadCommit          string `json:"headCommit" yaml:"headCommit"`
	StagedDiffHash      string `json:"stagedDiffHash" yaml:"stagedDiffHash"`
	WorkingTreeDiffHash string `json:"workingTreeDiffHash" yaml:"workingTreeDiffHash"`
	UntrackedListHash   string `json:"untrackedListHash" yaml:"untrackedListHash"`
	Dirty               bool   `json:"dirty" yaml:"dirty"`
	ComputedAt          string `json:"computedAt" yaml:"computedAt"`
}

// ComputeRepoState computes the current repository state using git commands.
// binary is the git executable; empty means "git".
func ComputeRepoState(ctx context.Context, binary, repoRoot string) (*RepoState, error) {
	if binary == "" {
		binary = "git"
	}

	headCommit, err := gitOutput(ctx, binary, repoRoot, "rev-parse", "HEAD")
	if err != nil {
		return nil, errors.New(
			errors.InternalError,
			"Failed to get HEAD commit",
			err,
			[]errors.FixAction{
				{
					Type:        errors.RunCommand,
					Command:     "git status",
					Safe:        true,
					Description: "Check if you're in a valid git repository",
				},
			},
		)
	}
	headCommit = strings.TrimSpace(headCommit)

	stagedDiff, err := gitOutput(ctx, binary, repoRoot, "diff", "--cached")
	if err != nil {
		return nil, errors.New(errors.InternalError, "Failed to get staged diff", err, nil)
	}
	stagedDiffHash := hashString(stagedDiff)

	workingDiff, err := gitOutput(ctx, binary, repoRoot, "diff")
	if err != nil {
		return nil, errors.New(errors.InternalError, "Failed to get working tree diff", err, nil)
	}
	workingTreeDiffHash := hashString(workingDiff)

	// docdelta's own state directory is not part of the tree
	untrackedFiles, err := gitOutput(ctx, binary, repoRoot,
		"ls-files", "--others", "--exclude-standard", "--", ".", ":(exclude)"+paths.DataDirName)
	if err != nil {
		return nil, errors.New(errors.InternalError, "Failed to get untracked files", err, nil)
	}
	untrackedListHash := hashString(untrackedFiles)

	dirty := stagedDiffHash != EmptyHash ||
		workingTreeDiffHash != EmptyHash ||
		untrackedListHash != EmptyHash

	return &RepoState{
		RepoStateID:         computeRepoStateID(headCommit, stagedDiffHash, workingTreeDiffHash, untrackedListHash),
		HeadCommit:          headCommit,
		StagedDiffHash:      stagedDiffHash,
		WorkingTreeDiffHash: workingTreeDiffHash,
		UntrackedListHash:   untrackedListHash,
		Dirty:               dirty,
		ComputedAt:          time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func gitOutput(ctx context.Context, binary, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = dir

	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(output), nil
}

// hashString computes SHA256 hash of a string
func hashString(s string) string {
	if s == "" {
		return EmptyHash
	}
	h := sha256.New()
	h.Write([]byte(s))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// computeRepoStateID computes the composite repoStateId from all components
func computeRepoStateID(headCommit, stagedHash, workingHash, untrackedHash string) string {
	composite := fmt.Sprintf("%s:%s:%s:%s", headCommit, stagedHash, workingHash, untrackedHash)
	return hashString(composite)
}

// IsGitRepository checks if the given path is inside a git work tree
func IsGitRepository(ctx context.Context, path string) bool {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--git-dir")
	cmd.Dir = path
	return cmd.Run() == nil
}

// GetRepoRoot finds the git repository root from the given directory
func GetRepoRoot(ctx context.Context, startPath string) (string, error) {
	output, err := gitOutput(ctx, "git", startPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", errors.New(
			errors.CloneFailed,
			"Not a git repository: "+startPath,
			err,
			[]errors.FixAction{
				{
					Type:        errors.RunCommand,
					Command:     "git init",
					Safe:        false,
					Description: "Initialize a git repository",
				},
			},
		)
	}
	return strings.TrimSpace(output), nil
}
