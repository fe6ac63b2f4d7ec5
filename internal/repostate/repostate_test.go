package repostate

import (
	"context"
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"testing"

	"docdelta/internal/errors"
	"docdelta/internal/testutil"
)

func TestHashString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string returns empty hash",
			input:    "",
			expected: EmptyHash,
		},
		{
			name:     "simple string",
			input:    "hello",
			expected: fmt.Sprintf("%x", sha256.Sum256([]byte("hello"))),
		},
		{
			name:     "multiline string",
			input:    "line1\nline2\nline3",
			expected: fmt.Sprintf("%x", sha256.Sum256([]byte("line1\nline2\nline3"))),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := hashString(tc.input)
			if result != tc.expected {
				t.Errorf("hashString(%q) = %q, expected %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestComputeRepoStateID(t *testing.T) {
	// Test with known inputs
	headCommit := "abc123"
	stagedHash := "staged123"
	workingHash := "working123"
	untrackedHash := "untracked123"

	result := computeRepoStateID(headCommit, stagedHash, workingHash, untrackedHash)

	// Verify it's a valid SHA256 hash (64 hex characters)
	if len(result) != 64 {
		t.Errorf("Expected 64 character hash, got %d characters", len(result))
	}

	// Verify consistency - same inputs should produce same output
	result2 := computeRepoStateID(headCommit, stagedHash, workingHash, untrackedHash)
	if result != result2 {
		t.Error("computeRepoStateID not consistent for same inputs")
	}

	// Verify different inputs produce different outputs
	result3 := computeRepoStateID("different", stagedHash, workingHash, untrackedHash)
	if result == result3 {
		t.Error("Different inputs should produce different hashes")
	}
}

func TestEmptyHashConstant(t *testing.T) {
	// Verify EmptyHash is the SHA256 of empty string
	expected := fmt.Sprintf("%x", sha256.Sum256([]byte("")))
	if EmptyHash != expected {
		t.Errorf("EmptyHash = %q, expected %q (SHA256 of empty string)", EmptyHash, expected)
	}
}

func TestIsGitRepository(t *testing.T) {
	repo := testutil.NewGitRepo(t)
	ctx := context.Background()

	t.Run("valid git repository", func(t *testing.T) {
		if !IsGitRepository(ctx, repo.Root) {
			t.Errorf("Expected %s to be a git repository", repo.Root)
		}
	})

	t.Run("non-git directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		if IsGitRepository(ctx, tmpDir) {
			t.Errorf("Expected %s to NOT be a git repository", tmpDir)
		}
	})
}

func TestGetRepoRoot(t *testing.T) {
	repo := testutil.NewGitRepo(t)
	repo.WriteFile("pkg/sub/a.go", "package sub\n")
	ctx := context.Background()

	want, err := filepath.EvalSymlinks(repo.Root)
	if err != nil {
		t.Fatal(err)
	}

	for _, start := range []string{repo.Root, filepath.Join(repo.Root, "pkg", "sub")} {
		got, err := GetRepoRoot(ctx, start)
		if err != nil {
			t.Fatalf("GetRepoRoot(%s) failed: %v", start, err)
		}
		if resolved, _ := filepath.EvalSymlinks(got); resolved != want {
			t.Errorf("GetRepoRoot(%s) = %s, want %s", start, got, want)
		}
	}

	if _, err := GetRepoRoot(ctx, t.TempDir()); err == nil {
		t.Error("expected error outside a repository")
	}
}

func TestComputeRepoState(t *testing.T) {
	repo := testutil.NewGitRepo(t)
	repo.WriteFile("a.txt", "one\n")
	head := repo.Commit("initial")
	ctx := context.Background()

	clean, err := ComputeRepoState(ctx, "", repo.Root)
	if err != nil {
		t.Fatalf("ComputeRepoState failed: %v", err)
	}
	if clean.HeadCommit != head {
		t.Errorf("HeadCommit = %s, want %s", clean.HeadCommit, head)
	}
	if clean.Dirty {
		t.Error("fresh commit reported dirty")
	}
	if clean.StagedDiffHash != EmptyHash || clean.WorkingTreeDiffHash != EmptyHash || clean.UntrackedListHash != EmptyHash {
		t.Errorf("expected empty hashes, got %+v", clean)
	}

	again, err := ComputeRepoState(ctx, "git", repo.Root)
	if err != nil {
		t.Fatal(err)
	}
	if again.RepoStateID != clean.RepoStateID {
		t.Error("RepoStateID not stable for an unchanged tree")
	}

	tests := []struct {
		name   string
		mutate func()
		check  func(s *RepoState) bool
	}{
		{
			name:   "untracked file",
			mutate: func() { repo.WriteFile("new.txt", "x\n") },
			check:  func(s *RepoState) bool { return s.UntrackedListHash != EmptyHash },
		},
		{
			name:   "unstaged change",
			mutate: func() { repo.WriteFile("a.txt", "two\n") },
			check:  func(s *RepoState) bool { return s.WorkingTreeDiffHash != EmptyHash },
		},
		{
			name:   "staged change",
			mutate: func() { repo.Git("add", "a.txt") },
			check:  func(s *RepoState) bool { return s.StagedDiffHash != EmptyHash },
		},
	}

	prev := clean.RepoStateID
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.mutate()
			state, err := ComputeRepoState(ctx, "", repo.Root)
			if err != nil {
				t.Fatal(err)
			}
			if !state.Dirty || !tc.check(state) {
				t.Errorf("state not dirty as expected: %+v", state)
			}
			if state.RepoStateID == prev {
				t.Error("RepoStateID did not change")
			}
			prev = state.RepoStateID
		})
	}
}

func TestComputeRepoState_NotARepo(t *testing.T) {
	testutil.RequireGit(t)

	_, err := ComputeRepoState(context.Background(), "", t.TempDir())
	if !errors.IsCode(err, errors.InternalError) {
		t.Errorf("expected INTERNAL_ERROR, got %v", err)
	}
}
