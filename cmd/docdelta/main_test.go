package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"docdelta/internal/config"
	"docdelta/internal/errors"
	"docdelta/internal/grading"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  []string
	}{
		{name: "nil", err: nil, wantCode: exitOK},
		{name: "exit code", err: &exitCodeError{code: exitDegraded}, wantCode: exitDegraded},
		{
			name:     "wrapped exit code",
			err:      fmt.Errorf("diff: %w", &exitCodeError{code: exitDegraded}),
			wantCode: exitDegraded,
		},
		{
			name:     "coded error with fixes",
			err:      errors.New(errors.RevisionNotFound, "Revision v9 not found", nil, nil),
			wantCode: exitError,
			wantOut:  []string{"REVISION_NOT_FOUND", "Suggested fixes:", "$ git log --oneline -n 20"},
		},
		{
			name:     "plain error",
			err:      fmt.Errorf("boom"),
			wantCode: exitError,
			wantOut:  []string{"Error: boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if got := handleError(&buf, tt.err); got != tt.wantCode {
				t.Errorf("handleError() = %d, want %d", got, tt.wantCode)
			}
			for _, want := range tt.wantOut {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
			if tt.wantOut == nil && buf.Len() != 0 {
				t.Errorf("expected no output, got %q", buf.String())
			}
		})
	}
}

func TestCacheNamespace(t *testing.T) {
	cfg := config.DefaultConfig()
	w := grading.DefaultWeights()

	base := cacheNamespace(cfg, w)
	if len(base) != 16 {
		t.Fatalf("namespace %q should be 16 hex chars", base)
	}
	if again := cacheNamespace(config.DefaultConfig(), grading.DefaultWeights()); again != base {
		t.Errorf("namespace not stable: %q vs %q", base, again)
	}

	cfg.Logging.Level = "debug"
	if got := cacheNamespace(cfg, w); got != base {
		t.Error("logging settings should not change the namespace")
	}

	cfg.Parser.Ignore = append(cfg.Parser.Ignore, "generated")
	if got := cacheNamespace(cfg, w); got == base {
		t.Error("parser settings should change the namespace")
	}

	w2 := grading.DefaultWeights()
	w2.HasDoc++
	if got := cacheNamespace(config.DefaultConfig(), w2); got == base {
		t.Error("weights should change the namespace")
	}
}

func TestParseAge(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"30d", 30 * 24 * time.Hour, false},
		{"0d", 0, false},
		{"72h", 72 * time.Hour, false},
		{" 90m ", 90 * time.Minute, false},
		{"-1h", 0, true},
		{"xd", 0, true},
		{"-3d", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		got, err := parseAge(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseAge(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseAge(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseRevisionArg(t *testing.T) {
	live, err := parseRevisionArg("worktree")
	if err != nil || !live.IsLive() {
		t.Errorf("worktree should parse as live, got %v, %v", live, err)
	}

	fixed, err := parseRevisionArg("v1.2.0")
	if err != nil || fixed.IsLive() || fixed.ID() != "v1.2.0" {
		t.Errorf("unexpected revision %v, %v", fixed, err)
	}

	if _, err := parseRevisionArg("--oops"); !errors.IsCode(err, errors.UsageError) {
		t.Errorf("expected USAGE_ERROR, got %v", err)
	}
}
