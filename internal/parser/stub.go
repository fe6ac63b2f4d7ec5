//go:build !cgo

package parser

import (
	"context"
	stderrors "errors"

	"docdelta/internal/codebase"
	"docdelta/internal/errors"
)

// ErrNoCGO is returned when parsing is unavailable due to missing CGO.
var ErrNoCGO = stderrors.New("source parsing requires CGO (tree-sitter)")

// IsAvailable returns whether parsing is available in this build.
// Returns false when CGO is disabled.
func IsAvailable() bool {
	return false
}

// Parse always fails in non-CGO builds.
func (p *Parser) Parse(ctx context.Context, dir string) (*codebase.Snapshot, error) {
	return nil, errors.New(errors.ParserError, "parser unavailable", ErrNoCGO, nil)
}
