package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"docdelta/internal/errors"
)

// Exit codes
const (
	exitOK       = 0
	exitDegraded = 1 // diff --fail-on-degraded found degraded objects
	exitError    = 2
)

// exitCodeError ends a command with a specific exit code and no message.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	err := rootCmd.Execute()
	os.Exit(handleError(os.Stderr, err))
}

// handleError prints err and returns the process exit code.
func handleError(w io.Writer, err error) int {
	if err == nil {
		return exitOK
	}

	var exitErr *exitCodeError
	if stderrors.As(err, &exitErr) {
		return exitErr.code
	}

	var de *errors.DeltaError
	if stderrors.As(err, &de) {
		fmt.Fprintf(w, "Error: %v\n", err)
		if len(de.SuggestedFixes) > 0 {
			fmt.Fprintln(w, "\nSuggested fixes:")
			for _, fix := range de.SuggestedFixes {
				if fix.Command != "" {
					fmt.Fprintf(w, "  $ %s\n", fix.Command)
				}
				if fix.Description != "" {
					fmt.Fprintf(w, "    %s\n", fix.Description)
				}
			}
		}
		return exitError
	}

	fmt.Fprintf(w, "Error: %v\n", err)
	return exitError
}
