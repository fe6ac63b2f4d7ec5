package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// UsageError indicates a caller bug, such as comparing a snapshot with itself
	UsageError ErrorCode = "USAGE_ERROR"
	// IdentityCollision indicates both sides of a comparison are the same instance
	IdentityCollision ErrorCode = "IDENTITY_COLLISION"
	// RevisionNotFound indicates the target revision does not exist in history
	RevisionNotFound ErrorCode = "REVISION_NOT_FOUND"
	// CloneFailed indicates the working directory could not be cloned
	CloneFailed ErrorCode = "CLONE_FAILED"
	// SubprocessFailed indicates a git invocation exited non-zero
	SubprocessFailed ErrorCode = "SUBPROCESS_FAILED"
	// CacheCorrupt indicates a cache file exists but cannot be decoded
	CacheCorrupt ErrorCode = "CACHE_CORRUPT"
	// ParserError indicates the source parser failed
	ParserError ErrorCode = "PARSER_ERROR"
	// Timeout indicates a git command timed out
	Timeout ErrorCode = "TIMEOUT"
	// ConfigInvalid indicates the configuration failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// OpenDocs suggests opening documentation
	OpenDocs FixActionType = "open-docs"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
}

// DeltaError represents a docdelta error with code, message, and suggestions
type DeltaError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new DeltaError. When suggestedFixes is nil the
// predefined fixes for the code are attached.
func New(code ErrorCode, message string, cause error, suggestedFixes []FixAction) *DeltaError {
	if suggestedFixes == nil {
		suggestedFixes = GetSuggestedFixes(code)
	}
	return &DeltaError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: suggestedFixes,
	}
}

// Error implements the error interface
func (e *DeltaError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DeltaError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *DeltaError) WithDetails(details interface{}) *DeltaError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first DeltaError in err's chain,
// or "" if there is none.
func CodeOf(err error) ErrorCode {
	var de *DeltaError
	if stderrors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		var de *DeltaError
		if !stderrors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.cause
	}
	return false
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	RevisionNotFound: {
		{
			Type:        RunCommand,
			Command:     "git log --oneline -n 20",
			Safe:        true,
			Description: "List recent revisions to pick an existing one",
		},
	},
	CloneFailed: {
		{
			Type:        RunCommand,
			Command:     "git status",
			Safe:        true,
			Description: "Verify the directory is a readable git repository",
		},
	},
	CacheCorrupt: {
		{
			Type:        RunCommand,
			Command:     "docdelta cache clear",
			Safe:        true,
			Description: "Remove cached snapshots so they are rebuilt",
		},
	},
	ConfigInvalid: {
		{
			Type:        RunCommand,
			Command:     "docdelta config init --force",
			Safe:        false,
			Description: "Rewrite .docdelta/config.json with defaults",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
