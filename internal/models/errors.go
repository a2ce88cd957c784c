package models

import (
	"errors"
	"fmt"
)

// Error taxonomy for the translation layer. Operations fail with exactly one
// of these kinds; the tool/resource routers log the underlying cause and
// re-raise a uniform execution failure carrying the original message.

// NotFoundError indicates a referenced page, issue, space, or project is absent
type NotFoundError struct {
	Resource string // "page", "issue", "space", "project"
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// VersionConflictError indicates an optimistic page update was rejected
// because the caller-supplied version no longer matches the remote version.
type VersionConflictError struct {
	PageID    string
	Current   int
	Requested int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict on page %s: current version is %d, but update requested for version %d",
		e.PageID, e.Current, e.Requested)
}

// ValidationError indicates a request failed shape or invariant validation
// before any remote call was made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with a formatted message
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InvalidEpicLinkError indicates a story's epic link does not reference an
// existing Epic issue.
type InvalidEpicLinkError struct {
	Key string
}

func (e *InvalidEpicLinkError) Error() string {
	return fmt.Sprintf("invalid epic link: %s", e.Key)
}

// RemoteError wraps a transport, authorization, or remote-API failure from a
// collaborator client.
type RemoteError struct {
	Service    string // "confluence" or "jira"
	Operation  string
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s failed with status %d: %v", e.Service, e.Operation, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Service, e.Operation, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// UnknownToolError indicates a tool name with no registry entry
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Name)
}

// InvalidResourceError indicates a resource URI whose scheme or path shape is
// not served.
type InvalidResourceError struct {
	URI string
}

func (e *InvalidResourceError) Error() string {
	return fmt.Sprintf("invalid resource URI: %s", e.URI)
}

// IsNotFound reports whether err is a NotFoundError anywhere in its chain
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// RemoteStatus returns the HTTP status carried by a RemoteError in err's
// chain, or 0 when err is not a remote failure.
func RemoteStatus(err error) int {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.StatusCode
	}
	return 0
}
