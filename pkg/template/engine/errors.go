package engine

import (
	"errors"
	"fmt"

	"stencil-hq/atrium/pkg/template"
)

// Common sentinel errors.
var (
	// ErrInvalidConfig indicates invalid resolver configuration.
	ErrInvalidConfig = errors.New("invalid resolver configuration")

	// ErrTemplateNotFound indicates the repository holds no template with
	// the requested id.
	ErrTemplateNotFound = errors.New("template not found")
)

// RepositoryError wraps a failure reading from the template repository.
// The resolution path swallows these (an unavailable repository resolves to
// no match); the error type exists for callers that read the repository
// directly, such as the classification endpoint.
type RepositoryError struct {
	Op    string
	ID    template.ID
	Cause error
}

// Error returns the error message.
func (e *RepositoryError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("template repository %s %s: %v", e.Op, e.ID, e.Cause)
	}
	return fmt.Sprintf("template repository %s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *RepositoryError) Unwrap() error {
	return e.Cause
}
