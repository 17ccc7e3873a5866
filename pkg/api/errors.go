package api

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports structural graph defects. A graph that fails
// validation is never scheduled.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid workflow graph: " + strings.Join(e.Problems, "; ")
}

// NewValidationError wraps the collected validation messages.
func NewValidationError(problems []string) error {
	return &ValidationError{Problems: problems}
}

// IsValidationError returns the collected problems if err is a
// ValidationError.
func IsValidationError(err error) ([]string, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Problems, true
	}
	return nil, false
}

// ConfigError means a node's config is malformed for its type: missing URL,
// unknown operator, non-numeric comparison, unknown transform step, unknown
// node type. It is always caught at the executor boundary and turned into a
// NodeResult with status error.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Reason
}

// NewConfigError builds a ConfigError with a formatted reason.
func NewConfigError(format string, args ...any) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err is a ConfigError.
func IsConfigError(err error) bool {
	var c *ConfigError
	return errors.As(err, &c)
}

// ExternalCallError wraps a collaborator failure (agent, HTTP, mailer,
// datastore). Caught identically to ConfigError.
type ExternalCallError struct {
	Collaborator string
	Err          error
}

func (e *ExternalCallError) Error() string {
	return fmt.Sprintf("%s call failed: %v", e.Collaborator, e.Err)
}

func (e *ExternalCallError) Unwrap() error {
	return e.Err
}

// NewExternalCallError wraps err as a failure of the named collaborator.
func NewExternalCallError(collaborator string, err error) error {
	return &ExternalCallError{Collaborator: collaborator, Err: err}
}

// IsExternalCallError reports whether err is an ExternalCallError.
func IsExternalCallError(err error) bool {
	var x *ExternalCallError
	return errors.As(err, &x)
}

// ErrExecutionNotFound is returned when an execution id is unknown to the
// configured store.
var ErrExecutionNotFound = errors.New("execution not found")

// ErrGraphNotFound is returned when a graph name is not registered.
var ErrGraphNotFound = errors.New("graph not found")
