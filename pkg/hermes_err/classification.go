// pkg/hermes_err/classification.go
//
// Error classification with exit codes and remediation hints. Every fatal
// failure the pipeline can produce maps onto one of these categories; the
// root command uses GetExitCode to pick the process exit status.

package hermes_err

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCategory classifies errors for appropriate handling
type ErrorCategory int

const (
	// CategorySystem - OS/filesystem issues (exit 1)
	CategorySystem ErrorCategory = iota
	// CategoryValidation - Input validation and usage failures (exit 2)
	CategoryValidation
	// CategoryGit - version-control errors, e.g. no repository found (exit 1)
	CategoryGit
	// CategoryDependency - required external tool absent (exit 1)
	CategoryDependency
	// CategoryAuth - registry credential exchange failures (exit 1)
	CategoryAuth
	// CategoryExternal - an external tool ran and failed (exit 1)
	CategoryExternal
	// CategoryPlatform - the orchestration platform rejected a call (exit 1)
	CategoryPlatform
	// CategoryWarning - surfaced to the user but not fatal (exit 0)
	CategoryWarning
	// CategoryInternal - bugs in hermes itself (exit 3)
	CategoryInternal
)

// ClassifiedError wraps an error with category and remediation info
type ClassifiedError struct {
	Category    ErrorCategory
	Message     string
	Cause       error
	Remediation []string
}

func (e *ClassifiedError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Cause != nil && e.Cause.Error() != e.Message {
		sb.WriteString(fmt.Sprintf("\n\nCause: %v", e.Cause))
	}

	if len(e.Remediation) > 0 {
		sb.WriteString("\n\nHow to fix:")
		for i, step := range e.Remediation {
			sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, step))
		}
	}

	return sb.String()
}

// Unwrap returns the underlying error
func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error category
func (e *ClassifiedError) ExitCode() int {
	switch e.Category {
	case CategoryWarning:
		return 0
	case CategoryValidation:
		return 2
	case CategoryInternal:
		return 3
	default:
		return 1
	}
}

// GetExitCode extracts an exit code from any error.
// Returns 0 for nil, the category code for classified errors, 1 for others.
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.ExitCode()
	}

	if IsExpectedUserError(err) {
		return 0
	}

	return 1
}

// IsWarning reports whether the error is classified as non-fatal.
func IsWarning(err error) bool {
	var classified *ClassifiedError
	return errors.As(err, &classified) && classified.Category == CategoryWarning
}

// NewValidationError creates an error for input validation failures
func NewValidationError(message string, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryValidation,
		Message:     message,
		Remediation: remediation,
	}
}

// NewDependencyError creates an error for a missing external tool
func NewDependencyError(tool string, cause error) error {
	return &ClassifiedError{
		Category: CategoryDependency,
		Message:  fmt.Sprintf("required tool not found: %s", tool),
		Cause:    cause,
		Remediation: []string{
			fmt.Sprintf("Install %s and make sure it is on PATH", tool),
		},
	}
}

// NewGitError creates an error for version-control failures
func NewGitError(message string, cause error, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryGit,
		Message:     message,
		Cause:       cause,
		Remediation: remediation,
	}
}

// NewAuthError creates an error for credential exchange failures
func NewAuthError(message string, cause error) error {
	return &ClassifiedError{
		Category: CategoryAuth,
		Message:  message,
		Cause:    cause,
		Remediation: []string{
			"Check that AWS credentials are configured (aws sts get-caller-identity)",
			"Verify the IAM policy allows ecr:GetAuthorizationToken",
		},
	}
}

// NewExternalError creates an error for a failed external tool invocation
func NewExternalError(message string, cause error) error {
	return &ClassifiedError{
		Category: CategoryExternal,
		Message:  message,
		Cause:    cause,
	}
}

// NewPlatformError creates an error for an orchestration platform rejection
func NewPlatformError(message string, cause error, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryPlatform,
		Message:     message,
		Cause:       cause,
		Remediation: remediation,
	}
}

// NewWarning creates a non-fatal classified error; callers log it at warn
// level and continue on the success path.
func NewWarning(message string, cause error) error {
	return &ClassifiedError{
		Category: CategoryWarning,
		Message:  message,
		Cause:    cause,
	}
}
