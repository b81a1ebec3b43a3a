// Package errors provides a lightweight structured error type (PipelineError)
// for stage-based classification in the document pipeline and CLI.
package errors

import (
	"fmt"
)

// Category represents the pipeline stage or concern an error belongs to.
type Category string

const (
	// Pipeline stage errors
	CategoryResolution Category = "resolution" // a loader cannot map a modspec to content
	CategoryTransform  Category = "transform"  // a preprocessor cannot apply its transformation
	CategoryRender     Category = "render"     // a renderer cannot produce output

	// Surrounding tooling errors
	CategoryConfig     Category = "config"
	CategoryFileSystem Category = "filesystem"
	CategoryDaemon     Category = "daemon"
	CategoryInternal   Category = "internal"
)

// Severity indicates how critical an error is.
type Severity string

const (
	SeverityFatal   Severity = "fatal"   // Stops execution
	SeverityError   Severity = "error"   // Error, but not fatal
	SeverityWarning Severity = "warning" // Continues with degraded functionality
)

// ContextFields carries structured context for PipelineError.
type ContextFields map[string]any

// PipelineError is a structured error with category, severity, and context.
// None of the pipeline stages catch these internally; they propagate to the
// driver, which decides between abort and skip-and-continue.
type PipelineError struct {
	Category Category      `json:"category"`
	Severity Severity      `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error.
func (e *PipelineError) WithContext(key string, value any) *PipelineError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new PipelineError.
func New(category Category, severity Severity, message string) *PipelineError {
	return &PipelineError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new PipelineError that wraps an existing error.
func Wrap(err error, category Category, severity Severity, message string) *PipelineError {
	return &PipelineError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category.
func IsCategory(err error, category Category) bool {
	if pe, ok := err.(*PipelineError); ok {
		return pe.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal
// if the error is not a PipelineError.
func GetCategory(err error) Category {
	if pe, ok := err.(*PipelineError); ok {
		return pe.Category
	}
	return CategoryInternal
}
