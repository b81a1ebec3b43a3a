package errors

// Stage-specific constructors. Keeping these granular means call sites read
// like the contract they implement.

// Resolution creates an error for a loader that cannot resolve a modspec.
func Resolution(message string) *PipelineError {
	return New(CategoryResolution, SeverityError, message)
}

// WrapResolution wraps an underlying error as a resolution failure.
func WrapResolution(err error, message string) *PipelineError {
	return Wrap(err, CategoryResolution, SeverityError, message)
}

// Transform creates an error for a preprocessor that cannot apply its
// transformation.
func Transform(message string) *PipelineError {
	return New(CategoryTransform, SeverityError, message)
}

// WrapTransform wraps an underlying error as a transform failure.
func WrapTransform(err error, message string) *PipelineError {
	return Wrap(err, CategoryTransform, SeverityError, message)
}

// Render creates an error for a renderer that cannot produce output.
func Render(message string) *PipelineError {
	return New(CategoryRender, SeverityError, message)
}

// WrapRender wraps an underlying error as a render failure.
func WrapRender(err error, message string) *PipelineError {
	return Wrap(err, CategoryRender, SeverityError, message)
}

// ConfigError creates a configuration error.
func ConfigError(message string) *PipelineError {
	return New(CategoryConfig, SeverityFatal, message)
}

// WrapFileSystem wraps an underlying error as a filesystem failure.
func WrapFileSystem(err error, message string) *PipelineError {
	return Wrap(err, CategoryFileSystem, SeverityError, message)
}
