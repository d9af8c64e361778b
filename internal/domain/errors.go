package domain

import "fmt"

// ValidationError reports missing or malformed input. Transport maps it
// to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func ErrValidation(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an absent entity, or one deliberately hidden from
// the caller. Transport maps it to 404.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func ErrNotFound(format string, args ...interface{}) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ForbiddenError reports an entity the caller does not own. Transport maps
// it to 403.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

func ErrForbidden(format string, args ...interface{}) error {
	return &ForbiddenError{Message: fmt.Sprintf(format, args...)}
}

// UpstreamError reports an unreachable or failing third-party dependency.
// Cache-serving paths degrade instead of surfacing it; where it does reach
// transport it maps to 503.
type UpstreamError struct {
	Message string
	Cause   error
}

func (e *UpstreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *UpstreamError) Unwrap() error { return e.Cause }

func ErrUpstream(cause error, format string, args ...interface{}) error {
	return &UpstreamError{Message: fmt.Sprintf(format, args...), Cause: cause}
}
