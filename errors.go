package disklabel

import "fmt"

// LabelError is a comparable sentinel error, in the spirit of the teacher's
// errno-backed DiskoError: plain equality and errors.Is both work against
// the exported Err* constants, even after a message has been attached or
// the error has wrapped another one.
type LabelError string

func (e LabelError) Error() string {
	return string(e)
}

// WithMessage returns a new error that prints as "<e>: <message>" but still
// satisfies errors.Is(result, e).
func (e LabelError) WithMessage(message string) *WrappedError {
	return &WrappedError{sentinel: e, message: fmt.Sprintf("%s: %s", e, message)}
}

// Wrap returns a new error that prints as "<e>: <err>" and satisfies both
// errors.Is(result, e) and errors.Is(result, err).
func (e LabelError) Wrap(err error) *WrappedError {
	return &WrappedError{sentinel: e, wrapped: err, message: fmt.Sprintf("%s: %s", e, err)}
}

// The §7 error kinds. Propagation policy (also §7): ErrNotFound and
// ErrUserCancel are soft outcomes callers may treat as non-fatal; the rest
// are surfaced as errors and should also reach the info sink as a warning.
const (
	ErrInvalidArgument = LabelError("invalid argument")
	ErrNotFound        = LabelError("not found")
	ErrUserCancel      = LabelError("operation canceled")
	ErrIOFailed        = LabelError("I/O error")
	ErrOverlap         = LabelError("bootstrap overlaps disklabel")
	ErrCorrupt         = LabelError("disklabel corrupt")
)

// WrappedError is the concrete type returned by LabelError.WithMessage and
// LabelError.Wrap. It implements Unwrap so errors.Is keeps working after
// wrapping, matching the teacher's customDriverError pattern.
type WrappedError struct {
	sentinel LabelError
	wrapped  error
	message  string
}

func (e *WrappedError) Error() string {
	return e.message
}

func (e *WrappedError) Unwrap() []error {
	if e.wrapped != nil {
		return []error{e.sentinel, e.wrapped}
	}
	return []error{e.sentinel}
}

func (e *WrappedError) WithMessage(message string) *WrappedError {
	return &WrappedError{
		sentinel: e.sentinel,
		wrapped:  e.wrapped,
		message:  fmt.Sprintf("%s: %s", e.message, message),
	}
}
