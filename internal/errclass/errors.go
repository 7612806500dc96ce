// Package errclass defines the error kinds the core reports while degrading
// gracefully: a read still returns usable data, the error says what was lost.
package errclass

import "fmt"

// Error is a classified error. Two Errors match under errors.Is when their
// Kind is equal.
type Error struct {
	Kind    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	msg := e.Kind
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Kind == t.Kind
}

func (e *Error) Unwrap() error {
	return e.cause
}

// WithMessage returns a new Error of the same Kind with a specific message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Kind: e.Kind, Message: msg}
}

// WithMessagef returns a new Error with a formatted message.
func (e *Error) WithMessagef(format string, args ...any) *Error {
	return &Error{Kind: e.Kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches cause to a copy of e.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, cause: cause}
}

var (
	// ErrParse marks a skipped line, field or document that could not be parsed.
	ErrParse = &Error{Kind: "E_PARSE"}
	// ErrIO marks a file that could not be read or written.
	ErrIO = &Error{Kind: "E_IO"}
	// ErrValidation marks an operation rejected before touching any file.
	ErrValidation = &Error{Kind: "E_VALIDATION"}
)
