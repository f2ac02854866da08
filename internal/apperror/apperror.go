package apperror

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies failures so the CLI can decide between aborting the run
// and recording a per-file failure.
type Kind string

const (
	KindInputValidation   Kind = "input_validation"
	KindFileNotFound      Kind = "file_not_found"
	KindUnsupportedFormat Kind = "unsupported_format"
	KindSizeLimitExceeded Kind = "size_limit_exceeded"
	KindExternalTool      Kind = "external_tool"
	KindProvider          Kind = "provider"
)

// Sentinels usable with errors.Is.
var (
	ErrInputValidation   = &Error{Kind: KindInputValidation}
	ErrFileNotFound      = &Error{Kind: KindFileNotFound}
	ErrUnsupportedFormat = &Error{Kind: KindUnsupportedFormat}
	ErrSizeLimitExceeded = &Error{Kind: KindSizeLimitExceeded}
	ErrExternalTool      = &Error{Kind: KindExternalTool}
	ErrProvider          = &Error{Kind: KindProvider}
)

// Error is the application error type.
type Error struct {
	Kind     Kind
	Message  string
	Path     string
	Provider string
	Status   int
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Provider != "" {
		b.WriteString(e.Provider)
		if e.Status != 0 {
			fmt.Fprintf(&b, " (HTTP %d)", e.Status)
		}
		b.WriteString(": ")
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if msg == "" {
		msg = string(e.Kind)
	}
	b.WriteString(msg)
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New builds an error of kind k with a formatted message.
func New(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind k to err. The message may be empty.
func Wrap(k Kind, err error, format string, args ...any) *Error {
	msg := ""
	if format != "" {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: k, Message: msg, Err: err}
}

// Validation is shorthand for New(KindInputValidation, ...).
func Validation(format string, args ...any) *Error {
	return New(KindInputValidation, format, args...)
}

// WithPath returns a copy of e annotated with a file path.
func (e *Error) WithPath(path string) *Error {
	c := *e
	c.Path = path
	return &c
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
