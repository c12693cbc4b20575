package errs

import (
	"errors"
	"fmt"
)

// Kind classifies why an upload did not produce an insight. Every kind is
// terminal for the upload it belongs to.
type Kind string

const (
	KindNoFileSelected   Kind = "NO_FILE_SELECTED"
	KindFileReadFailed   Kind = "FILE_READ_FAILED"
	KindRequestFailed    Kind = "REQUEST_FAILED"
	KindExtractionFailed Kind = "EXTRACTION_FAILED"
	KindMalformedInsight Kind = "MALFORMED_INSIGHT"

	// KindInvalidRequest is an upload form that could not be accepted, such as
	// an over-long instruction.
	KindInvalidRequest Kind = "INVALID_REQUEST"
)

var (
	ErrNoFileSelected   = &Error{Kind: KindNoFileSelected}
	ErrFileReadFailed   = &Error{Kind: KindFileReadFailed}
	ErrRequestFailed    = &Error{Kind: KindRequestFailed}
	ErrExtractionFailed = &Error{Kind: KindExtractionFailed}
	ErrMalformedInsight = &Error{Kind: KindMalformedInsight}
	ErrInvalidRequest   = &Error{Kind: KindInvalidRequest}
)

type Error struct {
	Kind    Kind
	Message string
	// Body is the raw response body of a failed completion request.
	Body       string
	StatusCode int
	Err        error
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrRequestFailed)
// works regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
