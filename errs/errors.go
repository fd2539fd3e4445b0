// Package errs defines the error taxonomy shared by the request, response,
// dial and client packages.
//
// Every failure surfaced by the module matches exactly one of the sentinel
// errors below via [errors.Is]. The concrete type is usually [*Error], which
// also carries a human readable detail and, where one exists, the lower level
// cause.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL is returned when a URL lacks an http:// or https://
	// prefix, has an empty host, or carries an unusable port.
	ErrInvalidURL = errors.New("invalid url")
	// ErrTransport covers connect, TLS, read and write failures.
	ErrTransport = errors.New("transport error")
	// ErrMalformedStatusLine is returned when the response status line
	// cannot be parsed.
	ErrMalformedStatusLine = errors.New("malformed status line")
	// ErrMalformedHeader is returned for header or trailer lines without
	// a colon, and for oversized header blocks.
	ErrMalformedHeader = errors.New("malformed header")
	// ErrUnknownStatusClass is returned for status codes outside 100-599.
	ErrUnknownStatusClass = errors.New("unknown status class")
	// ErrInvalidChunkSize is returned when a chunk-size line is not valid hex.
	ErrInvalidChunkSize = errors.New("invalid chunk size")
	// ErrMalformedChunk is returned when chunk data is not followed by CRLF.
	ErrMalformedChunk = errors.New("malformed chunk")
	// ErrUnexpectedEOF is returned when the peer closes the connection in
	// the middle of a status line, header block or body.
	ErrUnexpectedEOF = errors.New("unexpected eof")
	// ErrUnsupportedEncoding is returned when a Content-Encoding cannot be decoded.
	ErrUnsupportedEncoding = errors.New("unsupported content encoding")
)

// Error pairs one of the package sentinels with detail and an optional cause.
type Error struct {
	Err    error
	Detail string
	Cause  error
}

// New returns an *Error for the sentinel err with a formatted detail.
func New(err error, format string, args ...any) *Error {
	return &Error{
		Err:    err,
		Detail: fmt.Sprintf(format, args...),
	}
}

// Wrap returns an *Error for the sentinel err caused by cause.
func Wrap(err, cause error, detail string) *Error {
	return &Error{
		Err:    err,
		Detail: detail,
		Cause:  cause,
	}
}

func (e *Error) Error() string {
	msg := e.Err.Error()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}

	return msg
}

// Unwrap exposes both the sentinel and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}

	return []error{e.Err, e.Cause}
}
