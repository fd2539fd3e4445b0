package dial

import (
	"errors"
	"fmt"
	"io"
	"syscall"

	"github.com/adamwoolhether/rawhttp/errs"
)

// Op names the step of a dispatch that failed.
type Op string

const (
	OpResolve   Op = "resolve"
	OpConnect   Op = "connect"
	OpHandshake Op = "handshake"
	OpWrite     Op = "write"
	OpRead      Op = "read"
)

// Error is a transport failure.
type Error struct {
	Op   Op
	Addr string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{errs.ErrTransport, e.Err}
}

// PeerClosed reports whether the failure means the peer dropped the
// connection, as opposed to a local or network fault.
func (e *Error) PeerClosed() bool {
	return errors.Is(e.Err, syscall.EPIPE) ||
		errors.Is(e.Err, syscall.ECONNRESET) ||
		isEOF(e.Err)
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
