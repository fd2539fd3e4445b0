package response

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
)

// ErrBodyClosed is returned by reads after Close.
var ErrBodyClosed = errors.New("read on closed body")

// Body is the payload of a Response. It must not be copied or used from
// more than one goroutine.
//
// Once the body reaches its end or fails, the failure (or io.EOF) is
// sticky and the underlying connection is released.
type Body struct {
	src       *bufio.Reader
	closer    io.Closer
	framing   Framing
	remaining int64
	phase     chunkPhase
	trailer   Header

	err    error // returned by every read once set
	failed error // non-EOF cause of err, for Err
}

func newBody(src *bufio.Reader, closer io.Closer, framing Framing, length int64) *Body {
	return &Body{
		src:       src,
		closer:    closer,
		framing:   framing,
		remaining: length,
	}
}

// Read implements io.Reader. It never yields more than the declared
// Content-Length and never yields chunk framing.
func (b *Body) Read(p []byte) (int, error) {
	if b.err != nil {
		return 0, b.err
	}
	if len(p) == 0 {
		return 0, nil
	}

	var (
		n   int
		err error
	)
	switch b.framing {
	case ContentLength:
		n, err = b.readBounded(p)
	case Chunked:
		n, err = b.readChunked(p)
	default:
		n, err = b.readUntilClose(p)
	}

	if err != nil {
		b.finish(err)
		if n > 0 {
			return n, nil
		}
		return 0, b.err
	}

	return n, nil
}

// ReadByte implements io.ByteReader on the same cursor as Read.
func (b *Body) ReadByte() (byte, error) {
	var one [1]byte
	for {
		n, err := b.Read(one[:])
		if n == 1 {
			return one[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// Bytes yields the remaining body one byte at a time. Iteration stops at
// the end of the body or on failure; check Err afterwards.
func (b *Body) Bytes() iter.Seq[byte] {
	return func(yield func(byte) bool) {
		for {
			c, err := b.ReadByte()
			if err != nil {
				return
			}
			if !yield(c) {
				return
			}
		}
	}
}

// Err returns the failure that ended the body, or nil if it ended
// cleanly or has not ended yet.
func (b *Body) Err() error {
	return b.failed
}

// Trailer returns the trailer fields of a chunked body. It is only
// populated once the body has been read to the end.
func (b *Body) Trailer() Header {
	return b.trailer
}

// Close releases the connection. Unread bytes are left on the channel.
// It is safe to call more than once.
func (b *Body) Close() error {
	b.err = ErrBodyClosed

	return b.release()
}

func (b *Body) finish(err error) {
	b.err = err
	if err != io.EOF {
		b.failed = err
	}
	_ = b.release()
}

func (b *Body) release() error {
	if b.closer == nil {
		return nil
	}
	c := b.closer
	b.closer = nil

	return c.Close()
}

func (b *Body) readBounded(p []byte) (int, error) {
	if b.remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > b.remaining {
		p = p[:b.remaining]
	}

	n, err := b.src.Read(p)
	b.remaining -= int64(n)
	if b.remaining == 0 {
		return n, io.EOF
	}
	if err != nil {
		return n, readErr(err, fmt.Sprintf("body ended %d bytes short", b.remaining))
	}

	return n, nil
}

func (b *Body) readUntilClose(p []byte) (int, error) {
	n, err := b.src.Read(p)
	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, io.EOF):
		return n, io.EOF
	default:
		return n, readErr(err, "reading body")
	}
}
