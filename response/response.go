// Package response parses HTTP/1.1 responses from a byte channel and
// exposes the body as a lazily consumed stream.
//
// The status line and header block are read eagerly by [Read]. The body is
// only pulled from the channel as the caller consumes it, through either
// [Body.Read] or [Body.ReadByte]; both advance the same cursor and may be
// mixed freely. Chunked transfer coding is removed on the fly.
package response

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strconv"
	"strings"

	"github.com/adamwoolhether/rawhttp/errs"
)

// Framing is how the end of a body is determined.
type Framing int

const (
	// CloseDelimited bodies end when the peer closes the connection.
	CloseDelimited Framing = iota
	// ContentLength bodies end after a declared number of bytes.
	ContentLength
	// Chunked bodies use Transfer-Encoding: chunked.
	Chunked
)

func (f Framing) String() string {
	switch f {
	case ContentLength:
		return "content-length"
	case Chunked:
		return "chunked"
	default:
		return "close-delimited"
	}
}

// Response is a parsed status line and header block plus the body that
// follows them on the channel.
type Response struct {
	Proto       string
	StatusCode  int
	StatusClass StatusClass
	Reason      string
	Header      Header
	Framing     Framing
	// ContentLength is the declared body length, or -1 when the body is
	// chunked or close-delimited.
	ContentLength int64
	Body          *Body
}

// Read parses a response from rc. method is the request method, needed
// because responses to HEAD never carry a body.
//
// On success the returned Response owns rc and closes it once the body
// is exhausted, fails, or is closed. On failure rc is left open.
func Read(rc io.ReadCloser, method string) (*Response, error) {
	br := bufio.NewReader(rc)

	line, err := readLine(br, maxLineBytes)
	if err != nil {
		if err == errLineTooLong {
			return nil, errs.New(errs.ErrMalformedStatusLine, "exceeds %d bytes", maxLineBytes)
		}
		return nil, err
	}

	resp, err := parseStatusLine(line)
	if err != nil {
		return nil, err
	}

	if resp.Header, err = readFields(br); err != nil {
		return nil, err
	}

	resp.Framing, resp.ContentLength = framingOf(resp, method)
	resp.Body = newBody(br, rc, resp.Framing, resp.ContentLength)

	return resp, nil
}

func parseStatusLine(line string) (*Response, error) {
	proto, rest, ok := strings.Cut(line, " ")
	if !ok || !strings.HasPrefix(proto, "HTTP/") {
		return nil, errs.New(errs.ErrMalformedStatusLine, "%q", line)
	}

	code, reason, _ := strings.Cut(rest, " ")
	if len(code) != 3 || !isDigits(code) {
		return nil, errs.New(errs.ErrMalformedStatusLine, "status code %q is not 3 digits", code)
	}

	statusCode, _ := strconv.Atoi(code)
	class, err := ClassOf(statusCode)
	if err != nil {
		return nil, err
	}

	return &Response{
		Proto:       proto,
		StatusCode:  statusCode,
		StatusClass: class,
		Reason:      reason,
	}, nil
}

// framingOf picks the body framing. Chunked wins over Content-Length,
// and a Content-Length that does not parse is ignored.
func framingOf(resp *Response, method string) (Framing, int64) {
	if method == http.MethodHead ||
		resp.StatusClass == Informational ||
		resp.StatusCode == http.StatusNoContent ||
		resp.StatusCode == http.StatusNotModified {
		return ContentLength, 0
	}

	for _, te := range resp.Header.Values("Transfer-Encoding") {
		if strings.Contains(strings.ToLower(te), "chunked") {
			return Chunked, -1
		}
	}

	if cl := resp.Header.Get("Content-Length"); cl != "" && isDigits(cl) {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			return ContentLength, n
		}
	}

	return CloseDelimited, -1
}

// Read reads body bytes. See Body.Read.
func (r *Response) Read(p []byte) (int, error) { return r.Body.Read(p) }

// ReadByte returns the next body byte. See Body.ReadByte.
func (r *Response) ReadByte() (byte, error) { return r.Body.ReadByte() }

// Bytes yields the remaining body one byte at a time. See Body.Bytes.
func (r *Response) Bytes() iter.Seq[byte] { return r.Body.Bytes() }

// Err returns the failure that ended the body, if any.
func (r *Response) Err() error { return r.Body.Err() }

// Close releases the connection.
func (r *Response) Close() error { return r.Body.Close() }

func (r *Response) String() string {
	return fmt.Sprintf("%s %d %s", r.Proto, r.StatusCode, r.Reason)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
