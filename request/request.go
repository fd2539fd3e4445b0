// Package request resolves http and https URLs into dial targets and
// serializes bodiless HTTP/1.1 requests.
//
// A [Request] always writes Host, Connection: close and Content-Length
// ahead of the caller's headers, so every connection carries exactly one
// request/response exchange.
package request

import (
	"io"
	"strconv"
	"strings"
)

// Request is an HTTP/1.1 request bound to a single URL.
type Request struct {
	loc    Location
	header Header
}

// New resolves rawURL and returns a Request with no headers.
// It fails with errs.ErrInvalidURL before any network activity.
func New(rawURL string) (*Request, error) {
	loc, err := Resolve(rawURL)
	if err != nil {
		return nil, err
	}

	return &Request{loc: loc}, nil
}

// AddHeader appends value to the header name.
// Repeated names serialize as a single comma-joined line.
func (r *Request) AddHeader(name, value string) {
	r.header.Add(name, value)
}

// Header returns the request's header collection.
func (r *Request) Header() *Header {
	return &r.header
}

// Target returns the address the request must be dispatched to.
func (r *Request) Target() Target {
	return r.loc.Target()
}

// Domain returns the host without port, used for Host and TLS server name.
func (r *Request) Domain() string {
	return r.loc.Host
}

// Location returns the resolved URL.
func (r *Request) Location() Location {
	return r.loc
}

// RequestURI returns the path, query and fragment, or "/" when empty.
func (r *Request) RequestURI() string {
	return r.loc.RequestURI()
}

// Clone returns a deep copy of r.
func (r *Request) Clone() *Request {
	return &Request{
		loc:    r.loc,
		header: r.header.Clone(),
	}
}

// Bytes serializes the request line, the mandatory headers, the caller's
// headers and body. An empty method means GET.
func (r *Request) Bytes(method string, body []byte) []byte {
	var b strings.Builder
	r.writeHead(&b, method, len(body))

	out := make([]byte, 0, b.Len()+len(body))
	out = append(out, b.String()...)

	return append(out, body...)
}

// WriteTo writes the same bytes as Bytes to w.
func (r *Request) WriteTo(w io.Writer, method string, body []byte) (int64, error) {
	var b strings.Builder
	r.writeHead(&b, method, len(body))

	n, err := io.WriteString(w, b.String())
	if err != nil || len(body) == 0 {
		return int64(n), err
	}

	m, err := w.Write(body)

	return int64(n + m), err
}

func (r *Request) writeHead(b *strings.Builder, method string, bodyLen int) {
	if method == "" {
		method = "GET"
	}

	b.WriteString(method)
	b.WriteByte(' ')
	b.WriteString(r.RequestURI())
	b.WriteString(" HTTP/1.1\r\n")

	b.WriteString("Host: ")
	b.WriteString(r.loc.Host)
	b.WriteString("\r\nConnection: close\r\nContent-Length: ")
	b.WriteString(strconv.Itoa(bodyLen))
	b.WriteString("\r\n")

	r.header.writeTo(b)

	b.WriteString("\r\n")
}
