package response

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"

	"github.com/adamwoolhether/rawhttp/errs"
)

// Decoded returns the body with every Content-Encoding removed, in the
// reverse of the order they were applied. Closing the returned reader
// also closes the body. A response without Content-Encoding yields the
// body itself.
func (r *Response) Decoded() (io.ReadCloser, error) {
	codings := contentCodings(r.Header)
	if len(codings) == 0 {
		return r.Body, nil
	}

	d := &decodedBody{body: r.Body}
	var src io.Reader = r.Body

	for i := len(codings) - 1; i >= 0; i-- {
		switch codings[i] {
		case "identity":
			continue
		case "gzip", "x-gzip":
			zr, err := gzip.NewReader(src)
			if err != nil {
				d.Close()
				return nil, fmt.Errorf("gzip reader: %w", err)
			}
			src = zr
			d.closers = append(d.closers, zr)
		case "deflate":
			zr, err := zlib.NewReader(src)
			if err != nil {
				d.Close()
				return nil, fmt.Errorf("deflate reader: %w", err)
			}
			src = zr
			d.closers = append(d.closers, zr)
		case "zstd":
			zd, err := zstd.NewReader(src, zstd.WithDecoderConcurrency(1))
			if err != nil {
				d.Close()
				return nil, fmt.Errorf("zstd reader: %w", err)
			}
			rc := zd.IOReadCloser()
			src = rc
			d.closers = append(d.closers, rc)
		default:
			d.Close()
			return nil, errs.New(errs.ErrUnsupportedEncoding, "%q", codings[i])
		}
	}

	d.Reader = src

	return d, nil
}

// Encoded reports whether the body carries a content coding other than
// identity, in which case ContentLength counts encoded bytes.
func (r *Response) Encoded() bool {
	for _, c := range contentCodings(r.Header) {
		if c != "identity" {
			return true
		}
	}

	return false
}

func contentCodings(h Header) []string {
	var out []string
	for _, v := range h.Values("Content-Encoding") {
		for c := range strings.SplitSeq(v, ",") {
			if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
				out = append(out, c)
			}
		}
	}

	return out
}

type decodedBody struct {
	io.Reader
	closers []io.Closer
	body    *Body
}

func (d *decodedBody) Close() error {
	for i := len(d.closers) - 1; i >= 0; i-- {
		_ = d.closers[i].Close()
	}

	return d.body.Close()
}
