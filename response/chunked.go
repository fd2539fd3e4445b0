package response

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/adamwoolhether/rawhttp/errs"
)

// chunkPhase is the position of the chunked decoder within RFC 7230 §4.1
// framing.
type chunkPhase int

const (
	phaseSize chunkPhase = iota
	phaseData
	phaseCRLF
	phaseDone
)

// readChunked yields payload bytes only. The CRLF after a chunk is
// consumed lazily, on the read that follows the chunk's last byte.
func (b *Body) readChunked(p []byte) (int, error) {
	for {
		switch b.phase {
		case phaseSize:
			size, err := b.readChunkSize()
			if err != nil {
				return 0, err
			}
			if size == 0 {
				if b.trailer, err = readFields(b.src); err != nil {
					return 0, err
				}
				b.phase = phaseDone
				return 0, io.EOF
			}
			b.remaining = size
			b.phase = phaseData

		case phaseData:
			if int64(len(p)) > b.remaining {
				p = p[:b.remaining]
			}
			n, err := b.src.Read(p)
			b.remaining -= int64(n)
			if b.remaining == 0 {
				b.phase = phaseCRLF
			}
			if err != nil {
				return n, readErr(err, "reading chunk data")
			}
			return n, nil

		case phaseCRLF:
			line, err := readLine(b.src, maxLineBytes)
			if err != nil && !errors.Is(err, errLineTooLong) {
				return 0, err
			}
			if err != nil || line != "" {
				return 0, errs.New(errs.ErrMalformedChunk, "chunk data not followed by CRLF")
			}
			b.phase = phaseSize

		default:
			return 0, io.EOF
		}
	}
}

// readChunkSize parses "<hex>[;ext]" into a chunk size.
func (b *Body) readChunkSize() (int64, error) {
	line, err := readLine(b.src, maxLineBytes)
	if err != nil {
		if errors.Is(err, errLineTooLong) {
			return 0, errs.New(errs.ErrInvalidChunkSize, "size line exceeds %d bytes", maxLineBytes)
		}
		return 0, err
	}

	raw := line
	if i := strings.IndexByte(raw, ';'); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.Trim(raw, " \t")

	if raw == "" || !isHex(raw) {
		return 0, errs.New(errs.ErrInvalidChunkSize, "%q", line)
	}

	size, err := strconv.ParseInt(raw, 16, 64)
	if err != nil {
		return 0, errs.Wrap(errs.ErrInvalidChunkSize, err, raw)
	}

	return size, nil
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case '0' <= c && c <= '9', 'a' <= c && c <= 'f', 'A' <= c && c <= 'F':
		default:
			return false
		}
	}

	return true
}
