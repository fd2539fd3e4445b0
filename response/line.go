package response

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/adamwoolhether/rawhttp/errs"
)

const (
	maxLineBytes   = 8 << 10
	maxHeaderBytes = 64 << 10
)

var errLineTooLong = errors.New("line too long")

// readLine reads one line and strips its CRLF. A bare LF is accepted.
func readLine(br *bufio.Reader, limit int) (string, error) {
	var line []byte
	for {
		frag, err := br.ReadSlice('\n')
		if len(line)+len(frag) > limit+2 {
			return "", errLineTooLong
		}
		line = append(line, frag...)
		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}

		return "", readErr(err, "reading line")
	}

	line = line[:len(line)-1]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}

	return string(line), nil
}

// readFields reads header lines up to and including the empty line that
// ends the block. Obsolete line folding is joined into the previous value.
func readFields(br *bufio.Reader) (Header, error) {
	var (
		fields Header
		total  int
	)

	for {
		line, err := readLine(br, maxLineBytes)
		if err != nil {
			if errors.Is(err, errLineTooLong) {
				return nil, errs.New(errs.ErrMalformedHeader, "line exceeds %d bytes", maxLineBytes)
			}
			return nil, err
		}
		if line == "" {
			return fields, nil
		}

		total += len(line)
		if total > maxHeaderBytes {
			return nil, errs.New(errs.ErrMalformedHeader, "header block exceeds %d bytes", maxHeaderBytes)
		}

		if line[0] == ' ' || line[0] == '\t' {
			if len(fields) == 0 {
				return nil, errs.New(errs.ErrMalformedHeader, "continuation line %q without a field", line)
			}
			last := &fields[len(fields)-1]
			last.Value = strings.TrimSpace(last.Value + " " + strings.TrimSpace(line))
			continue
		}

		name, value, ok := strings.Cut(line, ":")
		if !ok || name == "" || strings.ContainsAny(name, " \t") {
			return nil, errs.New(errs.ErrMalformedHeader, "%q", line)
		}

		fields = append(fields, Field{Name: name, Value: strings.Trim(value, " \t")})
	}
}

// readErr maps an error from the channel onto the error taxonomy. A
// premature EOF is reported with io.ErrUnexpectedEOF as its cause.
func readErr(err error, detail string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errs.Wrap(errs.ErrUnexpectedEOF, io.ErrUnexpectedEOF, detail)
	}

	return errs.Wrap(errs.ErrTransport, err, detail)
}
