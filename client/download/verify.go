package download

import (
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strconv"
	"strings"
)

var (
	// ErrContentLengthMismatch reports a body whose byte count differs
	// from its Content-Length.
	ErrContentLengthMismatch = errors.New("content length mismatch")

	// ErrChecksumMismatch reports a file whose digest differs from the
	// expected one.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrDownloadCancelled reports a download stopped by its context.
	ErrDownloadCancelled = errors.New("download cancelled")
)

// Error reports a download whose bytes failed verification. Kind is
// ErrContentLengthMismatch or ErrChecksumMismatch. Want and Got hold the
// expected and observed byte count or hex digest. Nothing is written to
// Path when an Error is returned.
type Error struct {
	Kind error
	Path string
	Want string
	Got  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v: want %s, got %s", e.Path, e.Kind, e.Want, e.Got)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// checkLength compares the copied byte count with the declared one.
// A negative declared length is unknown and always passes.
func checkLength(path string, declared, copied int64) error {
	if declared < 0 || declared == copied {
		return nil
	}

	return &Error{
		Kind: ErrContentLengthMismatch,
		Path: path,
		Want: strconv.FormatInt(declared, 10),
		Got:  strconv.FormatInt(copied, 10),
	}
}

// digest hashes every byte written to the destination file.
type digest struct {
	h    hash.Hash
	want string
}

func (d *digest) Write(p []byte) (int, error) {
	return d.h.Write(p)
}

// check is a no-op on a nil digest.
func (d *digest) check(path string) error {
	if d == nil {
		return nil
	}

	got := hex.EncodeToString(d.h.Sum(nil))
	if strings.EqualFold(got, d.want) {
		return nil
	}

	return &Error{
		Kind: ErrChecksumMismatch,
		Path: path,
		Want: strings.ToLower(d.want),
		Got:  got,
	}
}
