package download

import (
	"encoding/hex"
	"errors"
	"hash"
)

// Option configures [Handle].
type Option func(*options) error

type options struct {
	checksum     *digest
	progress     bool
	skipExisting bool
}

// WithChecksum verifies the written file against expected, the hex
// encoding of h's sum (e.g. sha256.New()). Case is ignored.
func WithChecksum(h hash.Hash, expected string) Option {
	return func(opts *options) error {
		if h == nil {
			return errors.New("hash must not be nil")
		}
		if expected == "" {
			return errors.New("expected checksum must not be empty")
		}
		if _, err := hex.DecodeString(expected); err != nil {
			return errors.New("expected checksum must be hex encoded")
		}

		opts.checksum = &digest{h: h, want: expected}
		return nil
	}
}

// WithProgress logs progress at most once per second through the logger
// supplied to Handle.
func WithProgress() Option {
	return func(opts *options) error {
		opts.progress = true
		return nil
	}
}

// WithSkipExisting makes Handle return nil without reading the body when
// the destination file already exists.
func WithSkipExisting() Option {
	return func(opts *options) error {
		opts.skipExisting = true
		return nil
	}
}
