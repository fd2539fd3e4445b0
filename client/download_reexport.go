package client

import (
	"hash"

	"github.com/adamwoolhether/rawhttp/client/download"
	"github.com/adamwoolhether/rawhttp/request"
)

type (
	// DownloadOption configures [Client.Download].
	DownloadOption = download.Option

	// DownloadError reports a failed length or checksum check with the
	// expected and observed values.
	DownloadError = download.Error
)

var (
	// ErrContentLengthMismatch indicates the byte count did not match Content-Length.
	ErrContentLengthMismatch = download.ErrContentLengthMismatch

	// ErrChecksumMismatch indicates the file checksum did not match the expected value.
	ErrChecksumMismatch = download.ErrChecksumMismatch

	// ErrDownloadCancelled indicates the download was cancelled via context.
	ErrDownloadCancelled = download.ErrDownloadCancelled
)

// DownloadJob is one entry of [Client.DownloadAll].
type DownloadJob struct {
	Request  *request.Request
	ExpCode  int
	DestPath string
	Options  []DownloadOption
}

// WithChecksum enables checksum validation of the downloaded file.
// h is a [hash.Hash] instance (e.g. sha256.New()), and expected is the
// hex-encoded expected checksum string.
func WithChecksum(h hash.Hash, expected string) DownloadOption {
	return download.WithChecksum(h, expected)
}

// WithProgress enables periodic download progress logging.
func WithProgress() DownloadOption { return download.WithProgress() }

// WithSkipExisting causes a download to return nil immediately when
// the destination file already exists.
func WithSkipExisting() DownloadOption { return download.WithSkipExisting() }
