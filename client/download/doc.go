// Package download streams a response body to disk with optional
// checksum validation and progress reporting.
//
// [Handle] writes the body to a temporary file alongside the destination
// path, then renames it into place on success:
//
//	err := download.Handle(ctx, resp.Body, resp.ContentLength, destPath, logger,
//		download.WithChecksum(sha256.New(), expectedHex),
//	)
//
// Most callers should use [github.com/adamwoolhether/rawhttp/client.Client.Download],
// which invokes Handle once the status code has been checked.
package download
