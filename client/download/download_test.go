package download

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"testing/iotest"
)

const content = "downloaded content"

func sum(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// leftovers returns every file in dir other than keep.
func leftovers(t *testing.T, dir, keep string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}

	var out []string
	for _, e := range entries {
		if e.Name() != keep {
			out = append(out, e.Name())
		}
	}

	return out
}

func TestHandle(t *testing.T) {
	testCases := map[string]struct {
		body   io.Reader
		length int64
		opts   []Option
		expErr error
	}{
		"knownLength": {
			body:   strings.NewReader(content),
			length: int64(len(content)),
		},
		"unknownLength": {
			body:   iotest.HalfReader(strings.NewReader(content)),
			length: -1,
		},
		"checksum": {
			body:   strings.NewReader(content),
			length: -1,
			opts:   []Option{WithChecksum(sha256.New(), sum(content))},
		},
		"checksumUpperCase": {
			body:   strings.NewReader(content),
			length: -1,
			opts:   []Option{WithChecksum(sha256.New(), strings.ToUpper(sum(content)))},
		},
		"checksumMismatch": {
			body:   strings.NewReader(content),
			length: -1,
			opts:   []Option{WithChecksum(sha256.New(), sum("something else"))},
			expErr: ErrChecksumMismatch,
		},
		"lengthMismatch": {
			body:   strings.NewReader(content),
			length: int64(len(content)) + 5,
			expErr: ErrContentLengthMismatch,
		},
		"progress": {
			body:   strings.NewReader(content),
			length: int64(len(content)),
			opts:   []Option{WithProgress()},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			dest := filepath.Join(dir, "out.bin")

			err := Handle(t.Context(), tc.body, tc.length, dest, discardLogger(), tc.opts...)

			if tc.expErr != nil {
				if !errors.Is(err, tc.expErr) {
					t.Fatalf("exp %v, got %v", tc.expErr, err)
				}
				var dlErr *Error
				if !errors.As(err, &dlErr) {
					t.Fatalf("exp *Error, got %#v", err)
				}
				if dlErr.Path != dest || dlErr.Want == dlErr.Got {
					t.Errorf("exp path and differing want/got, got %+v", dlErr)
				}
				if _, err := os.Stat(dest); !os.IsNotExist(err) {
					t.Errorf("exp no destination file on failure, got %v", err)
				}
				if left := leftovers(t, dir, ""); len(left) != 0 {
					t.Errorf("exp temp file removed, found %v", left)
				}
				return
			}

			if err != nil {
				t.Fatalf("failed to handle download: %v", err)
			}

			got, err := os.ReadFile(dest)
			if err != nil {
				t.Fatalf("failed to read destination: %v", err)
			}
			if string(got) != content {
				t.Errorf("exp %q, got %q", content, got)
			}
			if left := leftovers(t, dir, "out.bin"); len(left) != 0 {
				t.Errorf("exp no temp files, found %v", left)
			}
		})
	}
}

func TestHandle_SkipExisting(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "existing.bin")
	if err := os.WriteFile(dest, []byte("old"), 0o600); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}

	body := iotest.ErrReader(errors.New("body must not be read"))
	if err := Handle(t.Context(), body, -1, dest, discardLogger(), WithSkipExisting()); err != nil {
		t.Fatalf("exp skip, got %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("failed to read destination: %v", err)
	}
	if string(got) != "old" {
		t.Errorf("exp existing file untouched, got %q", got)
	}
}

func TestHandle_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	dest := filepath.Join(t.TempDir(), "out.bin")
	err := Handle(ctx, strings.NewReader(content), -1, dest, discardLogger())
	if !errors.Is(err, ErrDownloadCancelled) {
		t.Fatalf("exp ErrDownloadCancelled, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("exp context.Canceled in chain, got %v", err)
	}
}

func TestHandle_BodyError(t *testing.T) {
	bodyErr := errors.New("connection reset")
	body := io.MultiReader(strings.NewReader("partial"), iotest.ErrReader(bodyErr))

	dir := t.TempDir()
	err := Handle(t.Context(), body, -1, filepath.Join(dir, "out.bin"), discardLogger())
	if !errors.Is(err, bodyErr) {
		t.Fatalf("exp body error, got %v", err)
	}
	if left := leftovers(t, dir, ""); len(left) != 0 {
		t.Errorf("exp temp file removed, found %v", left)
	}
}

func TestHandle_Options(t *testing.T) {
	testCases := map[string]Option{
		"nilHash":       WithChecksum(nil, "ab"),
		"emptyChecksum": WithChecksum(sha256.New(), ""),
		"notHex":        WithChecksum(sha256.New(), "xyz"),
	}

	for name, opt := range testCases {
		t.Run(name, func(t *testing.T) {
			err := Handle(t.Context(), strings.NewReader(content), -1, filepath.Join(t.TempDir(), "f"), discardLogger(), opt)
			if err == nil {
				t.Error("exp option error")
			}
		})
	}
}

func TestProgressWriter(t *testing.T) {
	var buf bytes.Buffer
	pw := &progressWriter{
		w:      io.Discard,
		logger: slog.New(slog.NewTextHandler(&buf, nil)),
		total:  4,
	}

	if _, err := pw.Write([]byte("ab")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := pw.Write([]byte("cd")); err != nil {
		t.Fatalf("write: %v", err)
	}

	out := buf.String()
	for _, exp := range []string{"msg=downloading", "msg=\"download complete\"", "progress=100.0%", "transferred=4"} {
		if !strings.Contains(out, exp) {
			t.Errorf("exp %q in log output:\n%s", exp, out)
		}
	}
}

func TestHandle_ErrorDetail(t *testing.T) {
	testCases := map[string]struct {
		length int64
		opts   []Option
		exp    Error
	}{
		"length": {
			length: int64(len(content)) + 5,
			exp: Error{
				Kind: ErrContentLengthMismatch,
				Want: strconv.Itoa(len(content) + 5),
				Got:  strconv.Itoa(len(content)),
			},
		},
		"checksum": {
			length: int64(len(content)),
			opts:   []Option{WithChecksum(sha256.New(), strings.ToUpper(sum("other")))},
			exp: Error{
				Kind: ErrChecksumMismatch,
				Want: sum("other"),
				Got:  sum(content),
			},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "out.bin")
			tc.exp.Path = dest

			err := Handle(t.Context(), strings.NewReader(content), tc.length, dest, discardLogger(), tc.opts...)

			var dlErr *Error
			if !errors.As(err, &dlErr) {
				t.Fatalf("exp *Error, got %v", err)
			}
			if *dlErr != tc.exp {
				t.Errorf("exp %+v, got %+v", tc.exp, *dlErr)
			}
			if msg := dlErr.Error(); !strings.Contains(msg, tc.exp.Want) || !strings.Contains(msg, tc.exp.Got) {
				t.Errorf("exp message to name both values, got %q", msg)
			}
		})
	}
}
