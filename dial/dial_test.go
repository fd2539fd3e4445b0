package dial_test

import (
	"bufio"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/adamwoolhether/rawhttp/dial"
	"github.com/adamwoolhether/rawhttp/errs"
	"github.com/adamwoolhether/rawhttp/internal/wiretest"
	"github.com/adamwoolhether/rawhttp/request"
)

func TestNet_DialUnsecure(t *testing.T) {
	srv := wiretest.Serve(t, wiretest.Reply("HTTP/1.1 204 No Content\r\n\r\n"))

	d, err := dial.New()
	if err != nil {
		t.Fatalf("failed to build dialer: %v", err)
	}

	conn, err := d.Dial(t.Context(), request.Unsecure(srv.Addr()), "127.0.0.1")
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()

	if _, err := io.WriteString(conn, "GET / HTTP/1.1\r\nHost: 127.0.0.1\r\n\r\n"); err != nil {
		t.Fatalf("failed to write: %v", err)
	}

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("failed to read: %v", err)
	}
	if line != "HTTP/1.1 204 No Content\r\n" {
		t.Errorf("exp status line, got %q", line)
	}

	reqs := srv.Requests()
	if len(reqs) != 1 || !strings.HasPrefix(reqs[0], "GET / HTTP/1.1\r\n") {
		t.Errorf("exp one GET request, got %q", reqs)
	}
}

func TestNet_DialSecure(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Connection", "close")
		w.WriteHeader(http.StatusTeapot)
	}))
	defer ts.Close()

	pool := x509.NewCertPool()
	pool.AddCert(ts.Certificate())

	d, err := dial.New(dial.WithTLSConfig(&tls.Config{RootCAs: pool}))
	if err != nil {
		t.Fatalf("failed to build dialer: %v", err)
	}

	conn, err := d.Dial(t.Context(), request.Secure(ts.Listener.Addr().String()), "example.com")
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()

	if _, err := io.WriteString(conn, "GET / HTTP/1.1\r\nHost: example.com\r\nConnection: close\r\n\r\n"); err != nil {
		t.Fatalf("failed to write: %v", err)
	}

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("failed to read: %v", err)
	}
	if !strings.HasPrefix(line, "HTTP/1.1 418") {
		t.Errorf("exp 418 status line, got %q", line)
	}
}

func TestNet_DialErrors(t *testing.T) {
	ts := httptest.NewTLSServer(http.NotFoundHandler())
	defer ts.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}
	refused := ln.Addr().String()
	ln.Close()

	testCases := map[string]struct {
		target request.Target
		expOp  dial.Op
	}{
		"refused": {
			target: request.Unsecure(refused),
			expOp:  dial.OpConnect,
		},
		"unresolvable": {
			target: request.Unsecure("host.invalid:80"),
			expOp:  dial.OpResolve,
		},
		"untrustedCertificate": {
			target: request.Secure(ts.Listener.Addr().String()),
			expOp:  dial.OpHandshake,
		},
	}

	d, err := dial.New(dial.WithTimeout(5 * time.Second))
	if err != nil {
		t.Fatalf("failed to build dialer: %v", err)
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			conn, err := d.Dial(t.Context(), tc.target, "example.com")
			if err == nil {
				conn.Close()
				t.Fatal("exp dial to fail")
			}

			if !errors.Is(err, errs.ErrTransport) {
				t.Errorf("exp ErrTransport, got %v", err)
			}

			var dialErr *dial.Error
			if !errors.As(err, &dialErr) {
				t.Fatalf("exp *dial.Error, got %T", err)
			}
			if dialErr.Op != tc.expOp {
				t.Errorf("exp op %q, got %q", tc.expOp, dialErr.Op)
			}
			if dialErr.Addr != tc.target.HostPort() {
				t.Errorf("exp addr %q, got %q", tc.target.HostPort(), dialErr.Addr)
			}
		})
	}
}

func TestNet_ReadDeadline(t *testing.T) {
	srv := wiretest.Serve(t, func(conn net.Conn, _ string) {
		io.Copy(io.Discard, conn)
	})

	d, err := dial.New()
	if err != nil {
		t.Fatalf("failed to build dialer: %v", err)
	}

	conn, err := d.Dial(t.Context(), request.Unsecure(srv.Addr()), "")
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()

	if _, err := io.WriteString(conn, "GET / HTTP/1.1\r\n\r\n"); err != nil {
		t.Fatalf("failed to write: %v", err)
	}

	conn.SetDeadline(time.Now().Add(50 * time.Millisecond))

	_, err = conn.Read(make([]byte, 1))

	var dialErr *dial.Error
	if !errors.As(err, &dialErr) || dialErr.Op != dial.OpRead {
		t.Fatalf("exp read *dial.Error, got %v", err)
	}
	if !errors.Is(err, os.ErrDeadlineExceeded) {
		t.Errorf("exp deadline exceeded, got %v", err)
	}
	if !errors.Is(err, errs.ErrTransport) {
		t.Errorf("exp ErrTransport, got %v", err)
	}
	if dialErr.PeerClosed() {
		t.Error("a timeout is not a peer close")
	}
}

func TestNet_ReadEOF(t *testing.T) {
	srv := wiretest.Serve(t, wiretest.Reply(""))

	d, err := dial.New()
	if err != nil {
		t.Fatalf("failed to build dialer: %v", err)
	}

	conn, err := d.Dial(t.Context(), request.Unsecure(srv.Addr()), "")
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()

	if _, err := io.WriteString(conn, "GET / HTTP/1.1\r\n\r\n"); err != nil {
		t.Fatalf("failed to write: %v", err)
	}

	if _, err := conn.Read(make([]byte, 1)); err != io.EOF {
		t.Errorf("exp bare io.EOF, got %v", err)
	}
}

func TestNew_Validation(t *testing.T) {
	testCases := map[string]dial.Option{
		"negativeTimeout": dial.WithTimeout(-time.Second),
		"nilTLSConfig":    dial.WithTLSConfig(nil),
	}

	for name, opt := range testCases {
		t.Run(name, func(t *testing.T) {
			if _, err := dial.New(opt); err == nil {
				t.Error("exp option to be rejected")
			}
		})
	}
}
