// Package dial opens the connection a request is dispatched over: plain
// TCP for an [request.Unsecure] target, TLS over TCP for a
// [request.Secure] one.
//
// Every failure is a [*Error] naming the step that failed. Errors match
// [errs.ErrTransport] under [errors.Is], as well as the underlying cause,
// so callers can still test for [os.ErrDeadlineExceeded] or a
// [*net.DNSError].
package dial

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/adamwoolhether/rawhttp/request"
)

// Dialer opens a connection to target. serverName is the domain used for
// TLS verification and is ignored for unsecure targets.
type Dialer interface {
	Dial(ctx context.Context, target request.Target, serverName string) (net.Conn, error)
}

// Net is the [Dialer] backed by the operating system's network stack.
type Net struct {
	dialer    net.Dialer
	tlsConfig *tls.Config
}

// New returns a Net dialer configured by optFns.
func New(optFns ...Option) (*Net, error) {
	opts := options{
		timeout:   30 * time.Second,
		keepAlive: 30 * time.Second,
	}
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying dial option: %w", err)
		}
	}

	return &Net{
		dialer: net.Dialer{
			Timeout:   opts.timeout,
			KeepAlive: opts.keepAlive,
		},
		tlsConfig: opts.tlsConfig,
	}, nil
}

// Dial connects to target, completing the TLS handshake first when target
// is [request.Secure]. The returned connection reports read and write
// failures as [*Error].
func (n *Net) Dial(ctx context.Context, target request.Target, serverName string) (net.Conn, error) {
	addr := target.HostPort()

	raw, err := n.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		op := OpConnect
		if dnsErr := (*net.DNSError)(nil); errors.As(err, &dnsErr) {
			op = OpResolve
		}
		return nil, &Error{Op: op, Addr: addr, Err: err}
	}

	if tcp, ok := raw.(*net.TCPConn); ok {
		if err := tcp.SetNoDelay(true); err != nil {
			raw.Close()
			return nil, &Error{Op: OpConnect, Addr: addr, Err: err}
		}
	}

	switch target.(type) {
	case request.Secure:
		tc := tls.Client(raw, n.clientConfig(serverName))
		if err := tc.HandshakeContext(ctx); err != nil {
			raw.Close()
			return nil, &Error{Op: OpHandshake, Addr: addr, Err: err}
		}
		return &conn{Conn: tc, addr: addr}, nil

	default:
		return &conn{Conn: raw, addr: addr}, nil
	}
}

func (n *Net) clientConfig(serverName string) *tls.Config {
	var cfg *tls.Config
	if n.tlsConfig != nil {
		cfg = n.tlsConfig.Clone()
	} else {
		cfg = &tls.Config{}
	}

	if cfg.ServerName == "" {
		cfg.ServerName = serverName
	}
	if cfg.MinVersion < tls.VersionTLS12 {
		cfg.MinVersion = tls.VersionTLS12
	}

	return cfg
}

// conn tags read and write failures with the step and address.
// io.EOF passes through untouched.
type conn struct {
	net.Conn
	addr string
}

func (c *conn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	if err != nil && !isEOF(err) {
		err = &Error{Op: OpRead, Addr: c.addr, Err: err}
	}

	return n, err
}

func (c *conn) Write(p []byte) (int, error) {
	n, err := c.Conn.Write(p)
	if err != nil {
		err = &Error{Op: OpWrite, Addr: c.addr, Err: err}
	}

	return n, err
}
