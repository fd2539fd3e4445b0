package dial

import (
	"crypto/tls"
	"errors"
	"time"
)

// Option is a functional option for [New].
type Option func(*options) error

type options struct {
	timeout   time.Duration
	keepAlive time.Duration
	tlsConfig *tls.Config
}

// WithTimeout bounds how long connecting, including DNS resolution, may
// take. Zero means no limit beyond the context's.
func WithTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return errors.New("dial timeout must not be negative")
		}
		o.timeout = d
		return nil
	}
}

// WithKeepAlive sets the TCP keep-alive period. A negative value disables
// keep-alive probes.
func WithKeepAlive(d time.Duration) Option {
	return func(o *options) error {
		o.keepAlive = d
		return nil
	}
}

// WithTLSConfig sets the base TLS configuration for secure targets. It is
// cloned for every handshake. ServerName defaults to the request domain
// and MinVersion is raised to TLS 1.2.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("tls config must not be nil")
		}
		o.tlsConfig = cfg
		return nil
	}
}
