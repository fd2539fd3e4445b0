package client

import (
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/rawhttp/dial"
	"github.com/adamwoolhether/rawhttp/throttle"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	dialer      dial.Dialer
	timeout     *time.Duration
	dialTimeout *time.Duration
	tlsConfig   *tls.Config
	userAgent   string
	throttle    *throttle.Config
	logger      *slog.Logger
	tracer      trace.Tracer
	propagator  propagation.TextMapPropagator
	requestID   bool
	decompress  bool
}

// WithTimeout bounds a whole exchange: connecting, writing the request and
// reading the response including its body. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		c.timeout = &d
		return nil
	}
}

// WithDialTimeout bounds connecting alone. It has no effect together with
// WithDialer.
func WithDialTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return errors.New("dial timeout must not be negative")
		}
		c.dialTimeout = &d
		return nil
	}
}

// WithTLSConfig sets the TLS configuration used for https targets. It has
// no effect together with WithDialer.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *options) error {
		if cfg == nil {
			return errors.New("tls config must not be nil")
		}
		c.tlsConfig = cfg
		return nil
	}
}

// WithDialer replaces the network dialer.
func WithDialer(d dial.Dialer) Option {
	return func(c *options) error {
		if d == nil {
			return errors.New("dialer must not be nil")
		}
		c.dialer = d
		return nil
	}
}

// WithUserAgent sets a persistent User-Agent header on all outgoing requests.
func WithUserAgent(header string) Option {
	return func(c *options) error {
		c.userAgent = header
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(c *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, throttle.ErrMustNotBeZero)
		}
		c.throttle = &throttle.Config{RPS: rps, Burst: burst}
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(c *options) error {
		c.logger = logger
		return nil
	}
}

// WithTracer records a client span for every call.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *options) error {
		c.tracer = tracer
		return nil
	}
}

// WithPropagator sets the propagator used to inject trace context into
// request headers. The global otel propagator is used otherwise.
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(c *options) error {
		c.propagator = p
		return nil
	}
}

// WithRequestID adds an X-Request-Id header holding a random UUID to
// requests that don't carry one.
func WithRequestID() Option {
	return func(c *options) error {
		c.requestID = true
		return nil
	}
}

// WithDecompression advertises gzip, deflate and zstd support and makes
// Do and Download read decoded bodies. Send and Call still return the
// raw response; use [response.Response.Decoded] there.
func WithDecompression() Option {
	return func(c *options) error {
		c.decompress = true
		return nil
	}
}

// DoOption is a functional option for [Client.Do].
type DoOption func(options *doOpts) error

type doOpts struct {
	method       string
	payload      any
	responseBody any
	useJSONNum   bool
}

// WithMethod sets the request method. Do uses GET otherwise.
func WithMethod(method string) DoOption {
	return func(opts *doOpts) error {
		if method == "" {
			return errors.New("cannot use empty method")
		}
		opts.method = method

		return nil
	}
}

// WithPayload sends body JSON-encoded. Content-Type defaults to
// application/json when the request doesn't set one.
func WithPayload(body any) DoOption {
	return func(opts *doOpts) error {
		opts.payload = body

		return nil
	}
}

// WithDestination decodes the response body into bodyTemplate.
// bodyTemplate must be a pointer.
func WithDestination[T any](bodyTemplate *T) DoOption {
	return func(opts *doOpts) error {
		opts.responseBody = bodyTemplate

		return nil
	}
}

// WithJSONNumb tells the JSON decoder to use [json.Decoder.UseNumber],
// preserving number precision as [json.Number] instead of float64.
func WithJSONNumb() DoOption {
	return func(opts *doOpts) error {
		opts.useJSONNum = true

		return nil
	}
}
