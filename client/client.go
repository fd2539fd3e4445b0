package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/adamwoolhether/rawhttp/client/download"
	"github.com/adamwoolhether/rawhttp/dial"
	"github.com/adamwoolhether/rawhttp/errs"
	"github.com/adamwoolhether/rawhttp/request"
	"github.com/adamwoolhether/rawhttp/response"
	"github.com/adamwoolhether/rawhttp/throttle"
)

const acceptEncoding = "gzip, deflate, zstd"

// Client dispatches requests, one connection per exchange.
// It is immutable after Build and safe for concurrent use.
type Client struct {
	dialer     dial.Dialer
	logger     *slog.Logger
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	timeout    time.Duration
	userAgent  string
	requestID  bool
	decompress bool
}

// Build returns a Client configured by optFns. Without options it dials
// with the system network stack, uses slog.Default and a no-op tracer.
func Build(optFns ...Option) (*Client, error) {
	client := &Client{
		logger:     slog.Default(),
		tracer:     noop.NewTracerProvider().Tracer("no-op tracer"),
		propagator: otel.GetTextMapPropagator(),
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}
	if opts.tracer != nil {
		client.tracer = opts.tracer
	}
	if opts.propagator != nil {
		client.propagator = opts.propagator
	}
	if opts.timeout != nil {
		client.timeout = *opts.timeout
	}
	client.userAgent = opts.userAgent
	client.requestID = opts.requestID
	client.decompress = opts.decompress

	dialer := opts.dialer
	if dialer == nil {
		var dialOpts []dial.Option
		if opts.dialTimeout != nil {
			dialOpts = append(dialOpts, dial.WithTimeout(*opts.dialTimeout))
		}
		if opts.tlsConfig != nil {
			dialOpts = append(dialOpts, dial.WithTLSConfig(opts.tlsConfig))
		}

		d, err := dial.New(dialOpts...)
		if err != nil {
			return nil, fmt.Errorf("configuring dialer: %w", err)
		}
		dialer = d
	}
	if opts.throttle != nil {
		d, err := throttle.NewDialer(opts.throttle.RPS, opts.throttle.Burst, func() *slog.Logger { return client.logger }, dialer)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		dialer = d
	}
	client.dialer = dialer

	return client, nil
}

// Call performs a bodiless GET. See Send.
func (c *Client) Call(ctx context.Context, req *request.Request) (*response.Response, error) {
	return c.Send(ctx, http.MethodGet, req, nil)
}

// Send dispatches req with method and body over a fresh connection and
// returns once the status line and headers have been parsed. The body is
// streamed from the connection as the caller reads it; the caller must
// read it to the end or Close it.
//
// req is not modified. Client level headers are applied to a copy.
func (c *Client) Send(ctx context.Context, method string, req *request.Request, body []byte) (*response.Response, error) {
	if method == "" {
		method = http.MethodGet
	}

	ctx, span := c.startSpan(ctx, method, req)
	defer span.End()

	resp, err := c.send(ctx, method, c.prepare(ctx, req), body)
	if err != nil {
		recordErr(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, resp.Reason)
	}

	return resp, nil
}

func (c *Client) send(ctx context.Context, method string, req *request.Request, body []byte) (*response.Response, error) {
	target := req.Target()
	start := time.Now()

	dialCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithDeadline(ctx, start.Add(c.timeout))
		defer cancel()
	}

	c.logger.Debug("dialing", "method", method, "target", target)

	conn, err := c.dialer.Dial(dialCtx, target, strings.Trim(req.Domain(), "[]"))
	if err != nil {
		return nil, withCause(ctx, transportErr(err, "dial "+target.HostPort()))
	}

	if c.timeout > 0 {
		if err := conn.SetDeadline(start.Add(c.timeout)); err != nil {
			conn.Close()
			return nil, transportErr(err, "setting deadline")
		}
	}

	cc := newCallConn(ctx, conn)

	if _, err := req.WriteTo(cc, method, body); err != nil {
		cc.Close()
		return nil, withCause(ctx, transportErr(err, "writing request"))
	}

	resp, err := response.Read(cc, method)
	if err != nil {
		cc.Close()
		return nil, withCause(ctx, err)
	}

	c.logger.Debug("response received", "target", target, "status", resp.StatusCode, "framing", resp.Framing)

	return resp, nil
}

// prepare returns a copy of req carrying the client level headers and
// the trace context of ctx.
func (c *Client) prepare(ctx context.Context, req *request.Request) *request.Request {
	req = req.Clone()
	h := req.Header()

	if c.userAgent != "" {
		h.Set("User-Agent", c.userAgent)
	}
	if c.decompress && !h.Has("Accept-Encoding") {
		h.Set("Accept-Encoding", acceptEncoding)
	}
	if c.requestID && !h.Has("X-Request-Id") {
		h.Set("X-Request-Id", uuid.NewString())
	}

	c.propagator.Inject(ctx, headerCarrier{h: h})

	return req
}

// Do will fire the request, and write response to the given dest object if any.
func (c *Client) Do(ctx context.Context, req *request.Request, expCode int, opts ...DoOption) error {
	settings := doOpts{method: http.MethodGet}
	for _, opt := range opts {
		err := opt(&settings)
		if err != nil {
			return err
		}
	}

	var payload []byte
	if settings.payload != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(settings.payload); err != nil {
			return fmt.Errorf("encoding request payload: %w", err)
		}
		payload = buf.Bytes()

		if !req.Header().Has("Content-Type") {
			req = req.Clone()
			req.Header().Set("Content-Type", "application/json")
		}
	}

	doFunc := func(_ *response.Response, body io.Reader) error {
		if settings.responseBody != nil {
			d := json.NewDecoder(body)

			if settings.useJSONNum {
				d.UseNumber()
			}

			if err := d.Decode(settings.responseBody); err != nil {
				return fmt.Errorf("decoding body: %w", err)
			}
		}

		return nil
	}

	return c.exec(ctx, settings.method, req, payload, expCode, doFunc)
}

// Download executes a GET request that's intended to stream the response body to destPath.
// Data streams to a temp file in the same directory, then the temp file is renamed to
// destPath on success or cleared on failure.
func (c *Client) Download(ctx context.Context, req *request.Request, expCode int, destPath string, opts ...DownloadOption) error {
	if destPath == "" {
		return errors.New("destPath must not be empty")
	}

	dlFunc := func(resp *response.Response, body io.Reader) error {
		length := resp.ContentLength
		if c.decompress && resp.Encoded() {
			length = -1
		}

		if err := download.Handle(ctx, body, length, destPath, c.logger, opts...); err != nil {
			return fmt.Errorf("download: %w", err)
		}

		return nil
	}

	return c.exec(ctx, http.MethodGet, req, nil, expCode, dlFunc)
}

// DownloadAll runs jobs concurrently, at most limit at a time when limit
// is positive. Every job runs to completion; the failures are joined.
func (c *Client) DownloadAll(ctx context.Context, limit int, jobs ...DownloadJob) error {
	var (
		g      errgroup.Group
		mu     sync.Mutex
		failed []error
	)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, job := range jobs {
		g.Go(func() error {
			if err := c.Download(ctx, job.Request, job.ExpCode, job.DestPath, job.Options...); err != nil {
				mu.Lock()
				failed = append(failed, fmt.Errorf("%s: %w", job.DestPath, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(failed...)
}

// exec runs the request and injected function on success after validating the expected status code.
func (c *Client) exec(ctx context.Context, method string, req *request.Request, payload []byte, expCode int, fn execFn) error {
	resp, err := c.Send(ctx, method, req, payload)
	if err != nil {
		return fmt.Errorf("exec send: %w", err)
	}

	var body io.ReadCloser = resp.Body
	if c.decompress {
		if body, err = resp.Decoded(); err != nil {
			return fmt.Errorf("exec decode: %w", err)
		}
	}

	// Every exchange owns its connection, so an unread remainder is
	// dropped with it rather than drained.
	defer func() {
		if err := body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != expCode {
		b, err := io.ReadAll(io.LimitReader(body, maxErrBodySize))
		if err != nil {
			b = []byte("unable to read body")
		}

		statusErr := &UnexpectedStatusError{
			StatusCode: resp.StatusCode,
			Body:       string(b),
			Err:        ErrUnexpectedStatusCode,
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			statusErr.Err = errors.Join(ErrUnexpectedStatusCode, ErrAuthFailure)
		}

		return statusErr
	}

	if err := fn(resp, body); err != nil {
		return fmt.Errorf("exec fn: %w", err)
	}

	return nil
}

// callConn ties a connection to the context of the call that opened it:
// once ctx ends, pending and future reads and writes fail.
type callConn struct {
	net.Conn
	stop func() bool
	once sync.Once
	err  error
}

func newCallConn(ctx context.Context, conn net.Conn) *callConn {
	return &callConn{
		Conn: conn,
		stop: context.AfterFunc(ctx, func() {
			conn.SetDeadline(time.Unix(1, 0))
		}),
	}
}

func (cc *callConn) Close() error {
	cc.once.Do(func() {
		cc.stop()
		cc.err = cc.Conn.Close()
	})

	return cc.err
}

// transportErr makes sure err matches errs.ErrTransport.
func transportErr(err error, detail string) error {
	if errors.Is(err, errs.ErrTransport) {
		return fmt.Errorf("%s: %w", detail, err)
	}

	return errs.Wrap(errs.ErrTransport, err, detail)
}

// withCause attaches the reason ctx ended, if it has, so callers can test
// for context.Canceled or context.DeadlineExceeded.
func withCause(ctx context.Context, err error) error {
	if ctx.Err() == nil {
		return err
	}

	return fmt.Errorf("%w: %w", err, context.Cause(ctx))
}
