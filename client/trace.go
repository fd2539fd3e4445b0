package client

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/rawhttp/request"
)

// headerCarrier adapts a request header to propagation.TextMapCarrier.
type headerCarrier struct {
	h *request.Header
}

func (hc headerCarrier) Get(key string) string { return hc.h.Get(key) }

func (hc headerCarrier) Set(key, value string) { hc.h.Set(key, value) }

func (hc headerCarrier) Keys() []string { return hc.h.Names() }

// startSpan opens the client span for one exchange.
func (c *Client) startSpan(ctx context.Context, method string, req *request.Request) (context.Context, trace.Span) {
	loc := req.Location()

	scheme := "http"
	if loc.Secure {
		scheme = "https"
	}

	return c.tracer.Start(ctx, method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("server.address", loc.Host),
			attribute.Int("server.port", loc.Port),
			attribute.String("url.scheme", scheme),
		),
	)
}

func recordErr(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
