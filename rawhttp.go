// Package rawhttp is a minimal synchronous HTTP/1.1 client that speaks
// the protocol directly over TCP and TLS connections.
//
// The subpackages do the work: [request] resolves URLs and serializes
// requests, [response] parses responses and streams bodies, [dial] opens
// connections and [client] ties them together. This package offers
// shortcuts for the common case.
package rawhttp

import (
	"context"
	"fmt"

	"github.com/adamwoolhether/rawhttp/client"
	"github.com/adamwoolhether/rawhttp/request"
	"github.com/adamwoolhether/rawhttp/response"
)

// NewClient instantiates a new *client.Client with the provided options.
func NewClient(opts ...client.Option) (*client.Client, error) {
	return client.Build(opts...)
}

// NewRequest resolves rawURL into a request with no extra headers.
func NewRequest(rawURL string) (*request.Request, error) {
	return request.New(rawURL)
}

// Call resolves rawURL and performs a GET with a default client. The
// caller must read the response body to the end or close it.
func Call(ctx context.Context, rawURL string) (*response.Response, error) {
	req, err := request.New(rawURL)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	c, err := client.Build()
	if err != nil {
		return nil, fmt.Errorf("building client: %w", err)
	}

	return c.Call(ctx, req)
}
