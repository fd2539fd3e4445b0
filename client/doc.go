// Package client dispatches HTTP/1.1 requests over raw TCP and TLS
// connections, one connection per exchange.
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithTimeout(10 * time.Second),
//		client.WithUserAgent("myapp/1.0"),
//	)
//
// The same settings can be loaded from YAML with [LoadConfig] and applied
// with [WithConfig].
//
// # Making Requests
//
// [Client.Send] and [Client.Call] return the parsed status line and headers
// as soon as they arrive; the body streams from the connection as it is
// read:
//
//	req, err := request.New("https://api.example.com/v1/resource")
//	resp, err := c.Call(ctx, req)
//	defer resp.Close()
//
// [Client.Do] checks the status code and decodes a JSON body:
//
//	err = c.Do(ctx, req, http.StatusOK, client.WithDestination(&result))
//
// # Downloading Files
//
// Stream a response body directly to disk with optional checksum
// verification and progress reporting:
//
//	err = c.Download(ctx, req, http.StatusOK, "/tmp/file.bin",
//		client.WithChecksum(sha256.New(), expectedHex),
//		client.WithProgress(),
//	)
//
// [Client.DownloadAll] runs several downloads with bounded concurrency.
package client
