// Package wiretest provides scripted peers for exercising the client
// against exact bytes on the wire.
package wiretest

import (
	"bufio"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
)

// Server accepts TCP connections on loopback and hands each one to a
// handler together with the request head it read.
type Server struct {
	ln   net.Listener
	wg   sync.WaitGroup
	mu   sync.Mutex
	reqs []string
}

// Handler answers one connection. head is the request line and headers,
// including the terminating blank line.
type Handler func(conn net.Conn, head string)

// Serve starts a Server that is shut down when the test ends.
func Serve(t testing.TB, handler Handler) *Server {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}

	s := &Server{ln: ln}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}

			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				defer conn.Close()

				head, err := ReadHead(bufio.NewReader(conn))
				if err != nil {
					return
				}

				s.mu.Lock()
				s.reqs = append(s.reqs, head)
				s.mu.Unlock()

				handler(conn, head)
			}()
		}
	}()

	t.Cleanup(func() {
		ln.Close()
		s.wg.Wait()
	})

	return s
}

// Reply returns a Handler that writes raw and closes the connection.
func Reply(raw string) Handler {
	return func(conn net.Conn, _ string) {
		io.WriteString(conn, raw)
	}
}

// Addr returns the "host:port" the server listens on.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// URL returns an http URL for path on the server.
func (s *Server) URL(path string) string {
	return "http://" + s.Addr() + path
}

// Requests returns the request heads received so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.reqs...)
}

// ReadHead reads up to and including the blank line ending a header block.
func ReadHead(br *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		line, err := br.ReadString('\n')
		b.WriteString(line)
		if err != nil {
			return b.String(), err
		}
		if line == "\r\n" || line == "\n" {
			return b.String(), nil
		}
	}
}

// Channel is an in-memory stand-in for a connection's read side that
// records whether it was closed.
type Channel struct {
	io.Reader

	mu     sync.Mutex
	closed int
}

// NewChannel wraps r as a Channel.
func NewChannel(r io.Reader) *Channel {
	return &Channel{Reader: r}
}

// Close records the call.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++

	return nil
}

// Closed reports how many times Close was called.
func (c *Channel) Closed() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}
