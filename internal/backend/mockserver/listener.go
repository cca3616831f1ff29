package mockserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Listener serves a Server over TCP.
type Listener struct {
	httpServer *http.Server
	listener   net.Listener
	addr       string
}

// NewListener prepares s to be served on addr (host:port, ":0" picks a port).
func NewListener(s *Server, addr string) *Listener {
	return &Listener{
		httpServer: &http.Server{
			Handler:           s.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		addr: addr,
	}
}

// Start binds the address and serves in the background. It returns an error
// when the server fails right away.
func (l *Listener) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	listener, err := lc.Listen(ctx, "tcp", l.addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	l.listener = listener

	errChan := make(chan error, 1)
	go func() {
		if err := l.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("mock backend failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// Addr returns the bound address, or "" before Start.
func (l *Listener) Addr() string {
	if l.listener == nil {
		return ""
	}
	return l.listener.Addr().String()
}

// URL returns the base URL clients should use.
func (l *Listener) URL() string {
	addr := l.Addr()
	if addr == "" {
		return ""
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "::" || host == "0.0.0.0" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (l *Listener) Shutdown(ctx context.Context) error {
	return l.httpServer.Shutdown(ctx)
}
