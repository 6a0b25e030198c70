package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dtroode/postit-wall/internal/model"
)

var _ model.Server = (*HTTPServer)(nil)

const readHeaderTimeout = 10 * time.Second

// HTTPServer wraps an http.Server with address and lifecycle methods.
type HTTPServer struct {
	server *http.Server
	cancel context.CancelFunc
}

// NewHTTPServer creates an HTTPServer serving handler on addr.
// Request contexts are cancelled on Stop so long-lived websocket handlers return.
func NewHTTPServer(handler http.Handler, addr string) *HTTPServer {
	base, cancel := context.WithCancel(context.Background())

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
	srv.RegisterOnShutdown(cancel)

	return &HTTPServer{server: srv, cancel: cancel}
}

// Start starts serving on the configured address using the provided security layer.
// It returns nil once the server is stopped.
func (s *HTTPServer) Start(securityLayer model.SecurityLayer) error {
	listener, err := securityLayer.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	err = s.server.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop shuts the server down, waiting for in-flight requests until ctx is done.
func (s *HTTPServer) Stop(ctx context.Context) error {
	defer s.cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// Address returns the configured listen address.
func (s *HTTPServer) Address() string {
	return s.server.Addr
}
