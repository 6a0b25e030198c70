package model

import (
	"context"
	"net"
)

// SecurityLayer opens the listener a Server accepts on, plain or TLS.
type SecurityLayer interface {
	Listen(protocol, addr string) (net.Listener, error)
}

// Server is a network front end of the wall: the HTTP page server or the gRPC health server.
// Start blocks until the server stops; Stop drains it within ctx.
type Server interface {
	Start(securityLayer SecurityLayer) error
	Stop(ctx context.Context) error
	Address() string
}
