// Package server provides the listeners the wall's HTTP and gRPC servers accept connections on.
package server

import (
	"crypto/tls"
	"fmt"
	"net"

	"github.com/dtroode/postit-wall/internal/model"
)

var (
	_ model.SecurityLayer = (*TLSListener)(nil)
	_ model.SecurityLayer = (*PlainListener)(nil)
)

// NewSecurityLayer picks a TLS or plain listener.
// nextProtos is the ALPN list offered over TLS: "h2" for gRPC, "http/1.1" for the websocket page.
func NewSecurityLayer(enableTLS bool, certFileName, privateKeyFileName string, nextProtos ...string) model.SecurityLayer {
	if enableTLS {
		return NewTLSListener(certFileName, privateKeyFileName, nextProtos...)
	}
	return NewPlainListener()
}

// TLSListener represents a TLS-enabled network listener.
type TLSListener struct {
	certFileName       string
	privateKeyFileName string
	nextProtos         []string
}

// NewTLSListener creates a new TLSListener instance.
//
// Parameters:
//   - certFileName: Path to the TLS certificate file
//   - privateKeyFileName: Path to the private key file
//   - nextProtos: ALPN protocols offered to clients
func NewTLSListener(certFileName, privateKeyFileName string, nextProtos ...string) *TLSListener {
	return &TLSListener{
		certFileName:       certFileName,
		privateKeyFileName: privateKeyFileName,
		nextProtos:         nextProtos,
	}
}

// Listen loads the key pair and listens on addr. TLS 1.2 is the minimum accepted version.
func (l *TLSListener) Listen(protocol, addr string) (net.Listener, error) {
	cert, err := tls.LoadX509KeyPair(l.certFileName, l.privateKeyFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
	}
	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
		NextProtos:   l.nextProtos,
	}
	return tls.Listen(protocol, addr, tlsConfig)
}

// PlainListener represents a plain (non-TLS) network listener.
type PlainListener struct{}

func NewPlainListener() *PlainListener {
	return &PlainListener{}
}

func (l *PlainListener) Listen(protocol, addr string) (net.Listener, error) {
	return net.Listen(protocol, addr)
}
