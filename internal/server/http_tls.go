package server

import (
	"crypto/tls"
	"fmt"
	"net/http"
)

// buildTLSConfig constructs the tls.Config for server mode. Certificates
// are loaded from the configured PEM files.
func (s *Server) buildTLSConfig() (*tls.Config, error) {
	if s.TLSConfig.Mode != "server" {
		return nil, nil
	}

	cert, err := tls.LoadX509KeyPair(s.TLSConfig.CertFile, s.TLSConfig.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS key pair: %w", err)
	}

	minVersion := uint16(tls.VersionTLS12)
	if s.TLSConfig.MinVersion == "1.3" {
		minVersion = tls.VersionTLS13
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   minVersion,
	}, nil
}

// configureTLS applies TLS configuration to the HTTP server.
func (s *Server) configureTLS(httpServer *http.Server) error {
	tlsConfig, err := s.buildTLSConfig()
	if err != nil {
		return err
	}
	if tlsConfig != nil {
		httpServer.TLSConfig = tlsConfig
		s.Logger.Info("TLS enabled",
			"cert_file", s.TLSConfig.CertFile,
			"min_version", s.TLSConfig.MinVersion)
	}
	return nil
}
