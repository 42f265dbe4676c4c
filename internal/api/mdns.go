package api

import (
	"fmt"
	"os"

	"github.com/enbility/zeroconf/v3"

	"github.com/nerrad567/lumen-core/internal/infrastructure/config"
)

// DNS-SD defaults.
const (
	defaultMDNSService = "_lumend._tcp"
	defaultMDNSDomain  = "local."
	defaultMDNSTTL     = 120
)

// advertiser publishes the API as a DNS-SD service.
type advertiser struct {
	server   *zeroconf.Server
	instance string
	service  string
}

// mdnsTXT builds the TXT records announced with the service.
func mdnsTXT(version string) []string {
	return []string{
		"version=" + version,
		"path=/api/v1",
	}
}

// startAdvertiser registers the service on all interfaces.
func startAdvertiser(cfg config.MDNSConfig, port int, version string) (*advertiser, error) {
	instance := cfg.Instance
	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			host = "lumend"
		}
		instance = host
	}
	service := cfg.Service
	if service == "" {
		service = defaultMDNSService
	}
	domain := cfg.Domain
	if domain == "" {
		domain = defaultMDNSDomain
	}

	server, err := zeroconf.Register(
		instance,
		service,
		domain,
		port,
		mdnsTXT(version),
		nil,
		zeroconf.TTL(defaultMDNSTTL),
	)
	if err != nil {
		return nil, fmt.Errorf("registering %s service: %w", service, err)
	}

	return &advertiser{
		server:   server,
		instance: instance,
		service:  service,
	}, nil
}

// shutdown withdraws the advertisement.
func (a *advertiser) shutdown() {
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}
