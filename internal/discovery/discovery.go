// Package discovery announces a running gateway over mDNS/DNS-SD so
// operator tooling on the local network can find it without a
// configured address, using the pure-Go github.com/brutella/dnssd
// package.
package discovery

import (
	"context"
	"fmt"

	"github.com/brutella/dnssd"
)

// ServiceType is the DNS-SD service type advertised for a T.38 gateway
// control endpoint.
const ServiceType = "_t38-gateway._tcp"

// Announcer owns the running mDNS responder; Close stops advertising and
// shuts the responder down.
type Announcer struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Announce advertises name on port over DNS-SD and starts responding to
// queries in the background. The returned Announcer's Close stops it.
func Announce(name string, port int) (*Announcer, error) {
	cfg := dnssd.Config{
		Name: name,
		Type: ServiceType,
		Port: port,
	}

	svc, err := dnssd.NewService(cfg)
	if err != nil {
		return nil, fmt.Errorf("discovery: create service: %w", err)
	}

	responder, err := dnssd.NewResponder()
	if err != nil {
		return nil, fmt.Errorf("discovery: create responder: %w", err)
	}
	if _, err := responder.Add(svc); err != nil {
		return nil, fmt.Errorf("discovery: add service: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = responder.Respond(ctx)
	}()

	return &Announcer{cancel: cancel, done: done}, nil
}

// Close stops advertising and waits for the responder goroutine to exit.
func (a *Announcer) Close() {
	a.cancel()
	<-a.done
}
