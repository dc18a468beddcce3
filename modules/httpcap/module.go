// Package httpcap provides an HTTP client capability for steps that drive
// web endpoints.
package httpcap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/vk/picklerun/internal/adapter"
)

// Module implements the adapter.Provider interface for this package.
type Module struct{}

// RegisterAdapters wires the httpcap adapter into the capability registry.
func (m *Module) RegisterAdapters(r *adapter.Registry) {
	r.Register(&adapter.Adapter{
		Name:    "httpcap",
		Create:  create,
		Cleanup: cleanup,
	})
}

// create builds a shared *http.Client. The interface configuration may set
// "timeout" as a duration string (default 30s) and "insecure_skip_verify"
// to accept self-signed endpoints.
func create(ctx context.Context, config map[string]any) (any, error) {
	timeout := 30 * time.Second
	if raw, ok := config["timeout"]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("httpcap timeout must be a duration string, got %T", raw)
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("httpcap timeout: %w", err)
		}
		timeout = d
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if raw, ok := config["insecure_skip_verify"]; ok {
		skip, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("httpcap insecure_skip_verify must be a bool, got %T", raw)
		}
		if skip {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
	}

	client := &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
	return client, nil
}

// cleanup releases pooled connections. The client itself needs no closing.
func cleanup(ctx context.Context, impl any) error {
	client, ok := impl.(*http.Client)
	if !ok {
		return fmt.Errorf("httpcap cleanup got %T, want *http.Client", impl)
	}
	client.CloseIdleConnections()
	return nil
}
