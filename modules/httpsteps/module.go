// Package httpsteps defines steps that drive HTTP endpoints through the
// "http" interface. The httpcap adapter provides the client.
package httpsteps

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/vk/picklerun/internal/executor"
	"github.com/vk/picklerun/internal/loc"
	"github.com/vk/picklerun/internal/registry"
	"github.com/vk/picklerun/internal/svo"
)

// Scenario context keys the GET step writes and the assertion steps read.
const (
	StatusKey = "http.status"
	BodyKey   = "http.body"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register wires the HTTP step definitions into the registry.
func (m *Module) Register(r *registry.Registry) {
	src := loc.Location{URI: "modules/httpsteps"}

	r.MustRegister(`(\w+) sends a GET to "([^"]*)"`, sendGET, src, &registry.Metadata{
		Interface: "http",
		SVO:       &svo.Template{Subject: svo.Ref(1), Verb: svo.Lit("sends"), Object: svo.Ref(2)},
	})
	r.MustRegister(`the response status is (\d+)`, checkStatus, src, nil)
	r.MustRegister(`the response body contains "([^"]*)"`, checkBody, src, nil)
}

func clientFor(sc map[string]any, subject string) (*http.Client, error) {
	impl, ok := executor.CapabilityFor(sc, "http", subject)
	if !ok {
		return nil, fmt.Errorf("no live http capability for %q", subject)
	}
	client, ok := impl.(*http.Client)
	if !ok {
		return nil, fmt.Errorf("http capability for %q is %T, want *http.Client", subject, impl)
	}
	return client, nil
}

// sendGET performs the request and records status and body in the scenario
// context for the assertion steps.
func sendGET(sc map[string]any, who, url string) (map[string]any, error) {
	client, err := clientFor(sc, who)
	if err != nil {
		return nil, err
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: read body: %w", url, err)
	}

	sc[StatusKey] = resp.StatusCode
	sc[BodyKey] = string(body)
	return sc, nil
}

func checkStatus(sc map[string]any, want string) error {
	code, err := strconv.Atoi(want)
	if err != nil {
		return fmt.Errorf("status %q is not a number: %w", want, err)
	}
	got, ok := sc[StatusKey].(int)
	if !ok {
		return fmt.Errorf("no response recorded; a GET step must run first")
	}
	if got != code {
		return fmt.Errorf("response status is %d, expected %d", got, code)
	}
	return nil
}

func checkBody(sc map[string]any, needle string) error {
	body, ok := sc[BodyKey].(string)
	if !ok {
		return fmt.Errorf("no response recorded; a GET step must run first")
	}
	if !strings.Contains(body, needle) {
		return fmt.Errorf("response body does not contain %q", needle)
	}
	return nil
}
