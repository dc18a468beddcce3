// Package events publishes step activity to external observers. One event
// fires per SVOI-bearing step, before its handler is invoked; failures to
// deliver are swallowed, never slowing or failing the run itself.
package events

import (
	"context"
	"sync"

	"github.com/vk/picklerun/internal/loc"
)

// Event describes one semantically annotated step about to execute.
type Event struct {
	RunID         string       `json:"run_id"`
	PickleID      string       `json:"pickle_id"`
	StepText      string       `json:"step_text"`
	Location      loc.Location `json:"location"`
	Subject       string       `json:"subject"`
	Verb          string       `json:"verb"`
	Object        any          `json:"object,omitempty"`
	Interface     string       `json:"interface"`
	InterfaceType string       `json:"interface_type,omitempty"`
}

// Sink receives events. Implementations must be safe to call with a
// best-effort contract: Emit may drop an event but must not block the run.
type Sink interface {
	Emit(ctx context.Context, ev Event)
	Close() error
}

// NopSink discards everything. It is the default when no reporting bus is
// configured.
type NopSink struct{}

func (NopSink) Emit(ctx context.Context, ev Event) {}
func (NopSink) Close() error                       { return nil }

// Collector retains every emitted event in order. It backs dry runs and
// tests that assert on the event stream.
type Collector struct {
	mu     sync.Mutex
	events []Event
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Emit(ctx context.Context, ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *Collector) Close() error { return nil }

// Events returns a copy of everything collected so far.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}
