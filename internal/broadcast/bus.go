package broadcast

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/mfshell/shellstore/internal/logging"
)

// Handler consumes messages delivered to an endpoint. Handlers run
// synchronously on the publisher's goroutine, one delivery at a time per
// endpoint - the in-process analogue of the host queuing a channel event
// and running its callback to completion.
type Handler func(Message)

// Bus is a registry of named channels. Endpoints that open the same
// channel name see each other's messages. The zero value is not usable;
// create one with NewBus or use the process-wide Default.
type Bus struct {
	mu       sync.RWMutex
	channels map[string]map[*Endpoint]struct{}
}

// Default is the process-wide bus. Store instances in the same process
// find each other here; separate processes fall back to storage watching.
var Default = NewBus()

// NewBus creates an empty bus. Tests use private buses to simulate
// isolated groups of contexts.
func NewBus() *Bus {
	return &Bus{channels: make(map[string]map[*Endpoint]struct{})}
}

// Open joins the named channel and returns the endpoint. handler receives
// every message published by other endpoints on the channel.
func (b *Bus) Open(name string, handler Handler) *Endpoint {
	e := &Endpoint{
		bus:     b,
		name:    name,
		id:      uuid.Must(uuid.NewV7()).String(),
		handler: handler,
		log:     logging.NewLogger("broadcast"),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.channels[name] == nil {
		b.channels[name] = make(map[*Endpoint]struct{})
	}
	b.channels[name][e] = struct{}{}
	return e
}

// members returns the current endpoints on a channel, excluding the sender.
func (b *Bus) members(name string, sender *Endpoint) []*Endpoint {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []*Endpoint
	for e := range b.channels[name] {
		if e != sender {
			out = append(out, e)
		}
	}
	return out
}

func (b *Bus) leave(name string, e *Endpoint) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if members, ok := b.channels[name]; ok {
		delete(members, e)
		if len(members) == 0 {
			delete(b.channels, name)
		}
	}
}

// Endpoint is one side of a named channel. Publish is best-effort and
// never blocks on slow peers beyond their synchronous handler time.
type Endpoint struct {
	bus     *Bus
	name    string
	id      string
	handler Handler
	log     interface{ Warnf(string, ...any) }

	mu     sync.Mutex
	closed bool
}

// ID returns the endpoint's instance identifier (a UUIDv7).
func (e *Endpoint) ID() string {
	return e.id
}

// Publish sends msg to every other endpoint on the channel. The message is
// JSON round-tripped per receiver so no mutable state is shared across the
// boundary. Returns an error only when the message cannot be encoded;
// per-receiver delivery failures are logged and swallowed.
func (e *Endpoint) Publish(msg Message) error {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return fmt.Errorf("publish on closed channel %q", e.name)
	}

	msg.Sender = e.id
	encoded, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode sync message: %w", err)
	}

	for _, peer := range e.bus.members(e.name, e) {
		peer.deliver(encoded)
	}
	return nil
}

// Close leaves the channel. Further Publish calls fail; messages in flight
// from peers may still arrive for handlers already running.
func (e *Endpoint) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.bus.leave(e.name, e)
	return nil
}

func (e *Endpoint) deliver(encoded []byte) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return
	}

	var msg Message
	if err := json.Unmarshal(encoded, &msg); err != nil {
		e.log.Warnf("dropping undecodable sync message: %v", err)
		return
	}
	if msg.Sender == e.id {
		return
	}
	if e.handler != nil {
		e.handler(msg)
	}
}
