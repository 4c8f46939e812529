package core

import "sync"

const eventBuffer = 32

// Client is one connected peer as seen by the core layer. The transport
// layer owns the socket; the core talks to the client only through the
// Events channel and the done signal.
type Client struct {
	ID     string
	Events chan Event

	mu   sync.Mutex
	room string

	closeOnce sync.Once
	done      chan struct{}
}

// NewClient constructs a client with an initialized event channel.
func NewClient(id string) *Client {
	return &Client{
		ID:     id,
		Events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
	}
}

// SetRoom records the code of the room the client currently belongs to.
func (c *Client) SetRoom(code string) {
	c.mu.Lock()
	c.room = code
	c.mu.Unlock()
}

// Room returns the code of the client's current room, or "" if none.
// The reference is weak: it is resolved against the registry at use time.
func (c *Client) Room() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

// Close signals the transport layer to shut the connection down.
// Safe to call multiple times and from any goroutine.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Done is closed when the server decides the connection must go away,
// e.g. when the client's room expires.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// TrySend delivers an event without blocking. Returns false when the client
// is closed or a slow consumer and the event was dropped; delivery is
// best-effort.
func (c *Client) TrySend(ev Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Events <- ev:
		return true
	default:
		return false
	}
}
