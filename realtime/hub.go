// Package realtime holds the in-process connection hub and the dispatcher
// that pushes payloads to individual WebSocket connections. The hub is not
// the source of truth for who is online; the connection registry in storage
// is. The hub only maps connection ids to live sockets on this process.
package realtime

import (
	"sync"

	"denti-chat/errors"
)

// sendBuffer bounds the per-connection outbound queue; a slow reader that
// fills it is treated as a transport failure, not a reason to block senders.
const sendBuffer = 64

// Conn is one live connection's outbound side. The transport layer drains
// Out onto the socket in its write pump.
type Conn struct {
	ID  string
	Out chan []byte

	mu     sync.Mutex
	closed bool
}

func NewConn(id string) *Conn {
	return &Conn{ID: id, Out: make(chan []byte, sendBuffer)}
}

// Enqueue hands a frame to the write pump. A closed connection reports
// ErrConnectionGone; a full queue reports a plain error so the caller can
// distinguish slow from gone.
func (c *Conn) Enqueue(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.ErrConnectionGone
	}
	select {
	case c.Out <- frame:
		return nil
	default:
		return errOutboundFull
	}
}

// Close is idempotent and wakes the write pump.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Out)
}

// Hub maps connection ids to live connections.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]*Conn)}
}

func (h *Hub) Add(c *Conn) {
	h.mu.Lock()
	h.conns[c.ID] = c
	h.mu.Unlock()
}

func (h *Hub) Remove(id string) {
	h.mu.Lock()
	delete(h.conns, id)
	h.mu.Unlock()
}

func (h *Hub) Get(id string) (*Conn, bool) {
	h.mu.RLock()
	c, ok := h.conns[id]
	h.mu.RUnlock()
	return c, ok
}

func (h *Hub) Len() int {
	h.mu.RLock()
	n := len(h.conns)
	h.mu.RUnlock()
	return n
}
