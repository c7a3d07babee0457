package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	errConnClosed     = errors.New("connection closed")
	errSendBufferFull = errors.New("send buffer full")
)

const sendBufferSize = 256

// transport is the subset of *websocket.Conn the core needs; the registry
// and heartbeat treat the underlying socket as opaque.
type transport interface {
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// Conn is one live, addressable channel to an authenticated client. Outbound
// frames are queued on the send channel and drained by the write pump; the
// liveness flag is cleared by the heartbeat sweep and set again by pongs.
type Conn struct {
	UserID string

	sock transport
	send chan []byte

	mu       sync.Mutex
	alive    bool
	closed   bool
	lastSeen time.Time
}

func newConn(userID string, sock transport) *Conn {
	return &Conn{
		UserID:   userID,
		sock:     sock,
		send:     make(chan []byte, sendBufferSize),
		alive:    true,
		lastSeen: time.Now(),
	}
}

// enqueue queues a frame for the write pump. It never blocks: a closed
// connection or a full buffer is a delivery failure for this frame only.
func (c *Conn) enqueue(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errConnClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errSendBufferFull
	}
}

// markAlive is called from the pong handler.
func (c *Conn) markAlive() {
	c.mu.Lock()
	c.alive = true
	c.mu.Unlock()
}

// sweepAlive clears the liveness flag and reports whether it was set.
func (c *Conn) sweepAlive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	was := c.alive
	c.alive = false
	return was
}

// touch refreshes the last-activity timestamp. Pongs deliberately do not
// touch: a client that only answers pings still goes stale.
func (c *Conn) touch() {
	c.mu.Lock()
	c.lastSeen = time.Now()
	c.mu.Unlock()
}

func (c *Conn) lastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

// ping issues a liveness probe on the underlying socket.
func (c *Conn) ping() error {
	if c.sock == nil {
		return errConnClosed
	}
	return c.sock.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// close tears down the send queue and the underlying socket. Idempotent.
func (c *Conn) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()

	if c.sock != nil {
		c.sock.Close()
	}
}
