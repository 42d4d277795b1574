package ws

import "sync"

const sendBufferSize = 256

// conn is the game.Conn implementation backing one websocket. Sends go
// through a buffered channel drained by the write pump; a full buffer
// drops the frame rather than block the session.
//
// Send checks the closed flag under the mutex: a finished session keeps
// its roster until the sweep, so broadcasts can still reach a conn
// whose channel is already shut, and those frames must be dropped
// rather than sent on a closed channel.
type conn struct {
	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newConn() *conn {
	return &conn{send: make(chan []byte, sendBufferSize)}
}

func (c *conn) Send(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	select {
	case c.send <- b:
	default:
		// Slow or stale peer; skip silently.
	}
	return nil
}

// Close is safe to call more than once; the write pump shuts the socket
// down once the channel closes.
func (c *conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
