package registry

import (
	"net"
	"sync"

	"github.com/marmos91/naming-server/internal/wire"
)

// Channel wraps a storage server's persistent control-channel connection
// with a send/recv mutex. The control channel is both the command pipe
// (CREATE/DELETE/INFO/CHECKPOINT/…) and the heartbeat pipe; without this
// mutex a dispatcher proxying a request and the heartbeat sweep could
// interleave wire frames on the same socket.
type Channel struct {
	mu   sync.Mutex
	conn net.Conn
}

// NewChannel wraps conn for serialized request/reply exchanges.
func NewChannel(conn net.Conn) *Channel {
	return &Channel{conn: conn}
}

// Exchange sends req and reads exactly one reply, holding the channel's
// mutex for the full round trip so no other goroutine's frame can be
// interleaved with this one.
func (c *Channel) Exchange(req *wire.Message) (*wire.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := wire.WriteMessage(c.conn, req); err != nil {
		return nil, err
	}
	return wire.ReadMessage(c.conn)
}

// Notify sends a one-way message with no expected reply, used for SHUTDOWN
// and REPLICATE.
func (c *Channel) Notify(msg *wire.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return wire.WriteMessage(c.conn, msg)
}

// Close closes the underlying connection.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}
