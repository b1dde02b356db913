package presence

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Conn wraps a websocket connection with a write mutex so that broadcasts
// from concurrent handlers never interleave frames.
type Conn struct {
	Id string

	ws *websocket.Conn
	mu sync.Mutex
}

func NewConn(id string, ws *websocket.Conn) *Conn {
	return &Conn{Id: id, ws: ws}
}

func (c *Conn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ws.WriteJSON(v)
}

func (c *Conn) Close() error {
	return c.ws.Close()
}
