package ws

import (
	"time"

	"github.com/gorilla/websocket"
)

// Conn is one live connection as the hub sees it.
type Conn interface {
	Send(msg Message) error
	Close() error
	ID() string
}

type wsConn struct {
	conn   *websocket.Conn
	id     string
	sendMu chan struct{} // 1-slot semaphore serializing writes
	closed chan struct{}
}

func newWsConn(c *websocket.Conn, id string) *wsConn {
	return &wsConn{
		conn:   c,
		id:     id,
		sendMu: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) Send(msg Message) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(msg)
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	return c.conn.Close()
}

func (c *wsConn) ID() string { return c.id }
