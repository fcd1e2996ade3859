package main

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	pongWait   = 30 * time.Second    // Time allowed to read the next pong message from the peer
	pingPeriod = (pongWait * 9) / 10 // Ping period must be less than pongWait
	writeWait  = 10 * time.Second
)

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	closed chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		closed: make(chan struct{}),
	}
}

func (c *Client) unregister() {
	select {
	case c.hub.unregister <- c:
	case <-c.hub.done:
	}
}

// readClient discards incoming messages, it only keeps pong handling alive.
func (c *Client) readClient() {
	defer func() {
		close(c.closed)
		c.unregister()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) pingClient() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.closed:
			return
		case <-ticker.C:
			// WriteControl is safe next to the hub's writes
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return // Connection is broken, readClient will unregister it
			}
		}
	}
}
