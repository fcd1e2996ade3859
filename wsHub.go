package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const broadcastBuffer = 64

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Hub struct {
	logger     *logrus.Entry
	clients    map[*Client]bool
	broadcast  chan interface{}
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub(logger *logrus.Entry) *Hub {
	return &Hub{
		logger:     logger,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan interface{}, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.removeClient(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug("Client registered: ", client.conn.RemoteAddr())

		case client := <-h.unregister:
			h.removeClient(client)

		case message := <-h.broadcast:
			for client := range h.clients {
				if err := client.conn.WriteJSON(message); err != nil {
					h.logger.Debugf("Error sending message to client %s: %v", client.conn.RemoteAddr(), err)
					h.removeClient(client)
				}
			}
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.conn.Close()
		h.logger.Debug("Client unregistered: ", client.conn.RemoteAddr())
	}
}

// BroadcastMessage never blocks, messages are dropped when the hub lags.
func (h *Hub) BroadcastMessage(message interface{}) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Debug("Broadcast buffer full, dropping message")
	}
}

func (h *Hub) HandleConnections(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error(err)
		return
	}

	client := NewClient(h, conn)
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.readClient()
	go client.pingClient()
}
