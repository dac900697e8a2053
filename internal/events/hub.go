package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// WSClient is one admin notification stream. Clients with a division only
// receive events for that division.
type WSClient struct {
	Conn     *websocket.Conn
	Division string
	Send     chan Event
}

// Hub pushes bus events to connected WebSocket admins, holding the
// division-partitioning invariant on the way out.
type Hub struct {
	bus    *Bus
	logger *zap.Logger

	RegisterCh   chan *WSClient
	UnregisterCh chan *WSClient
	clients      map[*WSClient]bool
}

func NewHub(bus *Bus, logger *zap.Logger) *Hub {
	return &Hub{
		bus:          bus,
		logger:       logger,
		RegisterCh:   make(chan *WSClient),
		UnregisterCh: make(chan *WSClient),
		clients:      make(map[*WSClient]bool),
	}
}

// Run dispatches registrations and events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	subID, eventCh := h.bus.Subscribe()
	defer h.bus.Unsubscribe(subID)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.Send)
			}
			return
		case client := <-h.RegisterCh:
			h.clients[client] = true
		case client := <-h.UnregisterCh:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
		case e, ok := <-eventCh:
			if !ok {
				return
			}
			for client := range h.clients {
				if client.Division != "" && client.Division != e.Division {
					continue
				}
				select {
				case client.Send <- e:
				default:
					// Slow client: drop the connection instead of
					// blocking everyone else.
					delete(h.clients, client)
					close(client.Send)
				}
			}
		}
	}
}

// WritePump serializes events to the socket and keeps the connection alive
// with pings. Runs as one goroutine per client.
func (c *WSClient) WritePump(hub *Hub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case e, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			payload, err := json.Marshal(e)
			if err != nil {
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump discards inbound frames and unregisters on disconnect.
func (c *WSClient) ReadPump(hub *Hub) {
	defer func() {
		hub.UnregisterCh <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
