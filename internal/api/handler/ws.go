package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"urbaneye/backend/internal/auth"
	"urbaneye/backend/internal/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeNotifications upgrades the connection and streams complaint events
// to the admin, filtered to their division by the hub.
func (h *Handler) ServeNotifications(c *gin.Context) {
	actor := auth.CurrentActor(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &events.WSClient{
		Conn:     conn,
		Division: actor.Division,
		Send:     make(chan events.Event, 64),
	}
	h.Hub.RegisterCh <- client

	go client.WritePump(h.Hub)
	go client.ReadPump(h.Hub)
}
