package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs handles websocket requests from the peer.
func ServeWs(hub *Hub, c *websocket.Conn, workspaceID uuid.UUID) {
	client := &Client{Hub: hub, Conn: c, WorkspaceID: workspaceID, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // readPump runs in the handler goroutine
}
