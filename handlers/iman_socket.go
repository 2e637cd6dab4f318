// handlers/iman_socket.go - Live iman score updates over websocket
package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"muslimlife/services"
)

const (
	// WebSocket timeouts
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Send channel buffer size
	sendBufferSize = 16
)

type socketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// RequireUpgrade rejects plain HTTP requests on websocket routes.
func RequireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// ImanSocket pushes a snapshot on connect and after every goal change. The
// client may send {"type":"refresh"} to get a fresh snapshot.
// GET /ws/iman
func (h *Handler) ImanSocket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		uid, ok := conn.Locals("userId").(float64)
		if !ok {
			_ = conn.WriteJSON(socketMessage{Type: "error", Data: "unauthenticated"})
			conn.Close()
			return
		}
		h.serveIman(conn, uint(uid), h.Goals)
	})
}

func (h *Handler) serveIman(conn *websocket.Conn, userID uint, goals services.GoalsService) {
	send := make(chan socketMessage, sendBufferSize)
	done := make(chan struct{})

	unsubscribe := goals.Subscribe(userID, func(snap services.ImanSnapshot) {
		select {
		case send <- socketMessage{Type: "snapshot", Data: snap}:
		default:
			h.Log.Warnw("iman socket buffer full, dropping snapshot", "user_id", userID)
		}
	})
	defer unsubscribe()

	pushSnapshot := func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		snap, err := goals.Goals(ctx, userID)
		if err != nil {
			h.Log.Warnw("failed to load iman snapshot", "user_id", userID, "error", err)
			return
		}
		select {
		case send <- socketMessage{Type: "snapshot", Data: snap}:
		default:
		}
	}
	pushSnapshot()

	// writer
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case msg := <-send:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(msg); err != nil {
					conn.Close()
					return
				}
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					conn.Close()
					return
				}
			case <-done:
				return
			}
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	h.Log.Debugw("iman socket connected", "user_id", userID)
	for {
		var msg socketMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "refresh":
			pushSnapshot()
		case "ping":
			select {
			case send <- socketMessage{Type: "pong"}:
			default:
			}
		}
	}
	close(done)
	h.Log.Debugw("iman socket closed", "user_id", userID)
}
