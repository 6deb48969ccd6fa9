package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"questionsbattle/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Command is what a participant connection sends over the socket
type Command struct {
	Action string `json:"action"` // create | join | start | submit
	Player string `json:"player,omitempty"`
	Text   string `json:"text,omitempty"`
}

// Handler handles WebSocket connections
type Handler struct {
	hub     *Hub
	gameSvc *service.GameService
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, gameSvc *service.GameService) *Handler {
	return &Handler{
		hub:     hub,
		gameSvc: gameSvc,
	}
}

// RoomWS handles GET /v1/ws/rooms/{code}. Joining the feed is free of
// game-state effects: the connection immediately gets the current
// snapshot if the room exists, and participates via commands after that.
func (h *Handler) RoomWS(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	conn := &Connection{
		ID:       uuid.New().String()[:8],
		RoomCode: code,
		Send:     make(chan []byte, 256),
		Hub:      h.hub,
	}

	h.hub.Register(conn)

	// Replay the current state to the new connection
	if snapshot, err := h.gameSvc.GetSnapshot(r.Context(), code); err == nil {
		h.hub.sendTo(conn, MsgGameUpdate, snapshot)
	}

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			h.hub.sendTo(conn, MsgError, &ErrorPayload{Code: "bad_command", Message: "invalid command frame"})
			continue
		}
		h.dispatch(conn, &cmd)
	}
}

// dispatch runs one participant command. Rejections come back as typed
// error frames, never a silent drop.
func (h *Handler) dispatch(conn *Connection, cmd *Command) {
	ctx := context.Background()

	var err error
	switch cmd.Action {
	case "create":
		_, err = h.gameSvc.CreateRoomWithCode(ctx, conn.RoomCode, cmd.Player)
		if err == nil {
			conn.Player = cmd.Player
		}
	case "join":
		_, err = h.gameSvc.JoinRoom(ctx, conn.RoomCode, cmd.Player)
		if err == nil {
			conn.Player = cmd.Player
		}
	case "start":
		_, err = h.gameSvc.StartGame(ctx, conn.RoomCode, h.actingPlayer(conn, cmd))
	case "submit":
		err = h.gameSvc.SubmitUtterance(ctx, conn.RoomCode, h.actingPlayer(conn, cmd), cmd.Text)
	default:
		h.hub.sendTo(conn, MsgError, &ErrorPayload{Code: "bad_command", Message: "unknown action " + cmd.Action})
		return
	}

	if err != nil {
		h.hub.sendTo(conn, MsgError, &ErrorPayload{
			Code:    service.ErrorCode(err),
			Message: err.Error(),
		})
	}
}

func (h *Handler) actingPlayer(conn *Connection, cmd *Command) string {
	if cmd.Player != "" {
		return cmd.Player
	}
	return conn.Player
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
