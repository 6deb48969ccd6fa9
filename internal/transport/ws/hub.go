package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgGameUpdate  MessageType = "game_update"
	MsgChatMessage MessageType = "chat_message"
	MsgError       MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ErrorPayload is the typed rejection sent back on a failed command
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Hub manages WebSocket connections for rooms. Membership is transport
// state only: players and spectators share the same room feed, and a
// disconnect never touches game state.
type Hub struct {
	// Room -> connections
	rooms map[string]map[*Connection]bool

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents a WebSocket connection
type Connection struct {
	ID       string
	RoomCode string
	Player   string // Set once the connection issues create/join
	Send     chan []byte
	Hub      *Hub
}

// BroadcastMessage is a message to broadcast to a room
type BroadcastMessage struct {
	RoomCode string
	Message  *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		rooms:      make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.rooms[conn.RoomCode] == nil {
				h.rooms[conn.RoomCode] = make(map[*Connection]bool)
			}
			h.rooms[conn.RoomCode][conn] = true
			h.mu.Unlock()
			log.Printf("connection %s joined room %s", conn.ID, conn.RoomCode)

		case conn := <-h.unregister:
			h.mu.Lock()
			if members, ok := h.rooms[conn.RoomCode]; ok {
				if members[conn] {
					delete(members, conn)
					close(conn.Send)
					if len(members) == 0 {
						delete(h.rooms, conn.RoomCode)
					}
					log.Printf("connection %s left room %s", conn.ID, conn.RoomCode)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			for conn := range h.rooms[msg.RoomCode] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToRoom sends a message to every connection in a room
// (implements service.Broadcaster)
func (h *Hub) BroadcastToRoom(roomCode string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		RoomCode: roomCode,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// sendTo delivers a message to a single connection
func (h *Hub) sendTo(conn *Connection, msgType MessageType, payload interface{}) {
	data, _ := json.Marshal(payload)
	frame, _ := json.Marshal(&Message{Type: msgType, Payload: data})
	select {
	case conn.Send <- frame:
	default:
	}
}
