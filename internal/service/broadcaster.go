package service

// Message types pushed to room connections
const (
	MsgGameUpdate  = "game_update"
	MsgChatMessage = "chat_message"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToRoom(roomCode string, msgType string, payload interface{})
}

// ChatPayload is the wire shape of a chat broadcast. Audio is the
// base64-encoded speech rendering of the message, when available.
type ChatPayload struct {
	Message string `json:"message"`
	Sender  string `json:"sender"`
	Audio   string `json:"audio,omitempty"`
}
