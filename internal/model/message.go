package model

// ChatMessage is one entry of a room's conversation history. The history
// is what the judge sees, so roles follow the chat-completions convention.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}
