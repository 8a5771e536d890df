package models

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string  `json:"role"` // "user" or "assistant"
	Content *string `json:"content"`
}

// AskRequest is the payload sent to the ask endpoint. The last turn must come from the user.
type AskRequest struct {
	History []ChatMessage `json:"history"`
}

// AskResponse carries the model's answer, or a persona apology when it declined.
type AskResponse struct {
	Answer string `json:"answer"`
}
