package domain

import "context"

// ChatTurn is a single prior exchange in the conversation, replayed to the
// model so it keeps context between requests.
type ChatTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	Message string     `json:"message"`
	History []ChatTurn `json:"history,omitempty"`
}

// ChatResponse is the reply relayed back to the customer
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ChatService relays customer messages to the model provider
type ChatService interface {
	Reply(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}
