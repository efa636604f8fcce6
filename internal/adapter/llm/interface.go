package llm

import "context"

// ChatClient defines the interface for chat completion backends. The backend
// is an opaque, non-deterministic collaborator: the same request may yield
// plain text or tool-call directives.
type ChatClient interface {
	// CreateChatCompletion sends a chat completion request (non-streaming).
	CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error)
}

// Ensure Client implements ChatClient interface.
var _ ChatClient = (*Client)(nil)
