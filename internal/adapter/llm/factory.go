package llm

import (
	"log"
	"os"
	"time"
)

const (
	// EnvResearchMode is the environment variable name for mode selection.
	EnvResearchMode = "RESEARCH_MODE"
	// ModeMock indicates mock mode should be used.
	ModeMock = "MOCK"
)

// NewChatClient creates a chat client based on the RESEARCH_MODE environment
// variable. If RESEARCH_MODE=MOCK, returns a MockClient; otherwise returns a
// real Client.
func NewChatClient(baseURL, apiKey string, timeout time.Duration) ChatClient {
	if os.Getenv(EnvResearchMode) == ModeMock {
		log.Println("RESEARCH_MODE=MOCK detected, using mock chat client")
		return NewMockClient()
	}
	return NewClient(baseURL, apiKey, timeout)
}
