// Package execlog persists agent execution traces to a document store. The
// log is a pure side-channel: failures here are logged and swallowed, never
// surfaced to the research caller.
package execlog

import (
	"context"
	"time"

	"github.com/quantrail/marketresearch/internal/domain"
)

// Entry is one logged agent execution.
type Entry struct {
	RequestID       string                  `bson:"request_id" json:"request_id"`
	Asset           string                  `bson:"asset" json:"asset"`
	AgentSteps      []domain.AgentStep      `bson:"agent_steps" json:"agent_steps"`
	ToolCalls       []domain.ToolCallRecord `bson:"tool_calls" json:"tool_calls"`
	FinalOutput     *domain.Report          `bson:"final_output,omitempty" json:"final_output,omitempty"`
	ExecutionTimeMs float64                 `bson:"execution_time_ms" json:"execution_time_ms"`
	Success         bool                    `bson:"success" json:"success"`
	Error           string                  `bson:"error,omitempty" json:"error,omitempty"`
	Timestamp       time.Time               `bson:"timestamp" json:"timestamp"`
}

// Logger appends and reads execution log entries.
type Logger interface {
	// LogExecution appends an entry and returns the document id.
	LogExecution(ctx context.Context, entry *Entry) (string, error)

	// GetExecution returns the entry for a request, or nil when absent.
	GetExecution(ctx context.Context, requestID string) (*Entry, error)

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// Nop is a Logger that drops everything. Used when the document store is
// unavailable at startup.
type Nop struct{}

var _ Logger = (*Nop)(nil)

func (Nop) LogExecution(ctx context.Context, entry *Entry) (string, error) { return "", nil }

func (Nop) GetExecution(ctx context.Context, requestID string) (*Entry, error) { return nil, nil }

func (Nop) Close(ctx context.Context) error { return nil }
