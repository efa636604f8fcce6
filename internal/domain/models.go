// Package domain defines the core domain models for the research service.
package domain

import (
	"encoding/json"
	"time"
)

// RiskLevel is the closed set of risk assessments a report may carry.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "Low"
	RiskLevelMedium RiskLevel = "Medium"
	RiskLevelHigh   RiskLevel = "High"
)

// IsValid reports whether the risk level is one of the allowed values.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh:
		return true
	}
	return false
}

// Report is the schema-validated market research output.
// Asset always carries the canonical (uppercased) form of the requested
// identifier, never the model's echo of it.
type Report struct {
	Asset          string    `json:"asset"`
	RiskLevel      RiskLevel `json:"risk_level"`
	SentimentScore float64   `json:"sentiment_score"`
	ToolsUsed      []string  `json:"tools_used"`
	Analysis       string    `json:"analysis,omitempty"`
}

// AgentStep records one reasoning step taken by the agent.
type AgentStep struct {
	Action  string `json:"action"`
	Thought string `json:"thought"`
}

// ToolCallRecord records one tool invocation in causal order.
type ToolCallRecord struct {
	Tool   string          `json:"tool"`
	Input  string          `json:"input"`
	Output json.RawMessage `json:"output"`
}

// ResearchResult aggregates the validated report with the audit trail of the
// attempt that produced it. Immutable after construction.
type ResearchResult struct {
	Output          *Report          `json:"output"`
	AgentSteps      []AgentStep      `json:"agent_steps"`
	ToolCalls       []ToolCallRecord `json:"tool_calls"`
	ExecutionTimeMs float64          `json:"execution_time_ms"`
	Success         bool             `json:"success"`
	Error           string           `json:"error,omitempty"`
}

// ResearchRequest is a persisted incoming research request.
type ResearchRequest struct {
	RequestID string    `json:"request_id"`
	Asset     string    `json:"asset"`
	CreatedAt time.Time `json:"created_at"`
}

// ResearchReport is a persisted validated report row.
type ResearchReport struct {
	ReportID       string          `json:"report_id"`
	RequestID      string          `json:"request_id"`
	Asset          string          `json:"asset"`
	RiskLevel      RiskLevel       `json:"risk_level"`
	SentimentScore float64         `json:"sentiment_score"`
	ToolsUsed      []string        `json:"tools_used"`
	ReportData     json.RawMessage `json:"report_data"`
	CreatedAt      time.Time       `json:"created_at"`
}
