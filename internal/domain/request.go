package domain

// ResearchAPIRequest is the body of POST /research.
type ResearchAPIRequest struct {
	Asset string `json:"asset"`
}

// ResearchAPIResponse is the body returned by POST /research.
type ResearchAPIResponse struct {
	RequestID       string    `json:"request_id"`
	Asset           string    `json:"asset"`
	RiskLevel       RiskLevel `json:"risk_level"`
	SentimentScore  float64   `json:"sentiment_score"`
	ToolsUsed       []string  `json:"tools_used"`
	Analysis        string    `json:"analysis,omitempty"`
	ExecutionTimeMs float64   `json:"execution_time_ms"`
}

// ErrorResponse is the body returned on failures.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}
