package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/quantrail/marketresearch/internal/domain"
)

// reportPayload mirrors the report schema with pointer fields so that missing
// keys are distinguishable from zero values.
type reportPayload struct {
	Asset          *string  `json:"asset"`
	RiskLevel      *string  `json:"risk_level"`
	SentimentScore *float64 `json:"sentiment_score"`
	ToolsUsed      []string `json:"tools_used"`
	Analysis       *string  `json:"analysis"`
}

// ParseReport parses the agent's raw output into a validated report. The raw
// text is first parsed strictly; if that fails syntactically, exactly one
// substring extraction (first '{' to last '}') is attempted. The asset field
// is always overwritten with the canonical form of the requested asset — the
// model's echo of it is untrusted.
func ParseReport(raw, requestedAsset string) (*domain.Report, error) {
	payload, err := parsePayload(raw)
	if err != nil {
		return nil, err
	}

	if payload.Asset == nil {
		return nil, &domain.ValidationError{Field: "asset", Message: "required field missing"}
	}
	if payload.RiskLevel == nil {
		return nil, &domain.ValidationError{Field: "risk_level", Message: "required field missing"}
	}
	if payload.SentimentScore == nil {
		return nil, &domain.ValidationError{Field: "sentiment_score", Message: "required field missing"}
	}
	if payload.ToolsUsed == nil {
		return nil, &domain.ValidationError{Field: "tools_used", Message: "required field missing"}
	}

	riskLevel := domain.RiskLevel(*payload.RiskLevel)
	if !riskLevel.IsValid() {
		return nil, &domain.ValidationError{
			Field:   "risk_level",
			Message: fmt.Sprintf("invalid value %q, must be Low, Medium or High", *payload.RiskLevel),
		}
	}
	if *payload.SentimentScore < 0.0 || *payload.SentimentScore > 1.0 {
		return nil, &domain.ValidationError{
			Field:   "sentiment_score",
			Message: fmt.Sprintf("value %v outside [0.0, 1.0]", *payload.SentimentScore),
		}
	}

	report := &domain.Report{
		Asset:          strings.ToUpper(requestedAsset),
		RiskLevel:      riskLevel,
		SentimentScore: *payload.SentimentScore,
		ToolsUsed:      payload.ToolsUsed,
	}
	if payload.Analysis != nil {
		report.Analysis = *payload.Analysis
	}
	return report, nil
}

func parsePayload(raw string) (*reportPayload, error) {
	var payload reportPayload
	err := json.Unmarshal([]byte(raw), &payload)
	if err == nil {
		return &payload, nil
	}
	if vErr := asTypeError(err); vErr != nil {
		return nil, vErr
	}

	// Best-effort tolerance for backends that wrap JSON in prose: exactly one
	// substring attempt between the outermost braces.
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return nil, &domain.ParseError{Message: "could not find valid JSON in agent output"}
	}

	payload = reportPayload{}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		if vErr := asTypeError(err); vErr != nil {
			return nil, vErr
		}
		return nil, &domain.ParseError{Message: fmt.Sprintf("extracted substring is not valid JSON: %v", err)}
	}
	return &payload, nil
}

// asTypeError classifies a JSON type mismatch as a schema violation rather
// than a parse failure: the document was JSON, its shape was wrong.
func asTypeError(err error) *domain.ValidationError {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) {
		return nil
	}
	return &domain.ValidationError{
		Field:   typeErr.Field,
		Message: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
	}
}
