package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quantrail/marketresearch/internal/domain"
	"github.com/quantrail/marketresearch/internal/execlog"
)

// ResearchOutcome pairs the validated research result with the persisted
// request id.
type ResearchOutcome struct {
	RequestID string
	Result    *domain.ResearchResult
}

// Research conducts market research for an asset: persist the request, run
// the agent, persist the validated report, and log the execution trace to the
// document store best-effort. Relational write failures propagate as
// domain.StorageError; document-store failures never propagate.
func (s *Service) Research(ctx context.Context, asset string) (*ResearchOutcome, error) {
	asset = strings.TrimSpace(asset)
	if asset == "" {
		return nil, fmt.Errorf("asset is required")
	}

	start := time.Now()

	request, err := s.store.CreateRequest(ctx, asset)
	if err != nil {
		return nil, &domain.StorageError{Op: "create request", Err: err}
	}

	result, err := s.agent.Research(ctx, asset, s.config.MaxRetries)
	if err != nil {
		s.logExecution(ctx, &execlog.Entry{
			RequestID:       request.RequestID,
			Asset:           strings.ToUpper(asset),
			ExecutionTimeMs: float64(time.Since(start)) / float64(time.Millisecond),
			Success:         false,
			Error:           err.Error(),
		})
		return nil, err
	}

	reportData, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report data: %w", err)
	}
	report := &domain.ResearchReport{
		ReportID:       "rep_" + uuid.New().String()[:8],
		RequestID:      request.RequestID,
		Asset:          result.Output.Asset,
		RiskLevel:      result.Output.RiskLevel,
		SentimentScore: result.Output.SentimentScore,
		ToolsUsed:      result.Output.ToolsUsed,
		ReportData:     reportData,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.CreateReport(ctx, report); err != nil {
		return nil, &domain.StorageError{Op: "create report", Err: err}
	}
	log.Printf("INFO: created research report %s for request %s", report.ReportID, request.RequestID)

	s.logExecution(ctx, &execlog.Entry{
		RequestID:       request.RequestID,
		Asset:           result.Output.Asset,
		AgentSteps:      result.AgentSteps,
		ToolCalls:       result.ToolCalls,
		FinalOutput:     result.Output,
		ExecutionTimeMs: result.ExecutionTimeMs,
		Success:         true,
	})

	return &ResearchOutcome{
		RequestID: request.RequestID,
		Result:    result,
	}, nil
}

// logExecution writes to the document store side-channel. Failures are logged
// and swallowed.
func (s *Service) logExecution(ctx context.Context, entry *execlog.Entry) {
	docID, err := s.execLog.LogExecution(ctx, entry)
	if err != nil {
		log.Printf("WARN: failed to log execution for %s: %v, continuing without logging", entry.RequestID, err)
		return
	}
	if docID != "" {
		log.Printf("INFO: execution logged for %s: %s", entry.RequestID, docID)
	}
}

// GetReport returns the persisted report for a request, or nil when absent.
func (s *Service) GetReport(ctx context.Context, requestID string) (*domain.ResearchReport, error) {
	report, err := s.store.GetReportByRequestID(ctx, requestID)
	if err != nil {
		return nil, &domain.StorageError{Op: "get report", Err: err}
	}
	return report, nil
}

// GetExecutionLog returns the logged execution trace for a request, or nil
// when absent or when the document store is unavailable.
func (s *Service) GetExecutionLog(ctx context.Context, requestID string) (*execlog.Entry, error) {
	entry, err := s.execLog.GetExecution(ctx, requestID)
	if err != nil {
		log.Printf("WARN: failed to read execution log for %s: %v", requestID, err)
		return nil, nil
	}
	return entry, nil
}

// ListRequests returns the most recent research requests.
func (s *Service) ListRequests(ctx context.Context, limit int) ([]domain.ResearchRequest, error) {
	requests, err := s.store.ListRequests(ctx, limit)
	if err != nil {
		return nil, &domain.StorageError{Op: "list requests", Err: err}
	}
	return requests, nil
}
