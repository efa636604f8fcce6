package store

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/quantrail/marketresearch/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateRequest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	request, err := s.CreateRequest(ctx, "BTC")
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}
	if !strings.HasPrefix(request.RequestID, "req_") {
		t.Errorf("Expected req_ prefix, got %s", request.RequestID)
	}
	if request.Asset != "BTC" {
		t.Errorf("Expected asset BTC, got %s", request.Asset)
	}
	if request.CreatedAt.IsZero() {
		t.Error("Expected created_at to be set")
	}
}

func TestReportRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	request, err := s.CreateRequest(ctx, "ETH")
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}

	report := &domain.ResearchReport{
		ReportID:       "rep_test1",
		RequestID:      request.RequestID,
		Asset:          "ETH",
		RiskLevel:      domain.RiskLevelMedium,
		SentimentScore: 0.65,
		ToolsUsed:      []string{"get_market_price", "get_internal_sentiment"},
		ReportData:     json.RawMessage(`{"success": true}`),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.CreateReport(ctx, report); err != nil {
		t.Fatalf("CreateReport failed: %v", err)
	}

	got, err := s.GetReportByRequestID(ctx, request.RequestID)
	if err != nil {
		t.Fatalf("GetReportByRequestID failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected report, got nil")
	}
	if got.ReportID != report.ReportID {
		t.Errorf("Expected report_id %s, got %s", report.ReportID, got.ReportID)
	}
	if got.RiskLevel != domain.RiskLevelMedium {
		t.Errorf("Expected risk level Medium, got %s", got.RiskLevel)
	}
	if got.SentimentScore != 0.65 {
		t.Errorf("Expected sentiment score 0.65, got %f", got.SentimentScore)
	}
	if len(got.ToolsUsed) != 2 || got.ToolsUsed[0] != "get_market_price" {
		t.Errorf("Unexpected tools_used: %v", got.ToolsUsed)
	}
	if string(got.ReportData) != `{"success": true}` {
		t.Errorf("Unexpected report_data: %s", got.ReportData)
	}
}

func TestGetReportMissing(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetReportByRequestID(context.Background(), "req_missing")
	if err != nil {
		t.Fatalf("GetReportByRequestID failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for missing report, got %+v", got)
	}
}

func TestListRequests(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, asset := range []string{"BTC", "ETH", "SOL"} {
		if _, err := s.CreateRequest(ctx, asset); err != nil {
			t.Fatalf("CreateRequest failed: %v", err)
		}
	}

	requests, err := s.ListRequests(ctx, 10)
	if err != nil {
		t.Fatalf("ListRequests failed: %v", err)
	}
	if len(requests) != 3 {
		t.Fatalf("Expected 3 requests, got %d", len(requests))
	}

	limited, err := s.ListRequests(ctx, 2)
	if err != nil {
		t.Fatalf("ListRequests failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Expected 2 requests with limit, got %d", len(limited))
	}
}
