package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/quantrail/marketresearch/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS research_requests (
			request_id TEXT PRIMARY KEY,
			asset TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_asset ON research_requests(asset)`,
		`CREATE TABLE IF NOT EXISTS research_reports (
			report_id TEXT PRIMARY KEY,
			request_id TEXT NOT NULL,
			asset TEXT NOT NULL,
			risk_level TEXT NOT NULL,
			sentiment_score REAL NOT NULL,
			tools_used TEXT NOT NULL,
			report_data TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (request_id) REFERENCES research_requests(request_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_request ON research_reports(request_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_asset ON research_reports(asset)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// CreateRequest persists an incoming research request and returns it.
func (s *SQLiteStore) CreateRequest(ctx context.Context, asset string) (*domain.ResearchRequest, error) {
	request := &domain.ResearchRequest{
		RequestID: "req_" + uuid.New().String()[:8],
		Asset:     asset,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO research_requests (request_id, asset, created_at) VALUES (?, ?, ?)`,
		request.RequestID, request.Asset, request.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert request: %w", err)
	}
	return request, nil
}

// ListRequests returns the most recent research requests.
func (s *SQLiteStore) ListRequests(ctx context.Context, limit int) ([]domain.ResearchRequest, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT request_id, asset, created_at FROM research_requests ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.ResearchRequest
	for rows.Next() {
		var r domain.ResearchRequest
		if err := rows.Scan(&r.RequestID, &r.Asset, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

// CreateReport persists a validated research report.
func (s *SQLiteStore) CreateReport(ctx context.Context, report *domain.ResearchReport) error {
	toolsUsed, err := json.Marshal(report.ToolsUsed)
	if err != nil {
		return fmt.Errorf("failed to marshal tools_used: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO research_reports (report_id, request_id, asset, risk_level, sentiment_score, tools_used, report_data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ReportID, report.RequestID, report.Asset, string(report.RiskLevel),
		report.SentimentScore, string(toolsUsed), string(report.ReportData), report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

// GetReportByRequestID returns the report for a request, or nil when absent.
func (s *SQLiteStore) GetReportByRequestID(ctx context.Context, requestID string) (*domain.ResearchReport, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT report_id, request_id, asset, risk_level, sentiment_score, tools_used, report_data, created_at
		 FROM research_reports WHERE request_id = ? LIMIT 1`,
		requestID,
	)

	var report domain.ResearchReport
	var riskLevel, toolsUsed, reportData string
	err := row.Scan(&report.ReportID, &report.RequestID, &report.Asset, &riskLevel,
		&report.SentimentScore, &toolsUsed, &reportData, &report.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}

	report.RiskLevel = domain.RiskLevel(riskLevel)
	if err := json.Unmarshal([]byte(toolsUsed), &report.ToolsUsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tools_used: %w", err)
	}
	report.ReportData = json.RawMessage(reportData)
	return &report, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
