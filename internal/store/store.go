// Package store defines the relational persistence interface and its SQLite
// implementation.
package store

import (
	"context"

	"github.com/quantrail/marketresearch/internal/domain"
)

// Store is the narrow append/query interface the research service persists
// through. Every write commits independently; there is no cross-call
// transaction.
type Store interface {
	// Request operations
	CreateRequest(ctx context.Context, asset string) (*domain.ResearchRequest, error)
	ListRequests(ctx context.Context, limit int) ([]domain.ResearchRequest, error)

	// Report operations
	CreateReport(ctx context.Context, report *domain.ResearchReport) error
	GetReportByRequestID(ctx context.Context, requestID string) (*domain.ResearchReport, error)

	// Lifecycle
	Close() error
}
