package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantrail/marketresearch/internal/adapter/llm"
	"github.com/quantrail/marketresearch/internal/agent"
	"github.com/quantrail/marketresearch/internal/config"
	"github.com/quantrail/marketresearch/internal/domain"
	"github.com/quantrail/marketresearch/internal/execlog"
	"github.com/quantrail/marketresearch/internal/policy"
	"github.com/quantrail/marketresearch/internal/service"
	"github.com/quantrail/marketresearch/internal/store"
	"github.com/quantrail/marketresearch/internal/tools"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	db, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("failed to create policy engine: %v", err)
	}

	cfg := &config.Config{MaxIterations: 5, MaxRetries: 3}
	driver := agent.NewDriver(llm.NewMockClient(), tools.NewMarketRegistry(), engine, "test-model", cfg.MaxIterations)
	researchAgent := agent.New(driver, cfg.MaxRetries)
	svc := service.New(db, researchAgent, execlog.Nop{}, cfg)

	e := echo.New()
	NewHandler(svc).RegisterRoutes(e)
	return e
}

func TestHealthEndpoint(t *testing.T) {
	e := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestResearchEndpoint(t *testing.T) {
	e := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/research", strings.NewReader(`{"asset": "btc"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	var resp domain.ResearchAPIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.RequestID, "req_"))
	assert.Equal(t, "BTC", resp.Asset)
	assert.True(t, resp.RiskLevel.IsValid())
	assert.GreaterOrEqual(t, resp.SentimentScore, 0.0)
	assert.LessOrEqual(t, resp.SentimentScore, 1.0)
	assert.Contains(t, resp.ToolsUsed, "get_market_price")
}

func TestResearchEndpointEmptyAsset(t *testing.T) {
	e := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/research", strings.NewReader(`{"asset": ""}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResearchEndpointBadBody(t *testing.T) {
	e := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/research", strings.NewReader(`{not json`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetReportNotFound(t *testing.T) {
	e := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/research/req_missing/report", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetExecutionLogNotFound(t *testing.T) {
	e := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/research/req_missing/log", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListRequestsEndpoint(t *testing.T) {
	e := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/research", strings.NewReader(`{"asset": "ETH"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/requests", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Requests []domain.ResearchRequest `json:"requests"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Requests, 1)
}

func TestStatusForErrorTaxonomy(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(&domain.StorageError{Op: "create request"}))
	assert.Equal(t, http.StatusBadGateway, statusFor(&domain.RetriesExceededError{Attempts: 3}))
	assert.Equal(t, http.StatusBadGateway, statusFor(&domain.BackendError{}))
}
