// Package v1 provides HTTP handlers for the research service.
package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quantrail/marketresearch/internal/domain"
	"github.com/quantrail/marketresearch/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		service: svc,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/health", h.Health)

	e.POST("/research", h.Research)
	e.GET("/v1/requests", h.ListRequests)
	e.GET("/v1/research/:request_id/report", h.GetReport)
	e.GET("/v1/research/:request_id/log", h.GetExecutionLog)
}

// Root returns API information.
func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"name":    "Market Research API",
		"version": "1.0.0",
		"status":  "running",
		"endpoints": map[string]string{
			"research": "/research (POST)",
			"health":   "/health (GET)",
		},
	})
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "1.0.0",
	})
}

// Research runs the research loop for the requested asset.
func (h *Handler) Research(c echo.Context) error {
	var req domain.ResearchAPIRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, domain.ErrorResponse{
			Error:  "invalid request body",
			Detail: err.Error(),
		})
	}
	if req.Asset == "" {
		return c.JSON(http.StatusBadRequest, domain.ErrorResponse{
			Error: "asset is required",
		})
	}

	outcome, err := h.service.Research(c.Request().Context(), req.Asset)
	if err != nil {
		return c.JSON(statusFor(err), domain.ErrorResponse{
			Error:  "research failed",
			Detail: err.Error(),
		})
	}

	report := outcome.Result.Output
	return c.JSON(http.StatusOK, domain.ResearchAPIResponse{
		RequestID:       outcome.RequestID,
		Asset:           report.Asset,
		RiskLevel:       report.RiskLevel,
		SentimentScore:  report.SentimentScore,
		ToolsUsed:       report.ToolsUsed,
		Analysis:        report.Analysis,
		ExecutionTimeMs: outcome.Result.ExecutionTimeMs,
	})
}

// ListRequests returns recent research requests.
func (h *Handler) ListRequests(c echo.Context) error {
	requests, err := h.service.ListRequests(c.Request().Context(), 50)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, domain.ErrorResponse{
			Error:  "failed to list requests",
			Detail: err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"requests": requests,
	})
}

// GetReport returns the persisted report for a request.
func (h *Handler) GetReport(c echo.Context) error {
	requestID := c.Param("request_id")
	report, err := h.service.GetReport(c.Request().Context(), requestID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, domain.ErrorResponse{
			Error:  "failed to get report",
			Detail: err.Error(),
		})
	}
	if report == nil {
		return c.JSON(http.StatusNotFound, domain.ErrorResponse{
			Error: "report not found",
		})
	}
	return c.JSON(http.StatusOK, report)
}

// GetExecutionLog returns the logged execution trace for a request.
func (h *Handler) GetExecutionLog(c echo.Context) error {
	requestID := c.Param("request_id")
	entry, err := h.service.GetExecutionLog(c.Request().Context(), requestID)
	if err != nil || entry == nil {
		return c.JSON(http.StatusNotFound, domain.ErrorResponse{
			Error: "execution log not found",
		})
	}
	return c.JSON(http.StatusOK, entry)
}

// statusFor maps the error taxonomy onto HTTP statuses: storage failures are
// server faults, agent failures are upstream faults.
func statusFor(err error) int {
	var storageErr *domain.StorageError
	if errors.As(err, &storageErr) {
		return http.StatusInternalServerError
	}
	var retriesErr *domain.RetriesExceededError
	var backendErr *domain.BackendError
	if errors.As(err, &retriesErr) || errors.As(err, &backendErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
