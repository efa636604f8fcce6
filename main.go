package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/quantrail/marketresearch/internal/adapter/llm"
	"github.com/quantrail/marketresearch/internal/agent"
	"github.com/quantrail/marketresearch/internal/config"
	"github.com/quantrail/marketresearch/internal/execlog"
	"github.com/quantrail/marketresearch/internal/policy"
	"github.com/quantrail/marketresearch/internal/service"
	"github.com/quantrail/marketresearch/internal/store"
	"github.com/quantrail/marketresearch/internal/tools"
	v1 "github.com/quantrail/marketresearch/internal/transport/http/v1"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Market Research API...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("LLM model: %s", cfg.LLMModel)

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Initialize execution log (best-effort document store)
	ctx := context.Background()
	execLog := execlog.Dial(ctx, cfg.MongoURL, cfg.MongoDatabase)
	defer execLog.Close(ctx)

	// Initialize chat client
	chatClient := llm.NewChatClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMTimeout)

	// Initialize policy engine
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize agent
	registry := tools.NewMarketRegistry()
	driver := agent.NewDriver(chatClient, registry, policyEngine, cfg.LLMModel, cfg.MaxIterations)
	researchAgent := agent.New(driver, cfg.MaxRetries)

	// Initialize service
	svc := service.New(db, researchAgent, execLog, cfg)

	// Initialize handler
	h := v1.NewHandler(svc)

	// Create Echo server
	server := echo.New()
	server.HideBanner = true

	// Middleware
	server.Use(middleware.Logger())
	server.Use(middleware.Recover())
	server.Use(middleware.CORS())

	// Register routes
	h.RegisterRoutes(server)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Market Research API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down Market Research API...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Market Research API stopped")
}
