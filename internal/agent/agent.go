package agent

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/quantrail/marketresearch/internal/domain"
)

// Agent conducts market research for an asset: it invokes the reasoning
// driver, validates the output, and retries the full reasoning+validation
// cycle on malformed output up to a configured bound.
type Agent struct {
	driver     *Driver
	maxRetries int
}

// New creates an agent around a driver. maxRetries is the default retry
// budget; Research allows a per-call override.
func New(driver *Driver, maxRetries int) *Agent {
	return &Agent{
		driver:     driver,
		maxRetries: maxRetries,
	}
}

// Research runs the research loop for asset. maxRetries <= 0 uses the
// configured default.
//
// Parse and validation failures drive a retry of the whole reasoning call;
// backend failures end the call immediately; spending the budget returns a
// domain.RetriesExceededError carrying the attempt count and last cause. The
// returned result carries only the winning attempt's trace.
func (a *Agent) Research(ctx context.Context, asset string, maxRetries int) (*domain.ResearchResult, error) {
	if maxRetries <= 0 {
		maxRetries = a.maxRetries
	}

	start := time.Now()
	taskPrompt := ResearchPrompt(asset)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Printf("INFO: starting research for %s (attempt %d/%d)", asset, attempt, maxRetries)

		driverResult, err := a.driver.Run(ctx, SystemPrompt, taskPrompt, strings.ToUpper(asset))
		if err != nil {
			// Backend failures are non-recoverable by retry.
			log.Printf("ERROR: reasoning backend failed for %s: %v", asset, err)
			return nil, err
		}

		report, err := ParseReport(driverResult.FinalText, asset)
		if err != nil {
			lastErr = err
			log.Printf("WARN: validation failed on attempt %d for %s: %v", attempt, asset, err)
			continue
		}

		return buildResult(report, driverResult, start), nil
	}

	return nil, &domain.RetriesExceededError{Attempts: maxRetries, Last: lastErr}
}

// buildResult converts the winning attempt's trace into the immutable result
// record, preserving the causal order of tool invocations.
func buildResult(report *domain.Report, driverResult *DriverResult, start time.Time) *domain.ResearchResult {
	steps := make([]domain.AgentStep, 0, len(driverResult.Trace))
	calls := make([]domain.ToolCallRecord, 0, len(driverResult.Trace))
	for _, step := range driverResult.Trace {
		steps = append(steps, domain.AgentStep{
			Action:  step.Tool,
			Thought: step.Thought,
		})
		calls = append(calls, domain.ToolCallRecord{
			Tool:   step.Tool,
			Input:  step.Input,
			Output: step.Observation,
		})
	}

	return &domain.ResearchResult{
		Output:          report,
		AgentSteps:      steps,
		ToolCalls:       calls,
		ExecutionTimeMs: float64(time.Since(start)) / float64(time.Millisecond),
		Success:         true,
	}
}
