package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/quantrail/marketresearch/internal/adapter/llm"
	"github.com/quantrail/marketresearch/internal/domain"
	"github.com/quantrail/marketresearch/internal/policy"
	"github.com/quantrail/marketresearch/internal/tools"
)

// TraceStep is one entry in the ordered action trace of a reasoning run.
type TraceStep struct {
	Tool        string
	Input       string
	Observation json.RawMessage
	Thought     string
}

// DriverResult is the outcome of one bounded reasoning run.
type DriverResult struct {
	FinalText string
	Trace     []TraceStep
}

// Driver wraps the chat backend and executes the bounded decide-act loop. The
// backend's tool-selection behavior is opaque: the driver only enforces the
// iteration bound and the tool protocol.
type Driver struct {
	client        llm.ChatClient
	registry      *tools.Registry
	policyEngine  *policy.Engine
	model         string
	maxIterations int
}

// NewDriver creates a reasoning driver. Construct once, reuse across calls.
func NewDriver(client llm.ChatClient, registry *tools.Registry, policyEngine *policy.Engine, model string, maxIterations int) *Driver {
	return &Driver{
		client:        client,
		registry:      registry,
		policyEngine:  policyEngine,
		model:         model,
		maxIterations: maxIterations,
	}
}

// Run executes the decide-act loop for one attempt. It returns the final free
// text plus the ordered trace of tool invocations. Tool failures and policy
// blocks become error observations in the trace; only a chat backend failure
// returns an error, wrapped as a domain.BackendError.
func (d *Driver) Run(ctx context.Context, systemPrompt, taskPrompt, asset string) (*DriverResult, error) {
	temperature := 0.7
	maxTokens := 2000

	messages := []llm.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: taskPrompt},
	}

	result := &DriverResult{}

	for iteration := 0; iteration < d.maxIterations; iteration++ {
		resp, err := d.client.CreateChatCompletion(ctx, &llm.ChatCompletionRequest{
			Model:       d.model,
			Messages:    messages,
			Temperature: &temperature,
			MaxTokens:   &maxTokens,
			Tools:       d.toolDefinitions(),
		})
		if err != nil {
			return nil, &domain.BackendError{Err: err}
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message == nil {
			return nil, &domain.BackendError{Err: fmt.Errorf("empty completion response")}
		}

		msg := resp.Choices[0].Message

		if len(msg.ToolCalls) == 0 {
			result.FinalText = msg.Content
			return result, nil
		}

		// Keep whatever content came with the final answer available in case
		// the iteration budget runs out.
		result.FinalText = msg.Content

		messages = append(messages, *msg)
		for _, call := range msg.ToolCalls {
			observation := d.invokeTool(ctx, call, asset)
			result.Trace = append(result.Trace, TraceStep{
				Tool:        call.Function.Name,
				Input:       call.Function.Arguments,
				Observation: observation,
				Thought:     msg.Content,
			})
			messages = append(messages, llm.ChatMessage{
				Role:       "tool",
				Content:    string(observation),
				ToolCallID: call.ID,
			})
		}
	}

	// Iteration budget exhausted: surface whatever partial text exists rather
	// than failing the attempt.
	log.Printf("WARN: reasoning loop hit iteration bound (%d) without a final answer", d.maxIterations)
	return result, nil
}

// invokeTool runs one tool call. It never fails the loop: policy blocks,
// unknown tools and execution errors all serialize into the observation.
func (d *Driver) invokeTool(ctx context.Context, call llm.ToolCall, asset string) json.RawMessage {
	toolAsset := asset
	var args struct {
		Asset string `json:"asset"`
	}
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err == nil && args.Asset != "" {
		toolAsset = args.Asset
	}

	decision, err := d.policyEngine.Evaluate(ctx, policy.Input{
		ToolName: call.Function.Name,
		Asset:    toolAsset,
	})
	if err != nil {
		log.Printf("ERROR: policy evaluation failed for %s: %v", call.Function.Name, err)
		return errorObservation(fmt.Sprintf("policy evaluation failed: %v", err))
	}
	if decision != policy.DecisionAllow {
		log.Printf("WARN: tool %s blocked by policy for asset %s", call.Function.Name, toolAsset)
		return errorObservation(fmt.Sprintf("tool %s blocked by policy", call.Function.Name))
	}

	observation, err := d.registry.Execute(ctx, call.Function.Name, toolAsset)
	if err != nil {
		log.Printf("WARN: tool %s failed: %v", call.Function.Name, err)
		return errorObservation(err.Error())
	}
	return observation
}

func (d *Driver) toolDefinitions() []llm.Tool {
	registered := d.registry.List()
	defs := make([]llm.Tool, 0, len(registered))
	for _, t := range registered {
		defs = append(defs, llm.Tool{
			Type: "function",
			Function: llm.ToolFunction{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"asset": map[string]interface{}{
							"type":        "string",
							"description": "Asset symbol to analyze (e.g., BTC, ETH)",
						},
					},
					"required": []string{"asset"},
				},
			},
		})
	}
	return defs
}

func errorObservation(msg string) json.RawMessage {
	data, _ := json.Marshal(map[string]string{"error": msg})
	return data
}
