package agent

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantrail/marketresearch/internal/adapter/llm"
	"github.com/quantrail/marketresearch/internal/domain"
	"github.com/quantrail/marketresearch/internal/policy"
	"github.com/quantrail/marketresearch/internal/tools"
)

// scriptedClient returns one canned response per attempt, in order. Each
// response is a plain final answer with no tool calls, so one attempt equals
// one completion call.
type scriptedClient struct {
	responses []scriptedResponse
	calls     int
}

type scriptedResponse struct {
	content string
	err     error
}

func (s *scriptedClient) CreateChatCompletion(ctx context.Context, req *llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	if s.calls >= len(s.responses) {
		return nil, fmt.Errorf("unexpected call %d", s.calls+1)
	}
	resp := s.responses[s.calls]
	s.calls++
	if resp.err != nil {
		return nil, resp.err
	}
	return &llm.ChatCompletionResponse{
		Choices: []llm.Choice{
			{
				Message:      &llm.ChatMessage{Role: "assistant", Content: resp.content},
				FinishReason: "stop",
			},
		},
	}, nil
}

func newTestAgent(t *testing.T, client llm.ChatClient, maxRetries int) *Agent {
	t.Helper()
	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("failed to create policy engine: %v", err)
	}
	driver := NewDriver(client, tools.NewMarketRegistry(), engine, "test-model", 5)
	return New(driver, maxRetries)
}

func TestResearchRetriesOnInvalidOutput(t *testing.T) {
	client := &scriptedClient{
		responses: []scriptedResponse{
			{content: "I have no report for you."},
			{content: `{"asset": "BTC", "risk_level": "Low", "sentiment_score": 0.8, "tools_used": []}`},
		},
	}
	researchAgent := newTestAgent(t, client, 2)

	result, err := researchAgent.Research(context.Background(), "BTC", 2)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, client.calls)
	assert.Equal(t, domain.RiskLevelLow, result.Output.RiskLevel)
}

func TestResearchExhaustsRetryBudget(t *testing.T) {
	client := &scriptedClient{
		responses: []scriptedResponse{
			{content: "still no json"},
			{content: "still no json"},
			{content: "still no json"},
		},
	}
	researchAgent := newTestAgent(t, client, 3)

	_, err := researchAgent.Research(context.Background(), "BTC", 3)
	require.Error(t, err)

	var retriesErr *domain.RetriesExceededError
	require.ErrorAs(t, err, &retriesErr)
	assert.Equal(t, 3, retriesErr.Attempts)
	assert.Equal(t, 3, client.calls)

	var parseErr *domain.ParseError
	assert.ErrorAs(t, retriesErr.Last, &parseErr)
}

func TestResearchBackendErrorIsTerminal(t *testing.T) {
	client := &scriptedClient{
		responses: []scriptedResponse{
			{err: fmt.Errorf("connection refused")},
			{content: `{"asset": "BTC", "risk_level": "Low", "sentiment_score": 0.8, "tools_used": []}`},
		},
	}
	researchAgent := newTestAgent(t, client, 3)

	_, err := researchAgent.Research(context.Background(), "BTC", 3)
	require.Error(t, err)

	// No retry on backend failure, even with budget left.
	assert.Equal(t, 1, client.calls)
	var backendErr *domain.BackendError
	assert.ErrorAs(t, err, &backendErr)
	assert.False(t, domain.IsRetryable(err))
}

func TestResearchZeroBudgetUsesDefault(t *testing.T) {
	client := &scriptedClient{
		responses: []scriptedResponse{
			{content: `{"asset": "BTC", "risk_level": "Medium", "sentiment_score": 0.5, "tools_used": []}`},
		},
	}
	researchAgent := newTestAgent(t, client, 3)

	result, err := researchAgent.Research(context.Background(), "BTC", 0)
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestResearchEndToEndWithMockClient(t *testing.T) {
	researchAgent := newTestAgent(t, llm.NewMockClient(), 3)

	result, err := researchAgent.Research(context.Background(), "eth", 3)
	require.NoError(t, err)
	require.NotNil(t, result.Output)

	// Asset is the normalized requested symbol regardless of what the model
	// echoed back.
	assert.Equal(t, "ETH", result.Output.Asset)
	assert.True(t, result.Output.RiskLevel.IsValid())
	assert.GreaterOrEqual(t, result.Output.SentimentScore, 0.0)
	assert.LessOrEqual(t, result.Output.SentimentScore, 1.0)

	// Tool invocations appear in registration order.
	require.Len(t, result.ToolCalls, 2)
	assert.Equal(t, "get_market_price", result.ToolCalls[0].Tool)
	assert.Equal(t, "get_internal_sentiment", result.ToolCalls[1].Tool)
	require.Len(t, result.AgentSteps, 2)
	assert.Equal(t, "get_market_price", result.AgentSteps[0].Action)

	assert.Greater(t, result.ExecutionTimeMs, 0.0)
}
