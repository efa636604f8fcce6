// Package policy gates the agent's tool invocations through an OPA policy.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Engine is the OPA policy engine. Prepared once at startup and shared,
// read-only, by all research calls.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.tool_policy.decision"),
		rego.Module("tool_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Decision values returned by Evaluate.
const (
	DecisionAllow = "allow"
	DecisionBlock = "block"
)

// Input is the document evaluated against the tool policy.
type Input struct {
	ToolName string `json:"tool_name"`
	Asset    string `json:"asset"`
}

// Evaluate checks the tool policy for a single tool invocation.
func (e *Engine) Evaluate(ctx context.Context, input Input) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		// The policy is expected to define a default.
		return DecisionAllow, nil
	}

	if s, ok := results[0].Expressions[0].Value.(string); ok {
		return s, nil
	}
	return DecisionAllow, nil
}

// DefaultPolicy allows the read-only market tools and blocks anything that
// could mutate state, plus assets on the internal denylist.
const DefaultPolicy = `
package tool_policy

default decision = "allow"

# Read-only research tools only; block anything that looks like an order.
decision = "block" {
	startswith(input.tool_name, "execute_")
}

# Internal denylist.
denied_assets = {"SCAM", "RUGP"}

decision = "block" {
	denied_assets[input.asset]
}
`
