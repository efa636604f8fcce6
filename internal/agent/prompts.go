// Package agent drives the LLM-backed market research loop: a bounded
// tool-use driver, a strict output validator, and a retry orchestrator.
package agent

import "fmt"

// SystemPrompt is the system instruction handed to the reasoning backend.
const SystemPrompt = `You are a professional market research analyst specializing in cryptocurrency markets.

Your task is to analyze the provided asset and generate a comprehensive risk assessment report.

You have access to the following tools:
- get_market_price: Get current market price, volume, and volatility data
- get_internal_sentiment: Get sentiment analysis and risk indicators

INSTRUCTIONS:
1. Use BOTH tools to gather comprehensive market data about the asset
2. Analyze the data to assess market risk
3. Determine an overall risk level: "Low", "Medium", or "High"
4. Calculate a sentiment score between 0.0 and 1.0 (where 1.0 is most positive)
5. Provide your analysis in the exact JSON format specified

You must call both tools before providing your final analysis.`

const outputFormatInstructions = `
Provide your final analysis in this exact JSON format:
{
    "asset": "SYMBOL",
    "risk_level": "Low|Medium|High",
    "sentiment_score": 0.72,
    "tools_used": ["get_market_price", "get_internal_sentiment"],
    "analysis": "Brief explanation of your assessment"
}

IMPORTANT:
- risk_level must be exactly one of: "Low", "Medium", or "High"
- sentiment_score must be a number between 0.0 and 1.0
- tools_used must list the actual tools you called
- Return ONLY valid JSON, no additional text
`

// ResearchPrompt builds the task prompt for a specific asset.
func ResearchPrompt(asset string) string {
	return fmt.Sprintf(`Analyze the cryptocurrency asset: %s

Use the available tools to gather market data and sentiment information, then provide a comprehensive risk assessment.
%s`, asset, outputFormatInstructions)
}
