package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"
	"strings"
)

// PriceData is the payload returned by the market price tool.
type PriceData struct {
	Asset            string  `json:"asset"`
	PriceUSD         float64 `json:"price_usd"`
	Change24hPercent float64 `json:"change_24h_percent"`
	Volume24hUSD     float64 `json:"volume_24h_usd"`
	Volatility       string  `json:"volatility"`
}

// SentimentData is the payload returned by the internal sentiment tool.
type SentimentData struct {
	Asset           string  `json:"asset"`
	SentimentScore  float64 `json:"sentiment_score"`
	RiskLevel       string  `json:"risk_level"`
	SocialSentiment float64 `json:"social_sentiment"`
	NewsSentiment   float64 `json:"news_sentiment"`
	MarketOutlook   string  `json:"market_outlook"`
	Confidence      float64 `json:"confidence"`
}

type assetProfile struct {
	base       float64
	volatility string
}

// Known asset profiles; anything else falls back to a generic mid-volatility
// profile so the tool never fails on an unknown asset.
var assetProfiles = map[string]assetProfile{
	"BTC":  {base: 45000, volatility: "high"},
	"ETH":  {base: 2500, volatility: "medium"},
	"USDT": {base: 1, volatility: "low"},
	"SOL":  {base: 100, volatility: "high"},
}

var defaultProfile = assetProfile{base: 1000, volatility: "medium"}

// MarketPriceTool returns current price and volume data for an asset. The
// payload is freshly sampled mock data; the contract is deterministic, the
// values are not.
type MarketPriceTool struct{}

func (t *MarketPriceTool) Name() string { return "get_market_price" }

func (t *MarketPriceTool) Description() string {
	return "Get the current market price for a cryptocurrency asset. " +
		"Input should be the asset symbol (e.g., BTC, ETH). " +
		"Returns price, 24h change, volume, and volatility metrics."
}

func (t *MarketPriceTool) Execute(ctx context.Context, asset string) (json.RawMessage, error) {
	symbol := strings.ToUpper(asset)
	log.Printf("INFO: executing get_market_price for %s", symbol)

	profile, ok := assetProfiles[symbol]
	if !ok {
		profile = defaultProfile
	}

	data := PriceData{
		Asset:            symbol,
		PriceUSD:         round2(profile.base + uniform(-profile.base*0.05, profile.base*0.05)),
		Change24hPercent: round2(uniform(-15, 15)),
		Volume24hUSD:     round2(uniform(1_000_000, 50_000_000)),
		Volatility:       profile.volatility,
	}
	return mustMarshal(data), nil
}

// InternalSentimentTool returns sentiment analysis and risk indicators for an
// asset, freshly sampled per call.
type InternalSentimentTool struct{}

func (t *InternalSentimentTool) Name() string { return "get_internal_sentiment" }

func (t *InternalSentimentTool) Description() string {
	return "Get internal sentiment analysis and risk indicators for a cryptocurrency asset. " +
		"Input should be the asset symbol (e.g., BTC, ETH). " +
		"Returns sentiment score, risk indicators, and market outlook."
}

func (t *InternalSentimentTool) Execute(ctx context.Context, asset string) (json.RawMessage, error) {
	symbol := strings.ToUpper(asset)
	log.Printf("INFO: executing get_internal_sentiment for %s", symbol)

	score := round2(uniform(0.3, 0.9))
	riskLevel := "Low"
	outlook := "bullish"
	switch {
	case score < 0.4:
		riskLevel = "High"
		outlook = "bearish"
	case score < 0.6:
		riskLevel = "Medium"
		outlook = "neutral"
	}

	data := SentimentData{
		Asset:           symbol,
		SentimentScore:  score,
		RiskLevel:       riskLevel,
		SocialSentiment: round2(uniform(0.4, 0.95)),
		NewsSentiment:   round2(uniform(0.3, 0.9)),
		MarketOutlook:   outlook,
		Confidence:      round2(uniform(0.7, 0.95)),
	}
	return mustMarshal(data), nil
}

func uniform(lo, hi float64) float64 {
	return lo + rand.Float64()*(hi-lo)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func mustMarshal(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("marshal tool payload: %v", err))
	}
	return data
}
