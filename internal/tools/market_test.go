package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarketPricePayload(t *testing.T) {
	tool := &MarketPriceTool{}
	raw, err := tool.Execute(context.Background(), "btc")
	require.NoError(t, err)

	var data PriceData
	require.NoError(t, json.Unmarshal(raw, &data))

	assert.Equal(t, "BTC", data.Asset)
	assert.Equal(t, "high", data.Volatility)
	// Price stays within 5% of the base profile.
	assert.InDelta(t, 45000, data.PriceUSD, 45000*0.05)
	assert.GreaterOrEqual(t, data.Change24hPercent, -15.0)
	assert.LessOrEqual(t, data.Change24hPercent, 15.0)
	assert.GreaterOrEqual(t, data.Volume24hUSD, 1_000_000.0)
	assert.LessOrEqual(t, data.Volume24hUSD, 50_000_000.0)
}

func TestMarketPriceUnknownAssetFallsBack(t *testing.T) {
	tool := &MarketPriceTool{}
	raw, err := tool.Execute(context.Background(), "doge")
	require.NoError(t, err)

	var data PriceData
	require.NoError(t, json.Unmarshal(raw, &data))

	assert.Equal(t, "DOGE", data.Asset)
	assert.Equal(t, "medium", data.Volatility)
	assert.InDelta(t, 1000, data.PriceUSD, 1000*0.05)
}

func TestInternalSentimentPayload(t *testing.T) {
	tool := &InternalSentimentTool{}
	for i := 0; i < 50; i++ {
		raw, err := tool.Execute(context.Background(), "eth")
		require.NoError(t, err)

		var data SentimentData
		require.NoError(t, json.Unmarshal(raw, &data))

		assert.Equal(t, "ETH", data.Asset)
		assert.GreaterOrEqual(t, data.SentimentScore, 0.3)
		assert.LessOrEqual(t, data.SentimentScore, 0.9)

		// Risk level and outlook track the sampled score.
		switch {
		case data.SentimentScore < 0.4:
			assert.Equal(t, "High", data.RiskLevel)
			assert.Equal(t, "bearish", data.MarketOutlook)
		case data.SentimentScore < 0.6:
			assert.Equal(t, "Medium", data.RiskLevel)
			assert.Equal(t, "neutral", data.MarketOutlook)
		default:
			assert.Equal(t, "Low", data.RiskLevel)
			assert.Equal(t, "bullish", data.MarketOutlook)
		}
	}
}

func TestRegistryOrderAndLookup(t *testing.T) {
	r := NewMarketRegistry()

	listed := r.List()
	require.Len(t, listed, 2)
	assert.Equal(t, "get_market_price", listed[0].Name())
	assert.Equal(t, "get_internal_sentiment", listed[1].Name())

	assert.NotNil(t, r.Get("get_market_price"))
	assert.Nil(t, r.Get("get_weather"))
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&MarketPriceTool{}))
	err := r.Register(&MarketPriceTool{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistryExecuteUnknownTool(t *testing.T) {
	r := NewMarketRegistry()
	_, err := r.Execute(context.Background(), "get_weather", "BTC")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get_weather")
}
