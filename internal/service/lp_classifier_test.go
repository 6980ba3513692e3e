package service

import (
	"testing"

	"treasury_checker/internal/config"
	"treasury_checker/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopClassifierNeverMatches(t *testing.T) {
	c := NoopClassifier{}
	assert.Nil(t, c.Classify(usdcMint, 100, nil))
	assert.Nil(t, c.Classify(lpMint, 100, nil))
}

func TestMeteoraClassifierValuesPositionFromLegs(t *testing.T) {
	c := NewMeteoraClassifier([]config.LpPoolConfig{
		{
			Mint:         lpMint,
			Name:         "Meteora SOL-USDC LP",
			Token1Mint:   entity.WrappedSolMint,
			Token1Symbol: "SOL",
			Token2Mint:   usdcMint,
			Token2Symbol: "USDC",
			Platform:     "Meteora",
		},
	})

	// The LP mint itself has no quote; only the legs are priced.
	prices := map[string]float64{
		entity.WrappedSolMint: 150,
		usdcMint:              1,
	}
	cls := c.Classify(lpMint, 10, prices)
	require.NotNil(t, cls)
	assert.Equal(t, "Meteora", cls.Platform)
	assert.Equal(t, "Meteora SOL-USDC LP", cls.Name)

	details := cls.Details
	require.NotNil(t, details)
	assert.Equal(t, lpMint, details.PoolAddress)
	assert.InDelta(t, 5.0, details.Token1.Amount, 1e-6)
	assert.InDelta(t, 5.0, details.Token2.Amount, 1e-6)
	assert.InDelta(t, 750.0, details.Token1.UsdValue, 1e-6)
	assert.InDelta(t, 5.0, details.Token2.UsdValue, 1e-6)
	assert.InDelta(t, 755.0, details.TotalUsdValue, 1e-6)
	assert.Equal(t, "SOL", details.Token1.Symbol)
	assert.Equal(t, "USDC", details.Token2.Symbol)
}

func TestMeteoraClassifierUnknownMint(t *testing.T) {
	c := NewMeteoraClassifier(nil)
	assert.Nil(t, c.Classify(usdcMint, 100, nil))
}

func TestMeteoraClassifierLegWithoutPrice(t *testing.T) {
	c := NewMeteoraClassifier([]config.LpPoolConfig{
		{Mint: lpMint, Token1Mint: entity.WrappedSolMint, Token1Symbol: "SOL", Token2Mint: usdcMint, Token2Symbol: "USDC"},
	})

	cls := c.Classify(lpMint, 1000, map[string]float64{usdcMint: 1})
	require.NotNil(t, cls)
	assert.InDelta(t, 500.0, cls.Details.Token1.Amount, 1e-6)
	assert.Equal(t, 0.0, cls.Details.Token1.UsdValue)
	assert.InDelta(t, 500.0, cls.Details.Token2.UsdValue, 1e-6)
	assert.InDelta(t, 500.0, cls.Details.TotalUsdValue, 1e-6)
}

func TestNewClassifierSelection(t *testing.T) {
	cfg := &config.Config{}
	cfg.Treasury.LpClassifier = "none"
	assert.IsType(t, NoopClassifier{}, NewClassifier(cfg))

	cfg.Treasury.LpClassifier = "meteora"
	assert.IsType(t, &MeteoraClassifier{}, NewClassifier(cfg))
}
