package service

import (
	"treasury_checker/internal/config"
	"treasury_checker/internal/entity"
)

// LpClassification describes a recognized LP position: display metadata for
// the balance entry plus the decomposed legs. Details.TotalUsdValue is the
// authoritative value of the position; the LP mint itself is never quoted
// by the price provider.
type LpClassification struct {
	Name     string
	Platform string
	Details  *entity.LpDetails
}

// TokenClassifier decides whether a mint is an LP position and, if so,
// values it from its underlying legs.
type TokenClassifier interface {
	// Classify returns the LP classification for the mint, or nil when the
	// mint is a plain token. uiAmount is the raw position size; prices is
	// the resolved price table for the current pass.
	Classify(mint string, uiAmount float64, prices map[string]float64) *LpClassification
}

// NoopClassifier treats every mint as a plain token.
type NoopClassifier struct{}

func (NoopClassifier) Classify(string, float64, map[string]float64) *LpClassification {
	return nil
}

// MeteoraClassifier recognizes LP mints declared in the pool registry and
// values each position as a balanced pool: half the raw amount in each leg,
// priced at that leg's own quote.
type MeteoraClassifier struct {
	pools map[string]config.LpPoolConfig
}

// NewMeteoraClassifier creates a classifier over the configured pool table.
func NewMeteoraClassifier(pools []config.LpPoolConfig) *MeteoraClassifier {
	table := make(map[string]config.LpPoolConfig, len(pools))
	for _, p := range pools {
		table[p.Mint] = p
	}
	return &MeteoraClassifier{pools: table}
}

// Classify implements TokenClassifier.
func (c *MeteoraClassifier) Classify(mint string, uiAmount float64, prices map[string]float64) *LpClassification {
	pool, ok := c.pools[mint]
	if !ok {
		return nil
	}

	legAmount := uiAmount / 2
	token1 := lpLeg(pool.Token1Mint, pool.Token1Symbol, legAmount, prices)
	token2 := lpLeg(pool.Token2Mint, pool.Token2Symbol, legAmount, prices)
	return &LpClassification{
		Name:     pool.Name,
		Platform: pool.Platform,
		Details: &entity.LpDetails{
			PoolAddress:   pool.Mint,
			Token1:        token1,
			Token2:        token2,
			TotalUsdValue: token1.UsdValue + token2.UsdValue,
		},
	}
}

func lpLeg(legMint, legSymbol string, amount float64, prices map[string]float64) entity.LpLeg {
	return entity.LpLeg{
		Symbol:   legSymbol,
		Amount:   amount,
		UsdValue: amount * prices[legMint],
	}
}

// NewClassifier selects the classifier named by configuration.
func NewClassifier(cfg *config.Config) TokenClassifier {
	if cfg.Treasury.LpClassifier == "meteora" {
		return NewMeteoraClassifier(cfg.LpPools)
	}
	return NoopClassifier{}
}
