package entity

import "time"

// Blockchain identifies which chain a monitored wallet lives on.
type Blockchain string

const (
	BlockchainSolana   Blockchain = "Solana"
	BlockchainEthereum Blockchain = "Ethereum"
)

// WalletConfig is the static identity of a monitored treasury wallet.
// Instances are loaded from configuration at process start and never
// created or destroyed at runtime.
type WalletConfig struct {
	Name       string     `yaml:"name" json:"name"`
	Address    string     `yaml:"address" json:"address"`
	Blockchain Blockchain `yaml:"blockchain" json:"blockchain"`
}

// LpLeg is one underlying token of a liquidity-pool position.
type LpLeg struct {
	Symbol   string  `json:"symbol"`
	Amount   float64 `json:"amount"`
	UsdValue float64 `json:"usdValue"`
}

// PriceRange is the configured price band of an LP position.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// LpDetails decomposes a liquidity-pool token into its two underlying legs.
// Present only on balances flagged IsLpToken.
type LpDetails struct {
	PoolAddress   string     `json:"poolAddress"`
	Token1        LpLeg      `json:"token1"`
	Token2        LpLeg      `json:"token2"`
	PriceRange    PriceRange `json:"priceRange"`
	TotalUsdValue float64    `json:"totalUsdValue"`
}

// TokenBalance is one token holding inside a wallet at a point in time.
// Derived fresh on every aggregation pass; never the system of record.
type TokenBalance struct {
	TokenSymbol  string     `json:"token_symbol"`
	TokenName    string     `json:"token_name"`
	Balance      float64    `json:"balance"`
	UsdValue     float64    `json:"usd_value"`
	TokenAddress string     `json:"token_address"`
	IsLpToken    bool       `json:"is_lp_token"`
	Platform     string     `json:"platform"`
	LpDetails    *LpDetails `json:"lp_details,omitempty"`
}

// WalletSnapshot is the normalized view of one wallet for one pass.
// TotalUsdValue is always the recomputed sum of Balances[].UsdValue.
type WalletSnapshot struct {
	WalletID      string         `json:"wallet_id"`
	Name          string         `json:"name"`
	Address       string         `json:"address"`
	Blockchain    Blockchain     `json:"blockchain"`
	Balances      []TokenBalance `json:"balances"`
	TotalUsdValue float64        `json:"totalUsdValue"`
}

// TreasuryMetrics are the portfolio-wide figures for one pass.
type TreasuryMetrics struct {
	TotalMarketCap float64   `json:"totalMarketCap"`
	VolatileAssets float64   `json:"volatileAssets"`
	HardAssets     float64   `json:"hardAssets"`
	LastUpdated    time.Time `json:"lastUpdated"`
}

// ConsolidatedData is the top-level aggregation result served to clients.
// It is superseded wholesale by the next pass and has no persistent identity.
type ConsolidatedData struct {
	Treasury TreasuryMetrics  `json:"treasury"`
	Wallets  []WalletSnapshot `json:"wallets"`
	SolPrice float64          `json:"solPrice"`
	Stale    bool             `json:"stale,omitempty"`
}

// EmptyConsolidatedData returns the zeroed fallback shape. Consumers must
// never receive a nil or structurally invalid response, even when every
// upstream is down.
func EmptyConsolidatedData(now time.Time) *ConsolidatedData {
	return &ConsolidatedData{
		Treasury: TreasuryMetrics{LastUpdated: now},
		Wallets:  []WalletSnapshot{},
	}
}

// MarketCapInfo is the independently sourced on-chain market cap of the
// project token. It is deliberately kept separate from
// TreasuryMetrics.TotalMarketCap, which is the sum of monitored wallets.
type MarketCapInfo struct {
	MarketCap float64   `json:"marketCap"`
	Supply    float64   `json:"supply"`
	PriceUsd  float64   `json:"priceUsd"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetchedAt"`
}
