package config

import (
	"fmt"
	"os"
	"strings"

	"treasury_checker/internal/entity"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the overall configuration for the application.
type Config struct {
	Server      ServerConfig          `yaml:"server"`
	Wallets     []entity.WalletConfig `yaml:"wallets" validate:"required,min=1"`
	SolanaRPC   SolanaRPCConfig       `yaml:"solanaRpc"`
	EthereumRPC EthereumRPCConfig     `yaml:"ethereumRpc"`
	Jupiter     JupiterConfig         `yaml:"jupiter"`
	CoinGecko   CoinGeckoConfig       `yaml:"coinGecko"`
	Treasury    TreasuryConfig        `yaml:"treasury"`
	PriceSvc    PriceServiceConfig    `yaml:"priceService"`
	KnownTokens []KnownToken          `yaml:"knownTokens"`
	LpPools     []LpPoolConfig        `yaml:"lpPools"`
	Logging     LoggingConfig         `yaml:"logging"`
}

// ServerConfig holds the server-specific configuration.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// SolanaRPCConfig holds the configuration for the Solana JSON-RPC client.
type SolanaRPCConfig struct {
	Endpoint             string `yaml:"endpoint"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// EthereumRPCConfig holds the configuration for the Ethereum client.
type EthereumRPCConfig struct {
	Endpoint             string `yaml:"endpoint"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// JupiterConfig holds the configuration for the batched price client.
type JupiterConfig struct {
	BaseURL                 string `yaml:"baseURL"`
	RequestTimeoutMillis    int64  `yaml:"requestTimeoutMillis"`
	MaxMintsPerBatchRequest int    `yaml:"maxMintsPerBatchRequest"`
}

// CoinGeckoConfig holds the configuration for the SOL spot price client.
type CoinGeckoConfig struct {
	BaseURL              string `yaml:"baseURL"`
	ApiKey               string `yaml:"apiKey"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// TreasuryConfig holds aggregation policy for the treasury service.
type TreasuryConfig struct {
	// HardAssetSymbols is the stablecoin allowlist; everything else is a
	// volatile asset, including the native coin and LP positions.
	HardAssetSymbols     []string `yaml:"hardAssetSymbols"`
	ProjectTokenMint     string   `yaml:"projectTokenMint"`
	ProjectTokenSymbol   string   `yaml:"projectTokenSymbol"`
	SolFallbackPriceUSD  float64  `yaml:"solFallbackPriceUSD"`
	MaxConcurrentWallets int      `yaml:"maxConcurrentWallets"`
	RefreshInterval      string   `yaml:"refreshInterval" validate:"duration"`
	SnapshotTTLMinutes   int      `yaml:"snapshotTTLMinutes"`
	// LpClassifier selects the LP detection strategy: "none" or "meteora".
	LpClassifier string `yaml:"lpClassifier"`
}

// PriceServiceConfig holds configuration for the price resolver.
type PriceServiceConfig struct {
	CacheTTLMinutes int     `yaml:"cacheTTLMinutes"`
	RateLimit       float64 `yaml:"rateLimit"`
	BurstLimit      int     `yaml:"burstLimit"`
}

// KnownToken carries display metadata for a mint the provider does not name.
type KnownToken struct {
	Mint     string `yaml:"mint"`
	Symbol   string `yaml:"symbol"`
	Name     string `yaml:"name"`
	Decimals uint8  `yaml:"decimals"`
}

// LpPoolConfig declares a known LP token mint and its two underlying legs,
// used by the meteora classifier.
type LpPoolConfig struct {
	Mint         string `yaml:"mint"`
	Name         string `yaml:"name"`
	Token1Mint   string `yaml:"token1Mint"`
	Token1Symbol string `yaml:"token1Symbol"`
	Token2Mint   string `yaml:"token2Mint"`
	Token2Symbol string `yaml:"token2Symbol"`
	Platform     string `yaml:"platform"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
	File  string `yaml:"file"`
}

// LoadConfig loads configuration from a YAML file, applies defaults and
// validates it. Validation failures are wrapped in entity.ErrInvalidConfig
// so the caller can surface a clear startup error instead of failing deep
// inside the pipeline.
func LoadConfig(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	cfg.applyDefaults()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60
	}

	if cfg.SolanaRPC.Endpoint == "" {
		cfg.SolanaRPC.Endpoint = "https://api.mainnet-beta.solana.com"
		logrus.Infof("SolanaRPC.Endpoint not set, defaulting to %s", cfg.SolanaRPC.Endpoint)
	}
	if cfg.SolanaRPC.RequestTimeoutMillis == 0 {
		cfg.SolanaRPC.RequestTimeoutMillis = 10000 // 10 seconds
	}
	if cfg.EthereumRPC.RequestTimeoutMillis == 0 {
		cfg.EthereumRPC.RequestTimeoutMillis = 10000
	}

	if cfg.Jupiter.BaseURL == "" {
		cfg.Jupiter.BaseURL = "https://lite-api.jup.ag/price/v2"
		logrus.Infof("Jupiter.BaseURL not set, defaulting to %s", cfg.Jupiter.BaseURL)
	}
	if cfg.Jupiter.RequestTimeoutMillis == 0 {
		cfg.Jupiter.RequestTimeoutMillis = 10000
	}
	if cfg.Jupiter.MaxMintsPerBatchRequest == 0 {
		cfg.Jupiter.MaxMintsPerBatchRequest = 100 // Jupiter batch limit
		logrus.Infof("Jupiter.MaxMintsPerBatchRequest not set, defaulting to %d", cfg.Jupiter.MaxMintsPerBatchRequest)
	}

	if cfg.CoinGecko.BaseURL == "" {
		cfg.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.CoinGecko.RequestTimeoutMillis == 0 {
		cfg.CoinGecko.RequestTimeoutMillis = 10000
	}

	if len(cfg.Treasury.HardAssetSymbols) == 0 {
		cfg.Treasury.HardAssetSymbols = []string{"USDC", "USDT"}
	}
	if cfg.Treasury.SolFallbackPriceUSD == 0 {
		cfg.Treasury.SolFallbackPriceUSD = 174.33
	}
	if cfg.Treasury.MaxConcurrentWallets <= 0 {
		cfg.Treasury.MaxConcurrentWallets = 10
	}
	if cfg.Treasury.RefreshInterval == "" {
		cfg.Treasury.RefreshInterval = "5m"
	}
	if cfg.Treasury.SnapshotTTLMinutes == 0 {
		cfg.Treasury.SnapshotTTLMinutes = 30
	}
	if cfg.Treasury.LpClassifier == "" {
		cfg.Treasury.LpClassifier = "none"
	}

	if cfg.PriceSvc.CacheTTLMinutes == 0 {
		cfg.PriceSvc.CacheTTLMinutes = 5
	}
	if cfg.PriceSvc.RateLimit == 0 {
		cfg.PriceSvc.RateLimit = 5
	}
	if cfg.PriceSvc.BurstLimit == 0 {
		cfg.PriceSvc.BurstLimit = 2
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// HardAssetSet returns the allowlist as a lookup set of uppercase symbols.
func (cfg *Config) HardAssetSet() map[string]struct{} {
	set := make(map[string]struct{}, len(cfg.Treasury.HardAssetSymbols))
	for _, s := range cfg.Treasury.HardAssetSymbols {
		set[strings.ToUpper(s)] = struct{}{}
	}
	return set
}
