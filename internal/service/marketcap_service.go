package service

import (
	"context"
	"fmt"
	"time"

	"treasury_checker/internal/client"
	"treasury_checker/internal/entity"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const marketCapKey = "marketcap"

// MarketCapService defines the interface for the project token's on-chain
// market cap, computed as circulating supply times resolved price. This is
// independent of the treasury totals.
type MarketCapService interface {
	GetMarketCap(ctx context.Context) (*entity.MarketCapInfo, error)
}

// marketCapServiceImpl is the implementation of MarketCapService.
type marketCapServiceImpl struct {
	solana client.SolanaClient
	prices PriceService
	mint   string
	cache  *gocache.Cache
	logger *zap.Logger
}

// NewMarketCapService creates a new instance of marketCapServiceImpl.
func NewMarketCapService(
	solana client.SolanaClient,
	prices PriceService,
	projectTokenMint string,
	cacheTTL time.Duration,
	logger *zap.Logger,
) MarketCapService {
	return &marketCapServiceImpl{
		solana: solana,
		prices: prices,
		mint:   projectTokenMint,
		cache:  gocache.New(cacheTTL, 2*cacheTTL),
		logger: logger.Named("MarketCapService"),
	}
}

// GetMarketCap implements MarketCapService.
func (s *marketCapServiceImpl) GetMarketCap(ctx context.Context) (*entity.MarketCapInfo, error) {
	if s.mint == "" {
		return nil, fmt.Errorf("%w: projectTokenMint is not configured", entity.ErrInvalidConfig)
	}

	if cached, found := s.cache.Get(marketCapKey); found {
		return cached.(*entity.MarketCapInfo), nil
	}

	supply, err := s.solana.GetTokenSupply(ctx, s.mint)
	if err != nil {
		return nil, fmt.Errorf("token supply: %w", err)
	}

	prices, err := s.prices.ResolvePrices(ctx, []string{s.mint})
	if err != nil {
		return nil, fmt.Errorf("token price: %w", err)
	}
	price := prices[s.mint]

	info := &entity.MarketCapInfo{
		MarketCap: supply * price,
		Supply:    supply,
		PriceUsd:  price,
		Source:    "onchain",
		FetchedAt: time.Now().UTC(),
	}
	s.cache.Set(marketCapKey, info, gocache.DefaultExpiration)

	s.logger.Debug("Computed market cap",
		zap.Float64("supply", supply),
		zap.Float64("price", price),
		zap.Float64("marketCap", info.MarketCap))
	return info, nil
}
