package service

import (
	"context"
	"strings"
	"time"

	"treasury_checker/internal/client"
	"treasury_checker/internal/config"
	"treasury_checker/internal/entity"
	"treasury_checker/internal/utils"
	"treasury_checker/pkg/metrics"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// PriceService defines the interface for resolving USD prices for mints.
type PriceService interface {
	// ResolvePrices returns USD unit prices for the given mints. The input
	// is deduplicated, so one upstream round-trip covers the whole set
	// regardless of how many wallets contributed to it. Mints the provider
	// does not quote are absent from the result.
	ResolvePrices(ctx context.Context, mints []string) (map[string]float64, error)
	// GetSolPrice returns the SOL/USD price, degrading from the batched
	// provider to the spot provider to the configured fallback. It never
	// fails.
	GetSolPrice(ctx context.Context) float64
	// GetNativePrice returns the USD price of a chain's native coin, or 0
	// when it cannot be resolved.
	GetNativePrice(ctx context.Context, chain entity.Blockchain) float64
}

// priceServiceImpl is the implementation of PriceService.
type priceServiceImpl struct {
	jupiter       client.JupiterClient
	coinGecko     client.CoinGeckoClient
	cache         *gocache.Cache
	limiter       *rate.Limiter
	fallbackPrice float64
	logger        *zap.Logger
}

// NewPriceService creates a new instance of priceServiceImpl.
func NewPriceService(
	jupiter client.JupiterClient,
	coinGecko client.CoinGeckoClient,
	cfg config.PriceServiceConfig,
	fallbackSolPrice float64,
	logger *zap.Logger,
) PriceService {
	ttl := time.Duration(cfg.CacheTTLMinutes) * time.Minute
	return &priceServiceImpl{
		jupiter:       jupiter,
		coinGecko:     coinGecko,
		cache:         gocache.New(ttl, 2*ttl),
		limiter:       rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.BurstLimit),
		fallbackPrice: fallbackSolPrice,
		logger:        logger.Named("PriceService"),
	}
}

// ResolvePrices implements PriceService.
func (s *priceServiceImpl) ResolvePrices(ctx context.Context, mints []string) (map[string]float64, error) {
	deduped := utils.DedupSorted(mints)
	if len(deduped) == 0 {
		return map[string]float64{}, nil
	}

	// The sorted union is a stable cache key for the whole refresh cycle.
	cacheKey := strings.Join(deduped, ",")
	if cached, found := s.cache.Get(cacheKey); found {
		s.logger.Debug("Price cache hit", zap.Int("mints", len(deduped)))
		return cached.(map[string]float64), nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	prices, err := s.jupiter.GetPrices(ctx, deduped)
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues("jupiter").Inc()
		return nil, err
	}

	s.cache.Set(cacheKey, prices, gocache.DefaultExpiration)
	return prices, nil
}

// GetSolPrice implements PriceService.
func (s *priceServiceImpl) GetSolPrice(ctx context.Context) float64 {
	prices, err := s.ResolvePrices(ctx, []string{entity.WrappedSolMint})
	if err == nil {
		if price, ok := prices[entity.WrappedSolMint]; ok && price > 0 {
			return price
		}
	}

	price, err := s.spotPrice(ctx, "solana")
	if err == nil && price > 0 {
		return price
	}
	if err != nil {
		s.logger.Warn("Spot price provider failed, using fallback price",
			zap.Float64("fallback", s.fallbackPrice),
			zap.Error(err))
	}
	return s.fallbackPrice
}

// GetNativePrice implements PriceService.
func (s *priceServiceImpl) GetNativePrice(ctx context.Context, chain entity.Blockchain) float64 {
	switch chain {
	case entity.BlockchainSolana:
		return s.GetSolPrice(ctx)
	case entity.BlockchainEthereum:
		price, err := s.spotPrice(ctx, "ethereum")
		if err != nil {
			s.logger.Warn("Failed to resolve native coin price",
				zap.String("chain", string(chain)),
				zap.Error(err))
			return 0
		}
		return price
	default:
		return 0
	}
}

func (s *priceServiceImpl) spotPrice(ctx context.Context, coinID string) (float64, error) {
	cacheKey := "spot:" + coinID
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.(float64), nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	price, err := s.coinGecko.GetSpotPrice(ctx, coinID)
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues("coingecko").Inc()
		return 0, err
	}

	s.cache.Set(cacheKey, price, gocache.DefaultExpiration)
	return price, nil
}
