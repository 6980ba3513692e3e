package service

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"treasury_checker/internal/config"
	"treasury_checker/internal/entity"
	"treasury_checker/internal/repository"
	"treasury_checker/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RunState names the phase the current aggregation pass is in.
type RunState string

const (
	RunStatePending          RunState = "pending"
	RunStateFetchingBalances RunState = "fetching_balances"
	RunStateResolvingPrices  RunState = "resolving_prices"
	RunStateNormalizing      RunState = "normalizing"
	RunStateDone             RunState = "done"
	RunStateFailed           RunState = "failed"
)

// TreasuryService defines the interface for the treasury aggregation
// pipeline and its read surface.
type TreasuryService interface {
	// Refresh runs one full aggregation pass and stores the result. A
	// wallet failure degrades that wallet only; a price resolution failure
	// fails the pass without touching the stored snapshot.
	Refresh(ctx context.Context) (*entity.ConsolidatedData, error)
	// GetConsolidatedData returns the latest snapshot, refreshing on
	// demand when nothing is held. It never returns nil: with every
	// upstream down the zeroed shape comes back.
	GetConsolidatedData(ctx context.Context) *entity.ConsolidatedData
	// GetWalletByAddress returns one wallet's snapshot from the latest
	// pass.
	GetWalletByAddress(ctx context.Context, address string) (*entity.WalletSnapshot, bool)
	// GetSolPrice returns the current SOL/USD price.
	GetSolPrice(ctx context.Context) float64
	// State reports the phase of the aggregation pipeline.
	State() RunState
}

// treasuryServiceImpl is the implementation of TreasuryService.
type treasuryServiceImpl struct {
	wallets        []entity.WalletConfig
	balances       BalanceService
	prices         PriceService
	normalizer     *Normalizer
	snapshots      repository.SnapshotRepository
	hardAssets     map[string]struct{}
	lpLegMints     []string
	maxConcurrency int
	state          atomic.Value
	logger         *zap.Logger
}

// NewTreasuryService creates a new instance of treasuryServiceImpl.
func NewTreasuryService(
	cfg *config.Config,
	balances BalanceService,
	prices PriceService,
	normalizer *Normalizer,
	snapshots repository.SnapshotRepository,
	logger *zap.Logger,
) TreasuryService {
	s := &treasuryServiceImpl{
		wallets:        cfg.Wallets,
		balances:       balances,
		prices:         prices,
		normalizer:     normalizer,
		snapshots:      snapshots,
		hardAssets:     cfg.HardAssetSet(),
		lpLegMints:     lpLegMints(cfg.LpPools),
		maxConcurrency: cfg.Treasury.MaxConcurrentWallets,
		logger:         logger.Named("TreasuryService"),
	}
	s.state.Store(RunStatePending)
	return s
}

// State implements TreasuryService.
func (s *treasuryServiceImpl) State() RunState {
	return s.state.Load().(RunState)
}

func (s *treasuryServiceImpl) setState(st RunState) {
	s.state.Store(st)
	s.logger.Debug("Aggregation state changed", zap.String("state", string(st)))
}

type fetchResult struct {
	raw entity.RawWalletBalances
	err error
}

// Refresh implements TreasuryService.
func (s *treasuryServiceImpl) Refresh(ctx context.Context) (*entity.ConsolidatedData, error) {
	started := time.Now()
	s.setState(RunStateFetchingBalances)

	results := make([]fetchResult, len(s.wallets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)
	for i, wallet := range s.wallets {
		g.Go(func() error {
			raw, err := s.balances.FetchWalletBalances(gctx, wallet)
			if err != nil {
				// Degrade this wallet only; the pass continues.
				s.logger.Warn("Wallet fetch failed",
					zap.String("wallet", wallet.Name),
					zap.String("address", wallet.Address),
					zap.Error(err))
				metrics.WalletFetchFailures.WithLabelValues(wallet.Name).Inc()
				metrics.UpstreamErrors.WithLabelValues(providerLabel(wallet.Blockchain)).Inc()
			}
			results[i] = fetchResult{raw: raw, err: err}
			return nil
		})
	}
	_ = g.Wait()

	s.setState(RunStateResolvingPrices)
	union := s.mintUnion(results)
	prices, err := s.prices.ResolvePrices(ctx, union)
	if err != nil {
		s.setState(RunStateFailed)
		metrics.AggregationRuns.WithLabelValues("failed").Inc()
		s.logger.Error("Price resolution failed, keeping previous snapshot", zap.Error(err))
		return nil, err
	}

	solPrice := prices[entity.WrappedSolMint]
	if solPrice == 0 {
		solPrice = s.prices.GetSolPrice(ctx)
	}

	s.setState(RunStateNormalizing)
	snapshots := make([]entity.WalletSnapshot, len(s.wallets))
	for i, wallet := range s.wallets {
		if results[i].err != nil {
			snapshots[i] = emptyWalletSnapshot(wallet)
			continue
		}
		nativePrice := solPrice
		if wallet.Blockchain != entity.BlockchainSolana {
			nativePrice = s.prices.GetNativePrice(ctx, wallet.Blockchain)
		}
		snapshots[i] = s.normalizer.Normalize(wallet, results[i].raw, prices, nativePrice)
	}

	data := s.aggregate(snapshots, solPrice, time.Now().UTC())
	s.snapshots.Store(data)
	s.setState(RunStateDone)

	metrics.AggregationRuns.WithLabelValues("success").Inc()
	metrics.AggregationDuration.Observe(time.Since(started).Seconds())
	s.logger.Info("Aggregation pass complete",
		zap.Int("wallets", len(snapshots)),
		zap.Float64("totalUsd", data.Treasury.TotalMarketCap),
		zap.Duration("took", time.Since(started)))
	return data, nil
}

// mintUnion collects the token mints of every successfully fetched wallet,
// plus the wrapped-SOL mint so one batch also covers the native coin, plus
// the leg mints of the configured LP pools so LP positions can be valued
// from legs the provider actually quotes.
func (s *treasuryServiceImpl) mintUnion(results []fetchResult) []string {
	union := []string{entity.WrappedSolMint}
	union = append(union, s.lpLegMints...)
	for _, res := range results {
		if res.err != nil {
			continue
		}
		for _, tok := range res.raw.Tokens {
			union = append(union, tok.Mint)
		}
	}
	return union
}

func lpLegMints(pools []config.LpPoolConfig) []string {
	mints := make([]string, 0, 2*len(pools))
	for _, p := range pools {
		mints = append(mints, p.Token1Mint, p.Token2Mint)
	}
	return mints
}

func (s *treasuryServiceImpl) aggregate(snapshots []entity.WalletSnapshot, solPrice float64, now time.Time) *entity.ConsolidatedData {
	var total, hard float64
	for _, snap := range snapshots {
		total += snap.TotalUsdValue
		for _, bal := range snap.Balances {
			if bal.IsLpToken {
				continue
			}
			if _, ok := s.hardAssets[strings.ToUpper(bal.TokenSymbol)]; ok {
				hard += bal.UsdValue
			}
		}
	}

	return &entity.ConsolidatedData{
		Treasury: entity.TreasuryMetrics{
			TotalMarketCap: total,
			VolatileAssets: total - hard,
			HardAssets:     hard,
			LastUpdated:    now,
		},
		Wallets:  snapshots,
		SolPrice: solPrice,
	}
}

// GetConsolidatedData implements TreasuryService.
func (s *treasuryServiceImpl) GetConsolidatedData(ctx context.Context) *entity.ConsolidatedData {
	if data, stale := s.snapshots.Latest(); data != nil {
		if !stale {
			return data
		}
		copied := *data
		copied.Stale = true
		return &copied
	}

	data, err := s.Refresh(ctx)
	if err != nil {
		return entity.EmptyConsolidatedData(time.Now().UTC())
	}
	return data
}

// GetWalletByAddress implements TreasuryService.
func (s *treasuryServiceImpl) GetWalletByAddress(ctx context.Context, address string) (*entity.WalletSnapshot, bool) {
	data := s.GetConsolidatedData(ctx)
	for i := range data.Wallets {
		if strings.EqualFold(data.Wallets[i].Address, address) {
			return &data.Wallets[i], true
		}
	}
	return nil, false
}

// GetSolPrice implements TreasuryService.
func (s *treasuryServiceImpl) GetSolPrice(ctx context.Context) float64 {
	return s.prices.GetSolPrice(ctx)
}

func emptyWalletSnapshot(wallet entity.WalletConfig) entity.WalletSnapshot {
	return entity.WalletSnapshot{
		WalletID:   WalletID(wallet),
		Name:       wallet.Name,
		Address:    wallet.Address,
		Blockchain: wallet.Blockchain,
		Balances:   []entity.TokenBalance{},
	}
}

func providerLabel(chain entity.Blockchain) string {
	if chain == entity.BlockchainEthereum {
		return "ethereum_rpc"
	}
	return "solana_rpc"
}
