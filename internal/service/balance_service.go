package service

import (
	"context"
	"fmt"

	"treasury_checker/internal/client"
	"treasury_checker/internal/config"
	"treasury_checker/internal/entity"

	"go.uber.org/zap"
)

const lamportsPerSol = 1e9

// BalanceService defines the interface for fetching raw, unpriced balances
// for a single wallet.
type BalanceService interface {
	// FetchWalletBalances returns the native amount and all token holdings
	// for one wallet. The returned balances are unpriced.
	FetchWalletBalances(ctx context.Context, wallet entity.WalletConfig) (entity.RawWalletBalances, error)
}

// balanceServiceImpl is the implementation of BalanceService.
type balanceServiceImpl struct {
	solana      client.SolanaClient
	ethereum    client.EthereumClient
	knownTokens map[string]entity.TokenInfo
	logger      *zap.Logger
}

// NewBalanceService creates a new instance of balanceServiceImpl.
func NewBalanceService(
	solana client.SolanaClient,
	ethereum client.EthereumClient,
	knownTokens []config.KnownToken,
	logger *zap.Logger,
) BalanceService {
	known := make(map[string]entity.TokenInfo, len(knownTokens))
	for _, t := range knownTokens {
		known[t.Mint] = entity.TokenInfo{Symbol: t.Symbol, Name: t.Name, Decimals: t.Decimals}
	}
	return &balanceServiceImpl{
		solana:      solana,
		ethereum:    ethereum,
		knownTokens: known,
		logger:      logger.Named("BalanceService"),
	}
}

// FetchWalletBalances implements BalanceService.
func (s *balanceServiceImpl) FetchWalletBalances(ctx context.Context, wallet entity.WalletConfig) (entity.RawWalletBalances, error) {
	switch wallet.Blockchain {
	case entity.BlockchainSolana:
		return s.fetchSolana(ctx, wallet)
	case entity.BlockchainEthereum:
		return s.fetchEthereum(ctx, wallet)
	default:
		return entity.RawWalletBalances{}, fmt.Errorf("%w: unsupported blockchain %q for wallet %s",
			entity.ErrInvalidConfig, wallet.Blockchain, wallet.Name)
	}
}

func (s *balanceServiceImpl) fetchSolana(ctx context.Context, wallet entity.WalletConfig) (entity.RawWalletBalances, error) {
	lamports, err := s.solana.GetBalance(ctx, wallet.Address)
	if err != nil {
		return entity.RawWalletBalances{}, fmt.Errorf("native balance for %s: %w", wallet.Name, err)
	}

	accounts, err := s.solana.GetTokenAccounts(ctx, wallet.Address)
	if err != nil {
		return entity.RawWalletBalances{}, fmt.Errorf("token accounts for %s: %w", wallet.Name, err)
	}

	tokens := make([]entity.RawTokenAccount, 0, len(accounts))
	for _, acc := range accounts {
		// Empty accounts stay out of the snapshot entirely.
		if acc.UiAmount == 0 {
			continue
		}
		if info, ok := s.knownTokens[acc.Mint]; ok {
			acc.Symbol = info.Symbol
			acc.Name = info.Name
		}
		tokens = append(tokens, acc)
	}

	s.logger.Debug("Fetched wallet balances",
		zap.String("wallet", wallet.Name),
		zap.Int("tokenCount", len(tokens)))
	return entity.RawWalletBalances{
		NativeUiAmount: float64(lamports) / lamportsPerSol,
		Tokens:         tokens,
	}, nil
}

func (s *balanceServiceImpl) fetchEthereum(ctx context.Context, wallet entity.WalletConfig) (entity.RawWalletBalances, error) {
	eth, err := s.ethereum.GetNativeBalance(ctx, wallet.Address)
	if err != nil {
		return entity.RawWalletBalances{}, fmt.Errorf("native balance for %s: %w", wallet.Name, err)
	}
	return entity.RawWalletBalances{
		NativeUiAmount: eth,
		Tokens:         []entity.RawTokenAccount{},
	}, nil
}
