package service

import (
	"context"
	"errors"
	"testing"

	"treasury_checker/internal/config"
	"treasury_checker/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSolanaClient struct {
	lamports    uint64
	accounts    []entity.RawTokenAccount
	supply      float64
	balanceErr  error
	accountsErr error
	supplyErr   error
}

func (f *fakeSolanaClient) GetBalance(context.Context, string) (uint64, error) {
	return f.lamports, f.balanceErr
}

func (f *fakeSolanaClient) GetTokenAccounts(context.Context, string) ([]entity.RawTokenAccount, error) {
	return f.accounts, f.accountsErr
}

func (f *fakeSolanaClient) GetTokenSupply(context.Context, string) (float64, error) {
	return f.supply, f.supplyErr
}

type fakeEthereumClient struct {
	balance float64
	err     error
}

func (f *fakeEthereumClient) GetNativeBalance(context.Context, string) (float64, error) {
	return f.balance, f.err
}

func knownTokenTable() []config.KnownToken {
	return []config.KnownToken{
		{Mint: usdcMint, Symbol: "USDC", Name: "USD Coin", Decimals: 6},
	}
}

func TestFetchWalletBalancesSolana(t *testing.T) {
	solana := &fakeSolanaClient{
		lamports: 2_500_000_000,
		accounts: []entity.RawTokenAccount{
			{Mint: usdcMint, UiAmount: 1000, Decimals: 6},
			{Mint: unknownMint, UiAmount: 42, Decimals: 9},
			{Mint: projectMint, UiAmount: 0, Decimals: 9},
		},
	}
	svc := NewBalanceService(solana, &fakeEthereumClient{}, knownTokenTable(), zap.NewNop())

	raw, err := svc.FetchWalletBalances(context.Background(), solanaWallet())
	require.NoError(t, err)

	assert.InDelta(t, 2.5, raw.NativeUiAmount, 1e-9)
	require.Len(t, raw.Tokens, 2)

	// Known-token metadata is merged in; zero-amount accounts are dropped.
	assert.Equal(t, "USDC", raw.Tokens[0].Symbol)
	assert.Equal(t, "USD Coin", raw.Tokens[0].Name)
	assert.Empty(t, raw.Tokens[1].Symbol)
}

func TestFetchWalletBalancesSolanaBalanceFailure(t *testing.T) {
	solana := &fakeSolanaClient{balanceErr: entity.ErrUpstreamUnavailable}
	svc := NewBalanceService(solana, &fakeEthereumClient{}, nil, zap.NewNop())

	_, err := svc.FetchWalletBalances(context.Background(), solanaWallet())
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrUpstreamUnavailable))
}

func TestFetchWalletBalancesSolanaTokenAccountsFailure(t *testing.T) {
	solana := &fakeSolanaClient{accountsErr: entity.ErrMalformedResponse}
	svc := NewBalanceService(solana, &fakeEthereumClient{}, nil, zap.NewNop())

	_, err := svc.FetchWalletBalances(context.Background(), solanaWallet())
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrMalformedResponse))
}

func TestFetchWalletBalancesEthereum(t *testing.T) {
	svc := NewBalanceService(&fakeSolanaClient{}, &fakeEthereumClient{balance: 3.25}, nil, zap.NewNop())

	wallet := entity.WalletConfig{
		Name:       "Eth Reserve",
		Address:    "0x2d77B594B9BBaED03221F7c63Af8C4307432daF1",
		Blockchain: entity.BlockchainEthereum,
	}
	raw, err := svc.FetchWalletBalances(context.Background(), wallet)
	require.NoError(t, err)
	assert.InDelta(t, 3.25, raw.NativeUiAmount, 1e-9)
	assert.Empty(t, raw.Tokens)
}

func TestFetchWalletBalancesUnsupportedChain(t *testing.T) {
	svc := NewBalanceService(&fakeSolanaClient{}, &fakeEthereumClient{}, nil, zap.NewNop())

	wallet := entity.WalletConfig{Name: "Weird", Blockchain: entity.Blockchain("Dogecoin")}
	_, err := svc.FetchWalletBalances(context.Background(), wallet)
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrInvalidConfig))
}
