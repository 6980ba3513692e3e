package client

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"treasury_checker/internal/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// weiPerEth converts a wei balance to whole ETH.
var weiPerEth = new(big.Float).SetFloat64(1e18)

// EthereumClient defines the interface for the Ethereum balance provider.
type EthereumClient interface {
	// GetNativeBalance returns the ETH balance of a wallet in whole units.
	GetNativeBalance(ctx context.Context, walletAddress string) (float64, error)
}

// ethereumClientImpl is the implementation of EthereumClient.
type ethereumClientImpl struct {
	endpoint       string
	connectTimeout time.Duration
	callTimeout    time.Duration
	logger         *zap.Logger
}

// NewEthereumClient creates a new instance of ethereumClientImpl. The RPC
// connection is dialed lazily so a dead endpoint degrades a single wallet
// instead of failing startup.
func NewEthereumClient(endpoint string, connectTimeout, callTimeout time.Duration, logger *zap.Logger) EthereumClient {
	return &ethereumClientImpl{
		endpoint:       endpoint,
		connectTimeout: connectTimeout,
		callTimeout:    callTimeout,
		logger:         logger.Named("EthereumClient"),
	}
}

// GetNativeBalance implements EthereumClient.
func (c *ethereumClientImpl) GetNativeBalance(ctx context.Context, walletAddress string) (float64, error) {
	if !common.IsHexAddress(walletAddress) {
		return 0, fmt.Errorf("%w: invalid ethereum address %q", entity.ErrInvalidConfig, walletAddress)
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.connectTimeout)
	ethClient, err := ethclient.DialContext(dialCtx, c.endpoint)
	cancel()
	if err != nil {
		c.logger.Error("Failed to connect to Ethereum RPC",
			zap.String("endpoint", c.endpoint),
			zap.Error(err))
		return 0, fmt.Errorf("%w: ethereum rpc dial: %v", entity.ErrUpstreamUnavailable, err)
	}
	defer ethClient.Close()

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	wei, err := ethClient.BalanceAt(callCtx, common.HexToAddress(walletAddress), nil)
	if err != nil {
		c.logger.Error("Failed to fetch Ethereum balance",
			zap.String("wallet", walletAddress),
			zap.Error(err))
		return 0, fmt.Errorf("%w: eth_getBalance for %s: %v", entity.ErrUpstreamUnavailable, walletAddress, err)
	}

	eth, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), weiPerEth).Float64()
	c.logger.Debug("Fetched native balance",
		zap.String("wallet", walletAddress),
		zap.Float64("eth", eth))
	return eth, nil
}
