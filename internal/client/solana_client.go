package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"treasury_checker/internal/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// splTokenProgramID is the SPL token program used to enumerate token accounts.
const splTokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

// SolanaClient defines the interface for the Solana JSON-RPC provider.
type SolanaClient interface {
	// GetBalance returns the native balance in lamports for a wallet.
	GetBalance(ctx context.Context, walletAddress string) (uint64, error)
	// GetTokenAccounts returns all fungible token holdings for a wallet.
	GetTokenAccounts(ctx context.Context, walletAddress string) ([]entity.RawTokenAccount, error)
	// GetTokenSupply returns the ui total supply of a mint.
	GetTokenSupply(ctx context.Context, mint string) (float64, error)
}

// solanaClientImpl is the implementation of SolanaClient.
type solanaClientImpl struct {
	client   *fasthttp.Client
	endpoint string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewSolanaClient creates a new instance of solanaClientImpl.
func NewSolanaClient(endpoint string, timeout time.Duration, logger *zap.Logger) SolanaClient {
	return &solanaClientImpl{
		client:   &fasthttp.Client{},
		endpoint: strings.TrimRight(endpoint, "/"),
		timeout:  timeout,
		logger:   logger.Named("SolanaClient"),
	}
}

type rpcRequest struct {
	JsonRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// call issues one JSON-RPC request and returns the raw body. Non-2xx,
// transport failures and timeouts are wrapped as ErrUpstreamUnavailable.
func (c *solanaClientImpl) call(ctx context.Context, method string, params []any) ([]byte, error) {
	body, err := json.Marshal(rpcRequest{JsonRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal RPC request %s: %w", method, err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(c.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline, ok := ctx.Deadline()
	if ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		c.logger.Error("Failed to execute Solana RPC request",
			zap.String("method", method),
			zap.String("endpoint", c.endpoint),
			zap.Error(err))
		return nil, fmt.Errorf("%w: solana rpc %s: %v", entity.ErrUpstreamUnavailable, method, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("Solana RPC request failed",
			zap.String("method", method),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", resp.Body()))
		return nil, fmt.Errorf("%w: solana rpc %s returned status %d", entity.ErrUpstreamUnavailable, method, resp.StatusCode())
	}

	// Body is reused after release; copy it out.
	out := make([]byte, len(resp.Body()))
	copy(out, resp.Body())
	return out, nil
}

// GetBalance implements SolanaClient.
func (c *solanaClientImpl) GetBalance(ctx context.Context, walletAddress string) (uint64, error) {
	raw, err := c.call(ctx, "getBalance", []any{walletAddress})
	if err != nil {
		return 0, err
	}

	var parsed entity.SolanaBalanceResp
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return 0, fmt.Errorf("%w: getBalance for %s: %v", entity.ErrMalformedResponse, walletAddress, err)
	}
	if parsed.Error != nil {
		return 0, fmt.Errorf("%w: getBalance for %s: rpc error %d: %s",
			entity.ErrUpstreamUnavailable, walletAddress, parsed.Error.Code, parsed.Error.Message)
	}
	if parsed.Result == nil {
		return 0, fmt.Errorf("%w: getBalance for %s: missing result", entity.ErrMalformedResponse, walletAddress)
	}

	c.logger.Debug("Fetched native balance",
		zap.String("wallet", walletAddress),
		zap.Uint64("lamports", parsed.Result.Value))
	return parsed.Result.Value, nil
}

// GetTokenAccounts implements SolanaClient.
func (c *solanaClientImpl) GetTokenAccounts(ctx context.Context, walletAddress string) ([]entity.RawTokenAccount, error) {
	params := []any{
		walletAddress,
		map[string]string{"programId": splTokenProgramID},
		map[string]string{"encoding": "jsonParsed"},
	}
	raw, err := c.call(ctx, "getTokenAccountsByOwner", params)
	if err != nil {
		return nil, err
	}

	var parsed entity.SolanaTokenAccountsResp
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: getTokenAccountsByOwner for %s: %v", entity.ErrMalformedResponse, walletAddress, err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("%w: getTokenAccountsByOwner for %s: rpc error %d: %s",
			entity.ErrUpstreamUnavailable, walletAddress, parsed.Error.Code, parsed.Error.Message)
	}
	if parsed.Result == nil {
		return nil, fmt.Errorf("%w: getTokenAccountsByOwner for %s: missing result", entity.ErrMalformedResponse, walletAddress)
	}

	accounts := make([]entity.RawTokenAccount, 0, len(parsed.Result.Value))
	for _, v := range parsed.Result.Value {
		info := v.Account.Data.Parsed.Info
		if info.Mint == "" {
			continue
		}
		accounts = append(accounts, entity.RawTokenAccount{
			Mint:     info.Mint,
			Decimals: info.TokenAmount.Decimals,
			UiAmount: info.TokenAmount.UiAmount,
		})
	}

	c.logger.Debug("Fetched token accounts",
		zap.String("wallet", walletAddress),
		zap.Int("count", len(accounts)))
	return accounts, nil
}

// GetTokenSupply implements SolanaClient.
func (c *solanaClientImpl) GetTokenSupply(ctx context.Context, mint string) (float64, error) {
	raw, err := c.call(ctx, "getTokenSupply", []any{mint})
	if err != nil {
		return 0, err
	}

	var parsed entity.SolanaTokenSupplyResp
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return 0, fmt.Errorf("%w: getTokenSupply for %s: %v", entity.ErrMalformedResponse, mint, err)
	}
	if parsed.Error != nil {
		return 0, fmt.Errorf("%w: getTokenSupply for %s: rpc error %d: %s",
			entity.ErrUpstreamUnavailable, mint, parsed.Error.Code, parsed.Error.Message)
	}
	if parsed.Result == nil {
		return 0, fmt.Errorf("%w: getTokenSupply for %s: missing result", entity.ErrMalformedResponse, mint)
	}
	return parsed.Result.Value.UiAmount, nil
}
