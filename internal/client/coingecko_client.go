package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"treasury_checker/internal/entity"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// CoinGeckoClient defines the interface for the spot-price fallback provider.
type CoinGeckoClient interface {
	// GetSpotPrice returns the current USD spot price for a coin id, such
	// as "solana" or "ethereum".
	GetSpotPrice(ctx context.Context, coinID string) (float64, error)
}

// coinGeckoClientImpl is the implementation of CoinGeckoClient.
type coinGeckoClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewCoinGeckoClient creates a new instance of coinGeckoClientImpl.
func NewCoinGeckoClient(baseURL string, timeout time.Duration, logger *zap.Logger) CoinGeckoClient {
	return &coinGeckoClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.Named("CoinGeckoClient"),
	}
}

// GetSpotPrice implements CoinGeckoClient.
func (c *coinGeckoClientImpl) GetSpotPrice(ctx context.Context, coinID string) (float64, error) {
	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.baseURL, coinID)

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	var err error
	deadline, ok := ctx.Deadline()
	if ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		c.logger.Error("Failed to execute spot price request", zap.Error(err))
		return 0, fmt.Errorf("%w: spot price lookup: %v", entity.ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("Spot price request failed",
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", resp.Body()))
		return 0, fmt.Errorf("%w: spot price lookup returned status %d", entity.ErrUpstreamUnavailable, resp.StatusCode())
	}

	var parsed entity.CoinGeckoSimplePriceResp
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return 0, fmt.Errorf("%w: spot price lookup: %v", entity.ErrMalformedResponse, err)
	}
	quote, ok := parsed[coinID]
	if !ok {
		return 0, fmt.Errorf("%w: spot price lookup: missing %s entry", entity.ErrMalformedResponse, coinID)
	}
	return quote.Usd, nil
}
