package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"treasury_checker/internal/entity"
	"treasury_checker/internal/utils"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// JupiterClient defines the interface for the batched USD price provider.
type JupiterClient interface {
	// GetPrices resolves USD unit prices for a set of mints in as few
	// requests as the batch cap allows. Mints absent from the response are
	// absent from the returned map.
	GetPrices(ctx context.Context, mints []string) (map[string]float64, error)
}

// jupiterClientImpl is the implementation of JupiterClient.
type jupiterClientImpl struct {
	client    *fasthttp.Client
	baseURL   string
	batchSize int
	timeout   time.Duration
	logger    *zap.Logger
}

// NewJupiterClient creates a new instance of jupiterClientImpl.
func NewJupiterClient(baseURL string, batchSize int, timeout time.Duration, logger *zap.Logger) JupiterClient {
	return &jupiterClientImpl{
		client:    &fasthttp.Client{},
		baseURL:   strings.TrimRight(baseURL, "/"),
		batchSize: batchSize,
		timeout:   timeout,
		logger:    logger.Named("JupiterClient"),
	}
}

// GetPrices implements JupiterClient.
func (c *jupiterClientImpl) GetPrices(ctx context.Context, mints []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(mints))
	if len(mints) == 0 {
		return prices, nil
	}

	for _, batch := range utils.BatchStrings(mints, c.batchSize) {
		batchPrices, err := c.fetchBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		for mint, price := range batchPrices {
			prices[mint] = price
		}
	}

	c.logger.Debug("Resolved prices",
		zap.Int("requested", len(mints)),
		zap.Int("resolved", len(prices)))
	return prices, nil
}

func (c *jupiterClientImpl) fetchBatch(ctx context.Context, mints []string) (map[string]float64, error) {
	url := fmt.Sprintf("%s?ids=%s", c.baseURL, strings.Join(mints, ","))

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
		c.logger.Error("Failed to execute price request",
			zap.Int("batchSize", len(mints)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: price lookup: %v", entity.ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("Price request failed",
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", resp.Body()))
		return nil, fmt.Errorf("%w: price lookup returned status %d", entity.ErrUpstreamUnavailable, resp.StatusCode())
	}

	var parsed entity.JupiterPriceResp
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("%w: price lookup: %v", entity.ErrMalformedResponse, err)
	}
	if parsed.Data == nil {
		return nil, fmt.Errorf("%w: price lookup: missing data", entity.ErrMalformedResponse)
	}

	out := make(map[string]float64, len(parsed.Data))
	for mint, quote := range parsed.Data {
		out[mint] = quote.Price
	}
	return out, nil
}
