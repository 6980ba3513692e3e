package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"treasury_checker/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	auraMint = "3YmNY3Giya7AKNNQbqo35HPuqTrrcgT9KADQBM2hDWNe"
)

func TestGetPrices(t *testing.T) {
	var gotIDs string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIDs = r.URL.Query().Get("ids")
		w.Write([]byte(`{"data":{
			"` + usdcMint + `":{"price":0.9998},
			"` + auraMint + `":{"price":0.0123}
		}}`))
	}))
	defer srv.Close()

	c := NewJupiterClient(srv.URL, 100, time.Second, zap.NewNop())
	prices, err := c.GetPrices(context.Background(), []string{usdcMint, auraMint})
	require.NoError(t, err)

	assert.Equal(t, usdcMint+","+auraMint, gotIDs)
	assert.InDelta(t, 0.9998, prices[usdcMint], 1e-9)
	assert.InDelta(t, 0.0123, prices[auraMint], 1e-9)
}

func TestGetPricesEmptyInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected for an empty mint set")
	}))
	defer srv.Close()

	c := NewJupiterClient(srv.URL, 100, time.Second, zap.NewNop())
	prices, err := c.GetPrices(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestGetPricesRespectsBatchCap(t *testing.T) {
	var batches []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := strings.Split(r.URL.Query().Get("ids"), ",")
		batches = append(batches, len(ids))
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	c := NewJupiterClient(srv.URL, 2, time.Second, zap.NewNop())
	_, err := c.GetPrices(context.Background(), []string{"a1", "b2", "c3", "d4", "e5"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, batches)
}

func TestGetPricesPartialCoverage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data":{"` + usdcMint + `":{"price":1.0}}}`))
	}))
	defer srv.Close()

	c := NewJupiterClient(srv.URL, 100, time.Second, zap.NewNop())
	prices, err := c.GetPrices(context.Background(), []string{usdcMint, auraMint})
	require.NoError(t, err)

	assert.Len(t, prices, 1)
	_, present := prices[auraMint]
	assert.False(t, present)
}

func TestGetPricesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewJupiterClient(srv.URL, 100, time.Second, zap.NewNop())
	_, err := c.GetPrices(context.Background(), []string{usdcMint})
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrUpstreamUnavailable))
}

func TestGetPricesMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"unexpected":true}`))
	}))
	defer srv.Close()

	c := NewJupiterClient(srv.URL, 100, time.Second, zap.NewNop())
	_, err := c.GetPrices(context.Background(), []string{usdcMint})
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrMalformedResponse))
}

func TestGetSpotPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "solana", r.URL.Query().Get("ids"))
		w.Write([]byte(`{"solana":{"usd":151.42}}`))
	}))
	defer srv.Close()

	c := NewCoinGeckoClient(srv.URL, time.Second, zap.NewNop())
	price, err := c.GetSpotPrice(context.Background(), "solana")
	require.NoError(t, err)
	assert.InDelta(t, 151.42, price, 1e-6)
}

func TestGetSpotPriceMissingCoin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewCoinGeckoClient(srv.URL, time.Second, zap.NewNop())
	_, err := c.GetSpotPrice(context.Background(), "solana")
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrMalformedResponse))
}
