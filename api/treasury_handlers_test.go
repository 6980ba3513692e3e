package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"treasury_checker/internal/entity"
	"treasury_checker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubTreasuryService struct {
	data       *entity.ConsolidatedData
	refreshErr error
}

func (s *stubTreasuryService) Refresh(context.Context) (*entity.ConsolidatedData, error) {
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	return s.data, nil
}

func (s *stubTreasuryService) GetConsolidatedData(context.Context) *entity.ConsolidatedData {
	if s.data != nil {
		return s.data
	}
	return entity.EmptyConsolidatedData(time.Now().UTC())
}

func (s *stubTreasuryService) GetWalletByAddress(_ context.Context, address string) (*entity.WalletSnapshot, bool) {
	if s.data == nil {
		return nil, false
	}
	for i := range s.data.Wallets {
		if s.data.Wallets[i].Address == address {
			return &s.data.Wallets[i], true
		}
	}
	return nil, false
}

func (s *stubTreasuryService) GetSolPrice(context.Context) float64 { return 150.5 }

func (s *stubTreasuryService) State() service.RunState { return service.RunStateDone }

type stubMarketCapService struct {
	info *entity.MarketCapInfo
	err  error
}

func (s *stubMarketCapService) GetMarketCap(context.Context) (*entity.MarketCapInfo, error) {
	return s.info, s.err
}

func newTestRouter(treasury service.TreasuryService, marketCap service.MarketCapService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterTreasuryRoutes(router, treasury, marketCap, zap.NewNop())
	return router
}

func sampleData() *entity.ConsolidatedData {
	return &entity.ConsolidatedData{
		Treasury: entity.TreasuryMetrics{
			TotalMarketCap: 2500,
			VolatileAssets: 1500,
			HardAssets:     1000,
			LastUpdated:    time.Now().UTC(),
		},
		Wallets: []entity.WalletSnapshot{
			{
				WalletID:      "operations",
				Name:          "Operations",
				Address:       "fa1ra81T7g5DzSn7XT6z36zNqupHpG1Eh7omB2F6GTh",
				Blockchain:    entity.BlockchainSolana,
				Balances:      []entity.TokenBalance{},
				TotalUsdValue: 2500,
			},
		},
		SolPrice: 150.5,
	}
}

func TestGetTreasuryEndpoint(t *testing.T) {
	router := newTestRouter(&stubTreasuryService{data: sampleData()}, &stubMarketCapService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/treasury", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	treasury, ok := body["treasury"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 2500.0, treasury["totalMarketCap"].(float64), 1e-6)
	assert.InDelta(t, 1000.0, treasury["hardAssets"].(float64), 1e-6)
	assert.Contains(t, body, "wallets")
	assert.Contains(t, body, "solPrice")
}

func TestGetTreasuryEndpointAlwaysOK(t *testing.T) {
	// Even with no data at all, the endpoint answers 200 with the zeroed
	// shape.
	router := newTestRouter(&stubTreasuryService{}, &stubMarketCapService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/treasury", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	treasury := body["treasury"].(map[string]any)
	assert.Zero(t, treasury["totalMarketCap"].(float64))
	wallets, ok := body["wallets"].([]any)
	require.True(t, ok)
	assert.Empty(t, wallets)
}

func TestGetWalletEndpoint(t *testing.T) {
	router := newTestRouter(&stubTreasuryService{data: sampleData()}, &stubMarketCapService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/treasury/wallets/fa1ra81T7g5DzSn7XT6z36zNqupHpG1Eh7omB2F6GTh", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var snap entity.WalletSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "operations", snap.WalletID)
}

func TestGetWalletEndpointUnknownAddress(t *testing.T) {
	router := newTestRouter(&stubTreasuryService{data: sampleData()}, &stubMarketCapService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/treasury/wallets/BRRGD28WnhKvdaHYMZRDc9dGn5LWa7YM5xzww2NRyN5L", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRefreshEndpointFailure(t *testing.T) {
	router := newTestRouter(&stubTreasuryService{refreshErr: entity.ErrUpstreamUnavailable}, &stubMarketCapService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/treasury/refresh", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestSolPriceEndpoint(t *testing.T) {
	router := newTestRouter(&stubTreasuryService{}, &stubMarketCapService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sol-price", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]float64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.InDelta(t, 150.5, body["solPrice"], 1e-6)
}

func TestMarketCapEndpoint(t *testing.T) {
	info := &entity.MarketCapInfo{MarketCap: 12300000, Supply: 1000000000, PriceUsd: 0.0123, Source: "onchain"}
	router := newTestRouter(&stubTreasuryService{}, &stubMarketCapService{info: info})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/market-cap", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got entity.MarketCapInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.InDelta(t, 12300000.0, got.MarketCap, 1e-6)
}

func TestMarketCapEndpointUnavailable(t *testing.T) {
	router := newTestRouter(&stubTreasuryService{}, &stubMarketCapService{err: entity.ErrInvalidConfig})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/market-cap", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(&stubTreasuryService{}, &stubMarketCapService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "done", body["state"])
}
