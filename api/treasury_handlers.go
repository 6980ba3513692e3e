package api

import (
	"net/http"

	"treasury_checker/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TreasuryHandler handles HTTP requests for the treasury read surface.
type TreasuryHandler struct {
	treasury  service.TreasuryService
	marketCap service.MarketCapService
	logger    *zap.Logger
}

// NewTreasuryHandler creates a new instance of TreasuryHandler.
func NewTreasuryHandler(treasury service.TreasuryService, marketCap service.MarketCapService, logger *zap.Logger) *TreasuryHandler {
	return &TreasuryHandler{
		treasury:  treasury,
		marketCap: marketCap,
		logger:    logger.Named("TreasuryHandler"),
	}
}

// GetTreasuryHandler serves the consolidated snapshot. The response is
// always 200 with a structurally complete body: live data, a stale
// snapshot, or the zeroed shape when nothing is available.
func (h *TreasuryHandler) GetTreasuryHandler(c *gin.Context) {
	data := h.treasury.GetConsolidatedData(c.Request.Context())
	c.JSON(http.StatusOK, data)
}

// GetWalletsHandler serves the per-wallet snapshots from the latest pass.
func (h *TreasuryHandler) GetWalletsHandler(c *gin.Context) {
	data := h.treasury.GetConsolidatedData(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"wallets": data.Wallets})
}

// GetWalletHandler serves a single wallet's snapshot by address.
func (h *TreasuryHandler) GetWalletHandler(c *gin.Context) {
	address := c.Param("address")
	snapshot, found := h.treasury.GetWalletByAddress(c.Request.Context(), address)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "wallet is not monitored", "address": address})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// RefreshHandler triggers an aggregation pass out of schedule.
func (h *TreasuryHandler) RefreshHandler(c *gin.Context) {
	data, err := h.treasury.Refresh(c.Request.Context())
	if err != nil {
		h.logger.Error("On-demand refresh failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "refresh failed, previous snapshot kept"})
		return
	}
	c.JSON(http.StatusOK, data)
}

// GetSolPriceHandler serves the current SOL/USD price.
func (h *TreasuryHandler) GetSolPriceHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"solPrice": h.treasury.GetSolPrice(c.Request.Context())})
}

// GetMarketCapHandler serves the project token's on-chain market cap.
func (h *TreasuryHandler) GetMarketCapHandler(c *gin.Context) {
	info, err := h.marketCap.GetMarketCap(c.Request.Context())
	if err != nil {
		h.logger.Error("Market cap lookup failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "market cap unavailable"})
		return
	}
	c.JSON(http.StatusOK, info)
}

// HealthHandler reports liveness and the aggregation pipeline phase.
func (h *TreasuryHandler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"state":  string(h.treasury.State()),
	})
}
