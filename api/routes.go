package api

import (
	"treasury_checker/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterTreasuryRoutes wires the treasury endpoints into the router.
func RegisterTreasuryRoutes(
	router *gin.Engine,
	treasury service.TreasuryService,
	marketCap service.MarketCapService,
	logger *zap.Logger,
) {
	handler := NewTreasuryHandler(treasury, marketCap, logger)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/treasury", handler.GetTreasuryHandler)
		v1.GET("/treasury/wallets", handler.GetWalletsHandler)
		v1.GET("/treasury/wallets/:address", handler.GetWalletHandler)
		v1.POST("/treasury/refresh", handler.RefreshHandler)
		v1.GET("/sol-price", handler.GetSolPriceHandler)
		v1.GET("/market-cap", handler.GetMarketCapHandler)
	}

	router.GET("/health", handler.HealthHandler)
}
