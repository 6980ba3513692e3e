package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"treasury_checker/api"
	"treasury_checker/internal/client"
	"treasury_checker/internal/config"
	"treasury_checker/internal/repository"
	"treasury_checker/internal/scheduler"
	"treasury_checker/internal/service"
	"treasury_checker/internal/utils"
	"treasury_checker/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
)

func main() {
	// Bootstrap logger for the phase before zap is configured.
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	slogHandler := zapslog.NewHandler(zapLogger.Core())
	slog.SetDefault(slog.New(slogHandler))

	cfgPath := utils.GetEnv("CONFIG_PATH", "config/config.yaml")
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Warnf("Invalid log level in config: %s. Defaulting to Info.", cfg.Logging.Level)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	zapLogger.Info("Configuration loaded",
		zap.String("path", cfgPath),
		zap.Int("wallets", len(cfg.Wallets)))

	metrics.MustRegisterMetrics()

	// Clients.
	solanaTimeout := time.Duration(cfg.SolanaRPC.RequestTimeoutMillis) * time.Millisecond
	solanaClient := client.NewSolanaClient(cfg.SolanaRPC.Endpoint, solanaTimeout, zapLogger)

	ethTimeout := time.Duration(cfg.EthereumRPC.RequestTimeoutMillis) * time.Millisecond
	ethereumClient := client.NewEthereumClient(cfg.EthereumRPC.Endpoint, ethTimeout, ethTimeout, zapLogger)

	jupiterTimeout := time.Duration(cfg.Jupiter.RequestTimeoutMillis) * time.Millisecond
	jupiterClient := client.NewJupiterClient(cfg.Jupiter.BaseURL, cfg.Jupiter.MaxMintsPerBatchRequest, jupiterTimeout, zapLogger)

	coinGeckoTimeout := time.Duration(cfg.CoinGecko.RequestTimeoutMillis) * time.Millisecond
	coinGeckoClient := client.NewCoinGeckoClient(cfg.CoinGecko.BaseURL, coinGeckoTimeout, zapLogger)
	zapLogger.Info("Upstream clients initialized")

	// Services.
	balanceService := service.NewBalanceService(solanaClient, ethereumClient, cfg.KnownTokens, zapLogger)
	priceService := service.NewPriceService(jupiterClient, coinGeckoClient, cfg.PriceSvc, cfg.Treasury.SolFallbackPriceUSD, zapLogger)
	normalizer := service.NewNormalizer(service.NewClassifier(cfg), cfg.Treasury.ProjectTokenMint)

	refreshInterval, err := time.ParseDuration(cfg.Treasury.RefreshInterval)
	if err != nil {
		log.Fatalf("Invalid refresh interval %q: %v", cfg.Treasury.RefreshInterval, err)
	}
	snapshotTTL := time.Duration(cfg.Treasury.SnapshotTTLMinutes) * time.Minute
	snapshotRepo := repository.NewSnapshotRepository(snapshotTTL, 2*refreshInterval, zapLogger)

	treasuryService := service.NewTreasuryService(cfg, balanceService, priceService, normalizer, snapshotRepo, zapLogger)
	marketCapService := service.NewMarketCapService(
		solanaClient,
		priceService,
		cfg.Treasury.ProjectTokenMint,
		time.Duration(cfg.PriceSvc.CacheTTLMinutes)*time.Minute,
		zapLogger,
	)
	zapLogger.Info("Services initialized")

	// Background refresh loop.
	schedCtx, schedCancel := context.WithCancel(context.Background())
	defer schedCancel()

	refreshScheduler, err := scheduler.NewScheduler(schedCtx, refreshInterval, true, func(ctx context.Context) error {
		_, err := treasuryService.Refresh(ctx)
		return err
	}, zapLogger)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	if err := refreshScheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// HTTP surface.
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.Use(utils.ZapLoggerMiddleware(zapLogger))
	router.Use(gin.Recovery())

	api.RegisterTreasuryRoutes(router, treasuryService, marketCapService, zapLogger)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	zapLogger.Info("Prometheus metrics endpoint enabled", zap.String("path", "/metrics"))

	pprofRouter := router.Group("/debug/pprof")
	{
		pprofRouter.GET("/", gin.WrapF(pprof.Index))
		pprofRouter.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		pprofRouter.GET("/profile", gin.WrapF(pprof.Profile))
		pprofRouter.POST("/symbol", gin.WrapF(pprof.Symbol))
		pprofRouter.GET("/symbol", gin.WrapF(pprof.Symbol))
		pprofRouter.GET("/trace", gin.WrapF(pprof.Trace))
		pprofRouter.GET("/allocs", gin.WrapH(pprof.Handler("allocs")))
		pprofRouter.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
		pprofRouter.GET("/heap", gin.WrapH(pprof.Handler("heap")))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info(fmt.Sprintf("Server starting on port %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	schedCancel()
	if err := refreshScheduler.Stop(); err != nil {
		zapLogger.Error("Failed to stop scheduler", zap.Error(err))
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}
