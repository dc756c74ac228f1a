package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"basebridge/internal/app/service"
	"basebridge/internal/infrastructure/configloader"
	"basebridge/internal/infrastructure/httpclient"
	"basebridge/internal/infrastructure/network/client"
	"basebridge/internal/infrastructure/restapi"
	"basebridge/internal/infrastructure/sessionstore"
	"basebridge/internal/pkg/logger"
	"basebridge/internal/pkg/metrics"
	"basebridge/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfgPath := utils.GetEnv("CONFIG_PATH", "config/config.yml")
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.Init(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		logrus.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.NewSlogAdapter()

	logger.Info("Configuration loaded", "path", cfgPath)

	metrics.MustRegisterMetrics()

	quotes := httpclient.NewCoinGeckoClient(
		cfg.CoinGecko.BaseURL,
		cfg.CoinGecko.APIKey,
		time.Duration(cfg.CoinGecko.RequestTimeoutMillis)*time.Millisecond,
		cfg.CoinGecko.RequestsPerMinute,
		zapLogger,
	)
	rates := service.NewExchangeRateService(quotes, cfg.CoinGecko.CoinID, cfg.CoinGecko.VsCurrency, appLogger)

	// Warm the shared rate so the first visitor does not wait on CoinGecko.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.CoinGecko.RequestTimeoutMillis)*time.Millisecond)
		defer cancel()
		if _, err := rates.EnsureRate(ctx); err != nil {
			logger.Warn("Initial exchange rate fetch failed", "error", err)
		}
	}()

	wallet := client.NewEVMWalletProviderFromConfig(cfg.Wallet, appLogger)
	defer wallet.Close()

	ttl := time.Duration(cfg.Session.TTLMinutes) * time.Minute
	store := sessionstore.New(ttl, time.Duration(cfg.Session.CleanupIntervalMinutes)*time.Minute,
		func(id string, _ *service.SessionContainer) {
			logger.Debug("Session expired", "session_id", id)
		})
	manager := service.NewSessionManager(store, wallet, rates, service.SessionDefaults{
		UserName:          cfg.Session.DefaultUserName,
		UserAvatar:        cfg.Session.AvatarURL,
		FiatBalance:       cfg.Session.FiatBalance,
		FiatCurrency:      cfg.Session.FiatCurrency,
		FiatTransferDelay: time.Duration(cfg.Session.FiatTransferDelayMillis) * time.Millisecond,
	}, appLogger)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := restapi.SetupRouter(restapi.RouterDeps{
		Config:    cfg,
		Manager:   manager,
		Store:     restapi.NewCookieStore(cfg.Session.Secret, int(ttl/time.Second), cfg.Session.SecureCookie),
		ZapLogger: zapLogger,
		Logger:    appLogger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exiting")
}
