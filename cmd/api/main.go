package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"goldprice-service/internal/bootstrap"
	"goldprice-service/internal/config"
	defaults "goldprice-service/internal/infrastructure/config"
	httpserver "goldprice-service/internal/infrastructure/http"
	"goldprice-service/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	logger := logx.L()
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		var err error
		if cfg, err = cfg.WithFile(path); err != nil {
			logger.Fatal("load config file", zap.String("path", path), zap.Error(err))
		}
	}
	addr := ":" + cfg.Port

	cache, closeCache, err := bootstrap.BuildCache(cfg)
	if err != nil {
		logger.Fatal("bootstrap cache", zap.Error(err))
	}
	defer closeCache()

	svc, err := bootstrap.BuildGoldService(cfg, cache, logger)
	if err != nil {
		logger.Fatal("bootstrap gold service", zap.Error(err))
	}
	srv := httpserver.NewServer(svc)
	if cache.Ping != nil {
		srv.SetReadyCheck(cache.Ping)
	}

	server := &http.Server{
		Addr:    addr,
		Handler: httpserver.NewRouter(srv),
	}

	go func() {
		logger.Info("server started",
			zap.String("addr", addr),
			zap.Strings("providers", cfg.Providers),
			zap.Strings("fx_providers", cfg.FXProviders),
			zap.String("cache", cfg.CacheBackend),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaults.DefaultShutdownTimeout)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	logger.Info("server stopped")
}
