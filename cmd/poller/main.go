package main

import (
	"context"
	"os/signal"
	"syscall"

	"goldprice-service/internal/bootstrap"
	"goldprice-service/internal/config"
	"goldprice-service/internal/domain"
	"goldprice-service/internal/infrastructure/logx"
	"goldprice-service/internal/pricefeed"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	log := logx.L()
	defer func() { _ = log.Sync() }()

	cfg := config.Load()
	feed := bootstrap.BuildPriceFeed(cfg, log)

	unsubscribe := feed.Subscribe(func(snap pricefeed.Snapshot) {
		logGrid(log, feed, snap)
	})
	defer unsubscribe()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("poller started", zap.String("endpoint", cfg.PriceEndpoint))
	feed.Run(ctx)
}

// logGrid logs every currency and weight combination of the new price.
func logGrid(log *zap.Logger, feed *pricefeed.Service, snap pricefeed.Snapshot) {
	for _, c := range domain.Currencies {
		fields := []zap.Field{
			zap.String("currency", string(c)),
			zap.String("symbol", domain.CurrencySymbol(c)),
			zap.Time("timestamp", snap.Price.Timestamp),
			zap.Int("history_points", len(snap.History)),
		}
		for _, w := range domain.Weights {
			if v, ok := feed.GetPrice(c, w); ok {
				fields = append(fields, zap.Float64(domain.WeightLabel(w), v))
			}
		}
		log.Info("pricefeed.price", fields...)
	}
}
