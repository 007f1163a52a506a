package bootstrap

import (
	"context"
	"fmt"

	"goldprice-service/internal/application"
	"goldprice-service/internal/config"
	defaults "goldprice-service/internal/infrastructure/config"
	"goldprice-service/internal/infrastructure/httpx"
	redisstore "goldprice-service/internal/infrastructure/redis"
	"goldprice-service/internal/pricefeed"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache is the record cache plus its readiness probe; Ping is nil when no
// backend is configured.
type Cache struct {
	Store application.RecordCache
	Ping  func(ctx context.Context) error
}

// BuildCache selects the record cache from CACHE_BACKEND ("none" or "redis").
func BuildCache(cfg config.Config) (Cache, func(), error) {
	switch cfg.CacheBackend {
	case "", "none":
		return Cache{Store: application.NoopCache{}}, func() {}, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := redisstore.New(rdb, defaults.DefaultRecordCacheKey)
		cleanup := func() { _ = rdb.Close() }
		return Cache{Store: store, Ping: store.Ping}, cleanup, nil
	default:
		return Cache{}, func() {}, fmt.Errorf("bootstrap: unknown CACHE_BACKEND %q", cfg.CacheBackend)
	}
}

// BuildGoldService wires providers, the FX chain and the cache into the
// request-side service.
func BuildGoldService(cfg config.Config, cache Cache, log *zap.Logger) (*application.GoldService, error) {
	if log == nil {
		log = zap.NewNop()
	}
	client := httpx.New(cfg.UpstreamTimeout, cfg.UpstreamRetries)
	providers, err := ProvidePriceProviders(cfg, client, log)
	if err != nil {
		return nil, err
	}
	fx, err := ProvideFXChain(cfg, client)
	if err != nil {
		return nil, err
	}
	return application.NewGoldService(providers,
		application.WithFX(fx...),
		application.WithCache(cache.Store),
		application.WithLogger(log),
	), nil
}

// BuildPriceFeed builds the client-side poller against PRICE_ENDPOINT.
func BuildPriceFeed(cfg config.Config, log *zap.Logger) *pricefeed.Service {
	fetcher := &pricefeed.HTTPFetcher{
		Endpoint: cfg.PriceEndpoint,
		Client:   httpx.New(cfg.UpstreamTimeout, 0),
	}
	return pricefeed.NewService(fetcher,
		pricefeed.WithInterval(cfg.PollInterval),
		pricefeed.WithMaxHistory(cfg.HistoryMax),
		pricefeed.WithLogger(log),
	)
}
