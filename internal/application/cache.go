package application

import (
	"context"
	"time"

	"goldprice-service/internal/domain"
)

// NoopCache never hits; used when no cache backend is configured.
type NoopCache struct{}

func (NoopCache) Get(context.Context) (domain.ServedQuote, bool, error) {
	return domain.ServedQuote{}, false, nil
}

func (NoopCache) Set(context.Context, domain.ServedQuote, time.Duration) error { return nil }
