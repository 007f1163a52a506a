package application

import (
	"context"
	"time"

	"goldprice-service/internal/domain"
)

// PriceProvider is one commodity price upstream.
type PriceProvider interface {
	Name() string
	// Credential names the secret the provider needs, for error reporting.
	Credential() string
	HasCredentials() bool
	// MaxAge is the freshness window intermediaries may serve the answer for.
	MaxAge() time.Duration
	FetchLatest(ctx context.Context) (domain.LatestQuote, error)
	FetchMonthlyHistory(ctx context.Context) []domain.MonthlyPoint
}

// FXProvider is a USD-base exchange-rate source used to fill missing cross rates.
type FXProvider interface {
	Name() string
	USDRates(ctx context.Context) (domain.CrossRates, error)
}

// RecordCache holds the last served record for its freshness window.
type RecordCache interface {
	Get(ctx context.Context) (domain.ServedQuote, bool, error)
	Set(ctx context.Context, q domain.ServedQuote, ttl time.Duration) error
}
