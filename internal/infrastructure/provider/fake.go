package provider

import (
	"context"
	"time"

	"goldprice-service/internal/application"
	"goldprice-service/internal/domain"
)

// Ensure Fake implements application.PriceProvider.
var _ application.PriceProvider = (*Fake)(nil)

// Fake serves fixed rates. It needs no credentials and is meant for local runs.
type Fake struct {
	usdPerOz, usdToZar, usdToMzn float64
}

func NewFake(usdPerOz, usdToZar, usdToMzn float64) *Fake {
	return &Fake{usdPerOz: usdPerOz, usdToZar: usdToZar, usdToMzn: usdToMzn}
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Credential() string { return "" }

func (f *Fake) HasCredentials() bool { return true }

func (f *Fake) MaxAge() time.Duration { return 60 * time.Second }

func (f *Fake) FetchLatest(context.Context) (domain.LatestQuote, error) {
	usd, zar, mzn := f.usdPerOz, f.usdToZar, f.usdToMzn
	return domain.LatestQuote{
		Provider:    f.Name(),
		Timestamp:   time.Now().UTC(),
		USDPerOunce: &usd,
		Cross:       domain.CrossRates{USDToZAR: &zar, USDToMZN: &mzn},
	}, nil
}

func (f *Fake) FetchMonthlyHistory(context.Context) []domain.MonthlyPoint { return nil }
