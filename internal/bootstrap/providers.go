package bootstrap

import (
	"fmt"

	"goldprice-service/internal/application"
	"goldprice-service/internal/config"
	"goldprice-service/internal/infrastructure/httpx"
	"goldprice-service/internal/infrastructure/provider"

	"go.uber.org/zap"
)

// Rates served by the "fake" provider for local runs.
const (
	fakeUSDPerOz = 2325.58
	fakeUSDToZAR = 18.50
	fakeUSDToMZN = 63.75
)

// ProvidePriceProviders turns PROVIDERS into adapters, in failover order.
// A provider without a key is still returned: the missing secret is reported
// per request, not at startup.
func ProvidePriceProviders(cfg config.Config, c *httpx.Client, log *zap.Logger) ([]application.PriceProvider, error) {
	if log == nil {
		log = zap.NewNop()
	}
	out := make([]application.PriceProvider, 0, len(cfg.Providers))
	for _, name := range cfg.Providers {
		if name == "fake" {
			out = append(out, provider.NewFake(fakeUSDPerOz, fakeUSDToZAR, fakeUSDToMZN))
			continue
		}
		d, ok := provider.LookupDialect(name)
		if !ok {
			return nil, fmt.Errorf("bootstrap: unknown provider %q", name)
		}
		out = append(out, &provider.Adapter{
			Dialect:        d,
			CredentialName: config.CredentialEnv(name),
			APIKey:         cfg.APIKeys[name],
			BaseURL:        cfg.BaseURLs[name],
			MaxAgeOverride: cfg.MaxAges[name],
			Client:         c,
			Log:            log.With(zap.String("provider", name)),
		})
	}
	return out, nil
}

// ProvideFXChain builds the cross-rate fallback sources named by FX_PROVIDERS.
func ProvideFXChain(cfg config.Config, c *httpx.Client) ([]application.FXProvider, error) {
	out := make([]application.FXProvider, 0, len(cfg.FXProviders))
	for _, name := range cfg.FXProviders {
		switch name {
		case provider.OpenERAPI:
			out = append(out, provider.NewOpenERAPI(c))
		case provider.ExchangeRateHost:
			out = append(out, provider.NewExchangeRateHost(c, cfg.ExchangeRateHostKey))
		default:
			return nil, fmt.Errorf("bootstrap: unknown fx provider %q", name)
		}
	}
	return out, nil
}
