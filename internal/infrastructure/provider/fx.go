package provider

import (
	"context"
	"errors"
	"net/url"

	"goldprice-service/internal/application"
	"goldprice-service/internal/domain"
	"goldprice-service/internal/infrastructure/httpx"
)

const (
	OpenERAPI        = "open.er-api"
	ExchangeRateHost = "exchangerate.host"
)

var _ application.FXProvider = (*FXSource)(nil)

// FXSource is a generic USD-base exchange-rate endpoint used to fill cross
// rates the commodity provider did not supply. It understands both a "rates"
// map ({"ZAR": 18.4}) and a "quotes" map ({"USDZAR": 18.4}).
type FXSource struct {
	SourceName string
	URL        string
	Client     *httpx.Client
}

// NewOpenERAPI returns the keyless open.er-api.com source.
func NewOpenERAPI(c *httpx.Client) *FXSource {
	return &FXSource{SourceName: OpenERAPI, URL: "https://open.er-api.com/v6/latest/USD", Client: c}
}

// NewExchangeRateHost returns the exchangerate.host live endpoint.
func NewExchangeRateHost(c *httpx.Client, accessKey string) *FXSource {
	q := url.Values{"source": {"USD"}, "currencies": {"ZAR,MZN"}}
	if accessKey != "" {
		q.Set("access_key", accessKey)
	}
	return &FXSource{SourceName: ExchangeRateHost, URL: "https://api.exchangerate.host/live?" + q.Encode(), Client: c}
}

func (f *FXSource) Name() string { return f.SourceName }

func (f *FXSource) USDRates(ctx context.Context) (domain.CrossRates, error) {
	c := f.Client
	if c == nil {
		c = &httpx.Client{}
	}
	env, err := fetchJSON(ctx, c, f.Name(), f.URL, nil)
	if err != nil {
		return domain.CrossRates{}, err
	}
	out := ResolveCrossRates(env.Rates)
	out.Fill(ResolveCrossRates(env.Quotes))
	if out.USDToZAR == nil && out.USDToMZN == nil {
		return out, errors.New(f.Name() + ": no ZAR or MZN rate in response")
	}
	return out, nil
}
