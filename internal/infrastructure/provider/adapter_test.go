package provider_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"goldprice-service/internal/domain"
	"goldprice-service/internal/infrastructure/provider"

	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func newAdapter(t *testing.T, name string, up *fakeUpstream) *provider.Adapter {
	t.Helper()
	d, ok := provider.LookupDialect(name)
	require.True(t, ok)
	return &provider.Adapter{
		Dialect:        d,
		CredentialName: "TEST_KEY",
		APIKey:         "secret",
		BaseURL:        "http://upstream.test/v1",
		Client:         up.client(),
		Now:            func() time.Time { return now },
	}
}

func TestCommodityPriceAPI_Latest(t *testing.T) {
	up := &fakeUpstream{routes: map[string]reply{
		"/v1/rates/latest": {200, `{"success": true, "timestamp": 1749981600, "rates": {"XAU": 2325.58}}`},
	}}
	a := newAdapter(t, provider.CommodityPriceAPI, up)

	q, err := a.FetchLatest(context.Background())
	require.NoError(t, err)
	require.Equal(t, "commoditypriceapi", q.Provider)
	require.Equal(t, 2325.58, *q.USDPerOunce)
	require.Nil(t, q.Cross.USDToZAR)
	require.Nil(t, q.Cross.USDToMZN)
	require.Equal(t, time.Unix(1749981600, 0).UTC(), q.Timestamp)

	require.Equal(t, 1, up.calls())
	req := up.seen[0]
	require.Equal(t, "secret", req.Header.Get("x-api-key"))
	require.Equal(t, "XAU", req.URL.Query().Get("symbols"))
	require.Empty(t, req.URL.Query().Get("api_key"))
	require.Equal(t, 300*time.Second, a.MaxAge())
}

func TestMetalPriceAPI_Latest_InvertsAndReadsCross(t *testing.T) {
	up := &fakeUpstream{routes: map[string]reply{
		"/v1/latest": {200, `{"success": true, "base": "USD", "rates": {"XAU": 0.00043, "ZAR": 18.2, "MZN": 63.9}}`},
	}}
	a := newAdapter(t, provider.MetalPriceAPI, up)

	q, err := a.FetchLatest(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 2325.58, *q.USDPerOunce, 0.01)
	require.Equal(t, 18.2, *q.Cross.USDToZAR)
	require.Equal(t, 63.9, *q.Cross.USDToMZN)
	require.Equal(t, now, q.Timestamp)
	require.Equal(t, "secret", up.seen[0].URL.Query().Get("api_key"))
	require.Equal(t, 60*time.Second, a.MaxAge())
}

func TestMetalsAPI_Latest_AccessKey(t *testing.T) {
	up := &fakeUpstream{routes: map[string]reply{
		"/v1/latest": {200, `{"success": true, "rates": {"USDXAU": 2330.12, "XAU": 0.000429}}`},
	}}
	a := newAdapter(t, provider.MetalsAPI, up)
	q, err := a.FetchLatest(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2330.12, *q.USDPerOunce)
	require.Equal(t, "secret", up.seen[0].URL.Query().Get("access_key"))
	require.Equal(t, "XAU,ZAR,MZN", up.seen[0].URL.Query().Get("symbols"))
}

func TestLatest_ParseFailureCarriesRawBody(t *testing.T) {
	up := &fakeUpstream{routes: map[string]reply{
		"/v1/rates/latest": {503, `<html>Service Unavailable</html>`},
	}}
	_, err := newAdapter(t, provider.CommodityPriceAPI, up).FetchLatest(context.Background())
	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	require.Equal(t, "commoditypriceapi", ue.Provider)
	require.Equal(t, "<html>Service Unavailable</html>", ue.Message)
	require.Equal(t, 503, ue.Code)
}

func TestLatest_ProviderReportedFailure(t *testing.T) {
	up := &fakeUpstream{routes: map[string]reply{
		"/v1/latest": {200, `{"success": false, "error": {"code": 104, "type": "usage_limit_reached", "info": "Monthly quota exceeded"}}`},
	}}
	_, err := newAdapter(t, provider.MetalsAPI, up).FetchLatest(context.Background())
	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	require.Equal(t, "metals-api", ue.Provider)
	require.Equal(t, "Monthly quota exceeded", ue.Message)
	require.Equal(t, float64(104), ue.Code)
}

func TestLatest_Non2xxWithMessage(t *testing.T) {
	up := &fakeUpstream{routes: map[string]reply{
		"/v1/rates/latest": {401, `{"message": "Invalid API key", "code": "unauthorized"}`},
	}}
	_, err := newAdapter(t, provider.CommodityPriceAPI, up).FetchLatest(context.Background())
	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	require.Equal(t, "Invalid API key", ue.Message)
	require.Equal(t, "unauthorized", ue.Code)
	require.Equal(t, 401, ue.Status)
}

func TestLatest_Non2xxWithoutErrorPayload(t *testing.T) {
	up := &fakeUpstream{routes: map[string]reply{
		"/v1/rates/latest": {429, `{}`},
	}}
	_, err := newAdapter(t, provider.CommodityPriceAPI, up).FetchLatest(context.Background())
	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	require.Equal(t, "{}", ue.Message)
	require.Equal(t, 429, ue.Code)
}

func TestLatest_MissingPriceIsNil(t *testing.T) {
	up := &fakeUpstream{routes: map[string]reply{
		"/v1/rates/latest": {200, `{"success": true, "rates": {"XAG": 31}}`},
	}}
	q, err := newAdapter(t, provider.CommodityPriceAPI, up).FetchLatest(context.Background())
	require.NoError(t, err)
	require.Nil(t, q.USDPerOunce)
}

func TestMonthlyHistory_Timeseries(t *testing.T) {
	up := &fakeUpstream{routes: map[string]reply{
		"/v1/rates/timeseries": {200, `{"success": true, "rates": {
			"2025-05-02": {"XAU": 2300},
			"2025-05-30": {"XAU": 2310.456},
			"2025-06-13": {"XAU": 2330}
		}}`},
	}}
	a := newAdapter(t, provider.CommodityPriceAPI, up)
	got := a.FetchMonthlyHistory(context.Background())
	require.Equal(t, []domain.MonthlyPoint{
		{Month: "2025-05", USDPerOunce: 2310.46},
		{Month: "2025-06", USDPerOunce: 2330},
	}, got)

	require.Equal(t, 1, up.calls())
	q := up.seen[0].URL.Query()
	require.Equal(t, "2024-07-01", q.Get("startDate"))
	require.Equal(t, "2025-06-15", q.Get("endDate"))
}

func TestMonthlyHistory_FailureIsEmpty(t *testing.T) {
	up := &fakeUpstream{routes: map[string]reply{
		"/v1/timeframe": {200, `{"success": false, "error": {"code": 105, "info": "plan"}}`},
	}}
	a := newAdapter(t, provider.MetalAPI, up)
	require.Empty(t, a.FetchMonthlyHistory(context.Background()))
	require.Equal(t, 1, up.calls())
}

func TestMonthlyHistory_DayByDayFallback(t *testing.T) {
	up := &fakeUpstream{
		routes: map[string]reply{
			"/v1/timeframe": {200, `{"success": true, "rates": {"2025-06-01": {"XAU": 0.0005}}}`},
		},
		fallback: reply{200, `{"success": true, "rates": {"XAU": 0.0004}}`},
	}
	a := newAdapter(t, provider.MetalPriceAPI, up)
	got := a.FetchMonthlyHistory(context.Background())

	require.Len(t, got, 12)
	require.Equal(t, "2024-07", got[0].Month)
	require.Equal(t, "2025-06", got[11].Month)
	require.Equal(t, 2500.0, got[0].USDPerOunce)
	require.Equal(t, 13, up.calls())

	paths := up.paths()
	require.Equal(t, "/v1/2024-07-31", paths[1])
	require.Equal(t, "/v1/2025-02-28", paths[8])
	require.Equal(t, "/v1/2025-06-15", paths[12])
}

func TestMonthlyHistory_NoHistoricalEndpoint(t *testing.T) {
	up := &fakeUpstream{routes: map[string]reply{
		"/v1/timeframe": {200, `{"success": true, "rates": {}}`},
	}}
	a := newAdapter(t, provider.MetalAPI, up)
	require.Empty(t, a.FetchMonthlyHistory(context.Background()))
	require.Equal(t, 1, up.calls())
}

func TestAdapter_Credentials(t *testing.T) {
	a := newAdapter(t, provider.MetalAPI, &fakeUpstream{})
	require.True(t, a.HasCredentials())
	require.Equal(t, "TEST_KEY", a.Credential())
	a.APIKey = ""
	require.False(t, a.HasCredentials())
	a.MaxAgeOverride = 2 * time.Minute
	require.Equal(t, 2*time.Minute, a.MaxAge())
}

func TestLatest_TransportError(t *testing.T) {
	a := newAdapter(t, provider.MetalAPI, &fakeUpstream{})
	a.Client.HTTP.Transport = errTransport{}
	_, err := a.FetchLatest(context.Background())
	require.Error(t, err)
	var ue *domain.UpstreamError
	require.False(t, errors.As(err, &ue))
}

func TestLatest_TransportErrorHidesQueryKey(t *testing.T) {
	for _, name := range []string{provider.MetalPriceAPI, provider.MetalAPI, provider.MetalsAPI} {
		t.Run(name, func(t *testing.T) {
			a := newAdapter(t, name, &fakeUpstream{})
			a.APIKey = "SUPERSECRETKEY"
			a.Client.HTTP.Transport = errTransport{}
			_, err := a.FetchLatest(context.Background())
			require.Error(t, err)
			require.NotContains(t, err.Error(), "SUPERSECRETKEY")
			require.Contains(t, err.Error(), "connection refused")
		})
	}
}
