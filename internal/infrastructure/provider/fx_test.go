package provider_test

import (
	"context"
	"testing"

	"goldprice-service/internal/domain"
	"goldprice-service/internal/infrastructure/provider"

	"github.com/stretchr/testify/require"
)

func TestOpenERAPI_Rates(t *testing.T) {
	up := &fakeUpstream{routes: map[string]reply{
		"/v6/latest/USD": {200, `{"result": "success", "base_code": "USD", "rates": {"USD": 1, "ZAR": 18.31, "MZN": 63.91}}`},
	}}
	fx := provider.NewOpenERAPI(up.client())
	require.Equal(t, "open.er-api", fx.Name())

	got, err := fx.USDRates(context.Background())
	require.NoError(t, err)
	require.Equal(t, 18.31, *got.USDToZAR)
	require.Equal(t, 63.91, *got.USDToMZN)
}

func TestOpenERAPI_ResultError(t *testing.T) {
	up := &fakeUpstream{routes: map[string]reply{
		"/v6/latest/USD": {200, `{"result": "error", "error-type": "unsupported-code"}`},
	}}
	_, err := provider.NewOpenERAPI(up.client()).USDRates(context.Background())
	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	require.Equal(t, "unsupported-code", ue.Message)
}

func TestExchangeRateHost_Quotes(t *testing.T) {
	up := &fakeUpstream{routes: map[string]reply{
		"/live": {200, `{"success": true, "source": "USD", "quotes": {"USDZAR": 18.2, "USDMZN": 63.8}}`},
	}}
	fx := provider.NewExchangeRateHost(up.client(), "k")
	got, err := fx.USDRates(context.Background())
	require.NoError(t, err)
	require.Equal(t, 18.2, *got.USDToZAR)
	require.Equal(t, 63.8, *got.USDToMZN)
	require.Equal(t, "k", up.seen[0].URL.Query().Get("access_key"))
}

func TestFX_PartialAndEmpty(t *testing.T) {
	up := &fakeUpstream{routes: map[string]reply{
		"/v6/latest/USD": {200, `{"result": "success", "rates": {"ZAR": 18.3}}`},
	}}
	got, err := provider.NewOpenERAPI(up.client()).USDRates(context.Background())
	require.NoError(t, err)
	require.Equal(t, 18.3, *got.USDToZAR)
	require.Nil(t, got.USDToMZN)

	empty := &fakeUpstream{routes: map[string]reply{
		"/v6/latest/USD": {200, `{"result": "success", "rates": {"EUR": 0.9}}`},
	}}
	_, err = provider.NewOpenERAPI(empty.client()).USDRates(context.Background())
	require.Error(t, err)
}

func TestFake(t *testing.T) {
	f := provider.NewFake(2325.58, 18.2, 63.9)
	q, err := f.FetchLatest(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2325.58, *q.USDPerOunce)
	require.True(t, q.Cross.Complete())
	require.True(t, f.HasCredentials())
	require.Empty(t, f.FetchMonthlyHistory(context.Background()))
}
