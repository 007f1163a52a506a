package pricefeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"goldprice-service/internal/infrastructure/httpx"

	"github.com/stretchr/testify/require"
)

func fetchFrom(t *testing.T, status int, body string) (LivePrice, error) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/gold" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	f := &HTTPFetcher{Endpoint: srv.URL + "/api/gold", Client: httpx.New(time.Second, 0)}
	return f.Fetch(context.Background())
}

func TestHTTPFetcher_OK(t *testing.T) {
	lp, err := fetchFrom(t, http.StatusOK,
		`{"timestamp":"2025-06-15T12:30:00.000Z","usdPerOz":2325.58,"usdToZar":18.25,"usdToMzn":63.9}`)
	require.NoError(t, err)
	require.Equal(t, 2325.58, lp.USDPerOz)
	require.Equal(t, 18.25, lp.USDToZAR)
	require.Equal(t, 63.9, lp.USDToMZN)
	require.True(t, lp.Timestamp.Equal(time.Date(2025, 6, 15, 12, 30, 0, 0, time.UTC)))
}

func TestHTTPFetcher_MissingOuncePrice(t *testing.T) {
	_, err := fetchFrom(t, http.StatusOK, `{"timestamp":"2025-06-15T12:30:00.000Z","usdToZar":18.25}`)
	require.ErrorIs(t, err, ErrNoOuncePrice)

	_, err = fetchFrom(t, http.StatusOK, `{"usdPerOz":0}`)
	require.ErrorIs(t, err, ErrNoOuncePrice)
}

func TestHTTPFetcher_ErrorStatusAndBadJSON(t *testing.T) {
	_, err := fetchFrom(t, http.StatusBadGateway, `{"error":"Upstream error","provider":"metalapi","code":null}`)
	require.ErrorContains(t, err, "unexpected status 502")

	_, err = fetchFrom(t, http.StatusOK, `<html>`)
	require.ErrorContains(t, err, "decode")
}

func TestHTTPFetcher_BadTimestampLeavesZero(t *testing.T) {
	lp, err := fetchFrom(t, http.StatusOK, `{"timestamp":"yesterday","usdPerOz":10}`)
	require.NoError(t, err)
	require.True(t, lp.Timestamp.IsZero())
}
