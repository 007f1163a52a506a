package pricefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"goldprice-service/internal/domain"
	"goldprice-service/internal/infrastructure/httpx"
)

var ErrNoOuncePrice = errors.New("pricefeed: payload has no usable usdPerOz")

// LivePrice is one decoded answer of the gold endpoint. Zero cross-rates mean
// the payload did not carry them.
type LivePrice struct {
	Timestamp time.Time
	USDPerOz  float64
	USDToZAR  float64
	USDToMZN  float64
}

type Fetcher interface {
	Fetch(ctx context.Context) (LivePrice, error)
}

// HTTPFetcher reads the canonical record from GET /api/gold.
type HTTPFetcher struct {
	Endpoint string
	Client   *httpx.Client
}

type livePayload struct {
	Timestamp string   `json:"timestamp"`
	USDPerOz  *float64 `json:"usdPerOz"`
	USDToZAR  *float64 `json:"usdToZar"`
	USDToMZN  *float64 `json:"usdToMzn"`
}

func (f *HTTPFetcher) Fetch(ctx context.Context) (LivePrice, error) {
	c := f.Client
	if c == nil {
		c = httpx.New(10*time.Second, 0)
	}
	resp, err := c.Get(ctx, f.Endpoint, nil)
	if err != nil {
		return LivePrice{}, fmt.Errorf("pricefeed: fetch: %w", err)
	}
	if !resp.OK() {
		return LivePrice{}, fmt.Errorf("pricefeed: unexpected status %d", resp.Status)
	}
	var p livePayload
	if err := json.Unmarshal(resp.Body, &p); err != nil {
		return LivePrice{}, fmt.Errorf("pricefeed: decode: %w", err)
	}
	if p.USDPerOz == nil {
		return LivePrice{}, ErrNoOuncePrice
	}
	usd, ok := domain.PositiveRate(*p.USDPerOz)
	if !ok {
		return LivePrice{}, ErrNoOuncePrice
	}
	lp := LivePrice{USDPerOz: usd}
	if p.USDToZAR != nil {
		lp.USDToZAR = *p.USDToZAR
	}
	if p.USDToMZN != nil {
		lp.USDToMZN = *p.USDToMZN
	}
	if ts, err := time.Parse(time.RFC3339Nano, p.Timestamp); err == nil {
		lp.Timestamp = ts
	}
	return lp, nil
}
