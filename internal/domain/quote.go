package domain

import "time"

// GoldQuote is the canonical, provider-agnostic price record served by the API.
// All three rates are finite and strictly positive.
type GoldQuote struct {
	Timestamp      time.Time      `json:"timestamp"`
	USDPerOunce    float64        `json:"usd_per_oz"`
	USDToZAR       float64        `json:"usd_to_zar"`
	USDToMZN       float64        `json:"usd_to_mzn"`
	MonthlyHistory []MonthlyPoint `json:"monthly_history,omitempty"`
}

// Missing reports which of the required rates are unusable.
func (q GoldQuote) Missing() MissingFields {
	_, okOz := PositiveRate(q.USDPerOunce)
	_, okZar := PositiveRate(q.USDToZAR)
	_, okMzn := PositiveRate(q.USDToMZN)
	return MissingFields{USDPerOz: !okOz, USDToZAR: !okZar, USDToMZN: !okMzn}
}

// ServedQuote is a validated record plus the serving provider's freshness window.
type ServedQuote struct {
	Quote    GoldQuote     `json:"quote"`
	Provider string        `json:"provider"`
	MaxAge   time.Duration `json:"max_age"`
}

// CrossRates holds USD cross-rates; nil means absent.
type CrossRates struct {
	USDToZAR *float64
	USDToMZN *float64
}

func (c CrossRates) Complete() bool { return c.USDToZAR != nil && c.USDToMZN != nil }

// Fill copies legs from other only where c has none.
func (c *CrossRates) Fill(other CrossRates) {
	if c.USDToZAR == nil && other.USDToZAR != nil {
		v := *other.USDToZAR
		c.USDToZAR = &v
	}
	if c.USDToMZN == nil && other.USDToMZN != nil {
		v := *other.USDToMZN
		c.USDToMZN = &v
	}
}

// LatestQuote is what a provider adapter resolved from its latest-rate endpoint.
// Any of the rates may be absent.
type LatestQuote struct {
	Provider    string
	Timestamp   time.Time
	USDPerOunce *float64
	Cross       CrossRates
}
