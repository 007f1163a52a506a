package provider

import (
	"net/url"
	"time"
)

const (
	CommodityPriceAPI = "commoditypriceapi"
	MetalAPI          = "metalapi"
	MetalPriceAPI     = "metalpriceapi"
	MetalsAPI         = "metals-api"
)

// endpoint is a path and query relative to a dialect's base URL.
type endpoint struct {
	Path  string
	Query url.Values
}

// Dialect captures everything that differs between commodity providers:
// where the endpoints live, how the key is sent and how long answers stay fresh.
type Dialect struct {
	Name           string
	DefaultBaseURL string
	// KeyHeader, when set, carries the key as a request header; otherwise
	// it is sent as the KeyParam query parameter.
	KeyHeader string
	KeyParam  string
	MaxAge    time.Duration

	Latest     func() endpoint
	Timeseries func(start, end string) endpoint
	// Historical is nil when the provider has no single-day endpoint.
	Historical func(date string) endpoint
}

var dialects = map[string]Dialect{
	CommodityPriceAPI: {
		Name:           CommodityPriceAPI,
		DefaultBaseURL: "https://api.commoditypriceapi.com/v2",
		KeyHeader:      "x-api-key",
		MaxAge:         300 * time.Second,
		Latest: func() endpoint {
			return endpoint{Path: "/rates/latest", Query: url.Values{"symbols": {"XAU"}}}
		},
		Timeseries: func(start, end string) endpoint {
			return endpoint{Path: "/rates/timeseries", Query: url.Values{
				"symbols": {"XAU"}, "startDate": {start}, "endDate": {end},
			}}
		},
		Historical: func(date string) endpoint {
			return endpoint{Path: "/rates/historical", Query: url.Values{"symbols": {"XAU"}, "date": {date}}}
		},
	},
	MetalPriceAPI: {
		Name:           MetalPriceAPI,
		DefaultBaseURL: "https://api.metalpriceapi.com/v1",
		KeyParam:       "api_key",
		MaxAge:         60 * time.Second,
		Latest: func() endpoint {
			return endpoint{Path: "/latest", Query: url.Values{"base": {"USD"}, "currencies": {"XAU,ZAR,MZN"}}}
		},
		Timeseries: func(start, end string) endpoint {
			return endpoint{Path: "/timeframe", Query: url.Values{
				"base": {"USD"}, "currencies": {"XAU"}, "start_date": {start}, "end_date": {end},
			}}
		},
		Historical: func(date string) endpoint {
			return endpoint{Path: "/" + date, Query: url.Values{"base": {"USD"}, "currencies": {"XAU"}}}
		},
	},
	MetalAPI: {
		Name:           MetalAPI,
		DefaultBaseURL: "https://api.metalapi.com/v1",
		KeyParam:       "api_key",
		MaxAge:         60 * time.Second,
		Latest: func() endpoint {
			return endpoint{Path: "/latest", Query: url.Values{"base": {"USD"}, "currencies": {"XAU,ZAR,MZN"}}}
		},
		Timeseries: func(start, end string) endpoint {
			return endpoint{Path: "/timeframe", Query: url.Values{
				"base": {"USD"}, "currencies": {"XAU"}, "start_date": {start}, "end_date": {end},
			}}
		},
	},
	MetalsAPI: {
		Name:           MetalsAPI,
		DefaultBaseURL: "https://metals-api.com/api",
		KeyParam:       "access_key",
		MaxAge:         60 * time.Second,
		Latest: func() endpoint {
			return endpoint{Path: "/latest", Query: url.Values{"base": {"USD"}, "symbols": {"XAU,ZAR,MZN"}}}
		},
		Timeseries: func(start, end string) endpoint {
			return endpoint{Path: "/timeseries", Query: url.Values{
				"base": {"USD"}, "symbols": {"XAU"}, "start_date": {start}, "end_date": {end},
			}}
		},
		Historical: func(date string) endpoint {
			return endpoint{Path: "/" + date, Query: url.Values{"base": {"USD"}, "symbols": {"XAU"}}}
		},
	},
}

// LookupDialect returns the dialect registered under name.
func LookupDialect(name string) (Dialect, bool) {
	d, ok := dialects[name]
	return d, ok
}
