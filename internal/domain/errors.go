package domain

import "fmt"

// ConfigError reports a missing deployment secret. It is raised per request,
// before any outbound call is made.
type ConfigError struct {
	Name string
}

func (e *ConfigError) Error() string { return "Missing " + e.Name }

// UpstreamError is a non-2xx answer or a provider-reported failure.
type UpstreamError struct {
	Provider string
	Message  string
	// Code is whatever the provider used as an error code (string or number), or nil.
	Code   any
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// MissingFields flags which required legs could not be resolved.
type MissingFields struct {
	USDPerOz bool `json:"usdPerOz"`
	USDToZAR bool `json:"usdToZar"`
	USDToMZN bool `json:"usdToMzn"`
}

func (m MissingFields) Any() bool { return m.USDPerOz || m.USDToZAR || m.USDToMZN }

// DataIntegrityError is a parseable upstream answer that still lacks a
// required rate after every fallback was tried.
type DataIntegrityError struct {
	Provider string
	Missing  MissingFields
}

func (e *DataIntegrityError) Error() string { return "Invalid rates from upstream" }
