package config

import "time"

const (
	DefaultHTTPPort        = "8080"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultUpstreamTimeout = 10 * time.Second
	DefaultPollInterval    = 60 * time.Second
	DefaultHistoryMax      = 30
	DefaultRecordCacheKey  = "gold:latest"
)
