package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	defaults "goldprice-service/internal/infrastructure/config"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port string
	// Providers, in failover order. Only the first two are ever attempted.
	Providers []string
	APIKeys   map[string]string
	BaseURLs  map[string]string
	MaxAges   map[string]time.Duration
	// FX fallback
	FXProviders         []string
	ExchangeRateHostKey string
	// Outbound HTTP
	UpstreamTimeout time.Duration
	UpstreamRetries int
	// Record cache
	CacheBackend  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// Poller
	PriceEndpoint string
	PollInterval  time.Duration
	HistoryMax    int
}

// FileConfig is the optional YAML overlay named by CONFIG_FILE.
type FileConfig struct {
	Providers   []ProviderEntry `yaml:"providers"`
	FXProviders []string        `yaml:"fx_providers"`
}

type ProviderEntry struct {
	Name          string `yaml:"name"`
	BaseURL       string `yaml:"base_url"`
	MaxAgeSeconds int    `yaml:"max_age_seconds"`
}

// Secret env names per provider.
var credentialEnv = map[string]string{
	"commoditypriceapi": "COMMODITYPRICE_API_KEY",
	"metalapi":          "METALAPI_API_KEY",
	"metalpriceapi":     "METALPRICEAPI_API_KEY",
	"metals-api":        "METALS_API_KEY",
}

// CredentialEnv returns the env var holding the secret for a provider.
func CredentialEnv(provider string) string { return credentialEnv[provider] }

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func msDef(key string, def time.Duration) time.Duration {
	ms := atoiDef(os.Getenv(key), -1)
	if ms < 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads environment variables and applies defaults.
func Load() Config {
	keys := make(map[string]string, len(credentialEnv))
	bases := map[string]string{}
	for name, env := range credentialEnv {
		keys[name] = os.Getenv(env)
		envName := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(name)) + "_BASE_URL"
		if v := os.Getenv(envName); v != "" {
			bases[name] = v
		}
	}
	return Config{
		Env:                 getEnv("ENV", "local"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		Port:                getEnv("PORT", defaults.DefaultHTTPPort),
		Providers:           splitList(getEnv("PROVIDERS", "commoditypriceapi")),
		APIKeys:             keys,
		BaseURLs:            bases,
		MaxAges:             map[string]time.Duration{},
		FXProviders:         splitList(getEnv("FX_PROVIDERS", "open.er-api")),
		ExchangeRateHostKey: getEnv("EXCHANGERATE_HOST_KEY", ""),
		UpstreamTimeout:     msDef("UPSTREAM_TIMEOUT_MS", defaults.DefaultUpstreamTimeout),
		UpstreamRetries:     atoiDef(getEnv("UPSTREAM_RETRIES", "0"), 0),
		CacheBackend:        getEnv("CACHE_BACKEND", "none"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisDB:             atoiDef(getEnv("REDIS_DB", "0"), 0),
		PriceEndpoint:       getEnv("PRICE_ENDPOINT", "http://localhost:8080/api/gold"),
		PollInterval:        msDef("POLL_INTERVAL_MS", defaults.DefaultPollInterval),
		HistoryMax:          atoiDef(getEnv("HISTORY_MAX", ""), defaults.DefaultHistoryMax),
	}
}

// WithFile overlays provider order, base URLs, freshness tiers and the FX chain
// from a YAML file. Secrets always come from the environment.
func (c Config) WithFile(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config file: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return c, fmt.Errorf("parse config file: %w", err)
	}
	return c.apply(fc)
}

func (c Config) apply(fc FileConfig) (Config, error) {
	if len(fc.Providers) > 0 {
		names := make([]string, 0, len(fc.Providers))
		bases := make(map[string]string, len(c.BaseURLs))
		for k, v := range c.BaseURLs {
			bases[k] = v
		}
		ages := make(map[string]time.Duration, len(c.MaxAges))
		for k, v := range c.MaxAges {
			ages[k] = v
		}
		for _, p := range fc.Providers {
			if p.Name == "" {
				return c, fmt.Errorf("config file: provider entry without name")
			}
			names = append(names, p.Name)
			if p.BaseURL != "" {
				bases[p.Name] = p.BaseURL
			}
			if p.MaxAgeSeconds > 0 {
				ages[p.Name] = time.Duration(p.MaxAgeSeconds) * time.Second
			}
		}
		c.Providers, c.BaseURLs, c.MaxAges = names, bases, ages
	}
	if len(fc.FXProviders) > 0 {
		c.FXProviders = fc.FXProviders
	}
	return c, nil
}
