package application

import (
	"context"
	"fmt"

	"goldprice-service/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// maxAttempts bounds failover to the primary and exactly one secondary.
const maxAttempts = 2

// GoldService builds the canonical gold record for one request:
// credentials check, latest price with failover, FX fill-in, validation,
// best-effort monthly history.
type GoldService struct {
	providers []PriceProvider
	fx        []FXProvider
	cache     RecordCache
	log       *zap.Logger
	group     singleflight.Group
}

type Option func(*GoldService)

func WithFX(fx ...FXProvider) Option { return func(s *GoldService) { s.fx = fx } }
func WithCache(c RecordCache) Option { return func(s *GoldService) { s.cache = c } }
func WithLogger(l *zap.Logger) Option { return func(s *GoldService) { s.log = l } }

func NewGoldService(providers []PriceProvider, opts ...Option) *GoldService {
	s := &GoldService{providers: providers}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = NoopCache{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Latest returns a validated record or one of the domain error types.
// Concurrent callers share a single upstream round.
func (s *GoldService) Latest(ctx context.Context) (domain.ServedQuote, error) {
	if len(s.providers) == 0 {
		return domain.ServedQuote{}, &domain.ConfigError{Name: "PROVIDERS"}
	}
	if primary := s.providers[0]; !primary.HasCredentials() {
		return domain.ServedQuote{}, &domain.ConfigError{Name: primary.Credential()}
	}

	if cached, ok, err := s.cache.Get(ctx); err != nil {
		s.log.Warn("gold.cache_get_failed", zap.Error(err))
	} else if ok && !cached.Quote.Missing().Any() {
		return cached, nil
	}

	// The shared load must outlive any single caller; each caller still
	// stops waiting when its own context ends.
	loadCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan("latest", func() (any, error) {
		return s.load(loadCtx)
	})
	select {
	case <-ctx.Done():
		return domain.ServedQuote{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.ServedQuote{}, res.Err
		}
		return res.Val.(domain.ServedQuote), nil
	}
}

func (s *GoldService) load(ctx context.Context) (domain.ServedQuote, error) {
	latest, p, err := s.fetchLatest(ctx)
	if err != nil {
		return domain.ServedQuote{}, err
	}
	log := s.log.With(zap.String("provider", p.Name()))

	cross := latest.Cross
	if !cross.Complete() {
		s.fillCrossRates(ctx, log, &cross)
	}

	missing := domain.MissingFields{
		USDPerOz: latest.USDPerOunce == nil,
		USDToZAR: cross.USDToZAR == nil,
		USDToMZN: cross.USDToMZN == nil,
	}
	if missing.Any() {
		log.Warn("gold.invalid_rates",
			zap.Bool("usd_per_oz", missing.USDPerOz),
			zap.Bool("usd_to_zar", missing.USDToZAR),
			zap.Bool("usd_to_mzn", missing.USDToMZN))
		return domain.ServedQuote{}, &domain.DataIntegrityError{Provider: p.Name(), Missing: missing}
	}

	q := domain.GoldQuote{
		Timestamp:      latest.Timestamp,
		USDPerOunce:    domain.Round2(*latest.USDPerOunce),
		USDToZAR:       *cross.USDToZAR,
		USDToMZN:       *cross.USDToMZN,
		MonthlyHistory: p.FetchMonthlyHistory(ctx),
	}
	// Rounding can only push a sub-cent price to zero.
	if m := q.Missing(); m.Any() {
		return domain.ServedQuote{}, &domain.DataIntegrityError{Provider: p.Name(), Missing: m}
	}

	served := domain.ServedQuote{Quote: q, Provider: p.Name(), MaxAge: p.MaxAge()}
	if err := s.cache.Set(ctx, served, served.MaxAge); err != nil {
		log.Warn("gold.cache_set_failed", zap.Error(err))
	}
	log.Info("gold.served",
		zap.Float64("usd_per_oz", q.USDPerOunce),
		zap.Int("history_points", len(q.MonthlyHistory)))
	return served, nil
}

// fetchLatest tries the primary and then at most one secondary. An answer
// without an ounce price counts as a failure. When both fail the secondary's
// outcome is returned: its error, or its incomplete quote for validation.
func (s *GoldService) fetchLatest(ctx context.Context) (domain.LatestQuote, PriceProvider, error) {
	var (
		lastErr     error
		partial     domain.LatestQuote
		partialFrom PriceProvider
	)
	for i, p := range s.providers {
		if i >= maxAttempts {
			break
		}
		if !p.HasCredentials() {
			s.log.Warn("gold.secondary_skipped", zap.String("provider", p.Name()), zap.String("missing", p.Credential()))
			break
		}
		q, err := p.FetchLatest(ctx)
		switch {
		case err == nil && q.USDPerOunce != nil:
			return q, p, nil
		case err == nil:
			s.log.Warn("gold.provider_incomplete", zap.String("provider", p.Name()))
			partial, partialFrom, lastErr = q, p, nil
		default:
			s.log.Warn("gold.provider_failed", zap.String("provider", p.Name()), zap.Error(err))
			partial, partialFrom, lastErr = domain.LatestQuote{}, nil, err
		}
	}
	if partialFrom != nil {
		return partial, partialFrom, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no provider attempted")
	}
	return domain.LatestQuote{}, nil, lastErr
}

// fillCrossRates asks the FX sources in order, filling only absent legs.
func (s *GoldService) fillCrossRates(ctx context.Context, log *zap.Logger, cross *domain.CrossRates) {
	for _, fx := range s.fx {
		rates, err := fx.USDRates(ctx)
		if err != nil {
			log.Warn("gold.fx_failed", zap.String("fx", fx.Name()), zap.Error(err))
			continue
		}
		cross.Fill(rates)
		if cross.Complete() {
			return
		}
	}
}
