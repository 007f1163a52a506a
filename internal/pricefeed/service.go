package pricefeed

import (
	"context"
	"sync"
	"time"

	"goldprice-service/internal/domain"

	"go.uber.org/zap"
)

const (
	defaultInterval   = 60 * time.Second
	defaultMaxHistory = 30
)

// ConversionRates are the USD cross-rates applied to the ounce price.
type ConversionRates struct {
	USDToZAR float64
	USDToMZN float64
}

// DefaultRates are used until the first payload carries real cross-rates.
var DefaultRates = ConversionRates{USDToZAR: 18.50, USDToMZN: 63.75}

// GoldPrice is the per-ounce price in every supported currency.
type GoldPrice struct {
	USD       float64
	ZAR       float64
	MZN       float64
	Timestamp time.Time
}

type PricePoint struct {
	Date  time.Time
	Price float64
}

// Snapshot is delivered to subscribers after every accepted payload.
type Snapshot struct {
	Price   GoldPrice
	History []PricePoint
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// Service keeps a polled view of the gold price and derives presentation
// values from it. It is safe for concurrent use.
type Service struct {
	fetcher    Fetcher
	interval   time.Duration
	maxHistory int
	log        *zap.Logger
	now        func() time.Time

	mu      sync.RWMutex
	rates   ConversionRates
	current *GoldPrice
	history []PricePoint
	subs    []subscriber
	nextID  int

	// notifyMu serialises whole updates, so subscribers see snapshots in
	// arrival order. It is always taken before mu.
	notifyMu sync.Mutex
}

type Option func(*Service)

func WithInterval(d time.Duration) Option { return func(s *Service) { s.interval = d } }
func WithMaxHistory(n int) Option { return func(s *Service) { s.maxHistory = n } }
func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.log = l } }
func WithRates(r ConversionRates) Option { return func(s *Service) { s.rates = r } }
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(f Fetcher, opts ...Option) *Service {
	s := &Service{
		fetcher:    f,
		interval:   defaultInterval,
		maxHistory: defaultMaxHistory,
		log:        zap.NewNop(),
		now:        time.Now,
		rates:      DefaultRates,
	}
	for _, o := range opts {
		o(s)
	}
	if s.interval <= 0 {
		s.interval = defaultInterval
	}
	if s.maxHistory <= 0 {
		s.maxHistory = defaultMaxHistory
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Run polls once immediately and then on every interval until ctx is done.
// Polls run on this goroutine, so a slow fetch delays the next tick instead
// of overlapping with it.
func (s *Service) Run(ctx context.Context) {
	s.log.Info("pricefeed.started", zap.Duration("interval", s.interval))
	_ = s.Poll(ctx)

	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("pricefeed.stopped")
			return
		case <-t.C:
			_ = s.Poll(ctx)
		}
	}
}

// Poll performs one fetch. A failure leaves the current state untouched.
func (s *Service) Poll(ctx context.Context) error {
	lp, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.log.Warn("pricefeed.tick_failed", zap.Error(err))
		return err
	}
	s.ApplyLivePrice(lp)
	return nil
}

// ApplyLivePrice adopts the payload's cross-rates, recomputes the current
// price and appends one history point, evicting the oldest beyond the cap.
func (s *Service) ApplyLivePrice(lp LivePrice) {
	usd, ok := domain.PositiveRate(lp.USDPerOz)
	if !ok {
		s.log.Warn("pricefeed.payload_rejected", zap.Float64("usd_per_oz", lp.USDPerOz))
		return
	}
	ts := lp.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if v, ok := domain.PositiveRate(lp.USDToZAR); ok {
		s.rates.USDToZAR = v
	}
	if v, ok := domain.PositiveRate(lp.USDToMZN); ok {
		s.rates.USDToMZN = v
	}
	price := GoldPrice{
		USD:       domain.Round2(usd),
		ZAR:       domain.Round2(usd * s.rates.USDToZAR),
		MZN:       domain.Round2(usd * s.rates.USDToMZN),
		Timestamp: ts,
	}
	s.current = &price
	s.history = append(s.history, PricePoint{Date: ts, Price: domain.Round2(usd)})
	if over := len(s.history) - s.maxHistory; over > 0 {
		s.history = append([]PricePoint(nil), s.history[over:]...)
	}
	snap := Snapshot{Price: price, History: append([]PricePoint(nil), s.history...)}
	subs := append([]subscriber(nil), s.subs...)
	s.mu.Unlock()

	s.log.Debug("pricefeed.updated",
		zap.Float64("usd", price.USD),
		zap.Float64("zar", price.ZAR),
		zap.Float64("mzn", price.MZN),
	)
	for _, sub := range subs {
		sub.fn(snap)
	}
}

// CurrentPrice returns nil until a payload has been accepted.
func (s *Service) CurrentPrice() *GoldPrice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	p := *s.current
	return &p
}

func (s *Service) Rates() ConversionRates {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rates
}

// GetPrice returns the price of weight w in currency c. The second result is
// false before the first accepted payload or for an unknown currency or weight.
func (s *Service) GetPrice(c domain.Currency, w domain.Weight) (float64, bool) {
	s.mu.RLock()
	cur := s.current
	s.mu.RUnlock()
	if cur == nil {
		return 0, false
	}
	var base float64
	switch c {
	case domain.USD:
		base = cur.USD
	case domain.ZAR:
		base = cur.ZAR
	case domain.MZN:
		base = cur.MZN
	default:
		return 0, false
	}
	return domain.ConvertWeight(base, domain.Ounce, w)
}

// GetHistoricalData converts every buffered point independently. It never
// returns nil.
func (s *Service) GetHistoricalData(c domain.Currency, w domain.Weight) []PricePoint {
	s.mu.RLock()
	history := append([]PricePoint(nil), s.history...)
	rates := s.rates
	s.mu.RUnlock()

	out := make([]PricePoint, 0, len(history))
	rate, ok := currencyRate(c, rates)
	if !ok || !domain.ValidWeight(w) {
		return out
	}
	for _, p := range history {
		base := p.Price
		if c != domain.USD {
			base = domain.Round2(p.Price * rate)
		}
		v, _ := domain.ConvertWeight(base, domain.Ounce, w)
		out = append(out, PricePoint{Date: p.Date, Price: v})
	}
	return out
}

func currencyRate(c domain.Currency, r ConversionRates) (float64, bool) {
	switch c {
	case domain.USD:
		return 1, true
	case domain.ZAR:
		return r.USDToZAR, true
	case domain.MZN:
		return r.USDToMZN, true
	}
	return 0, false
}

// Subscribe registers fn for every subsequent snapshot and returns a func that
// removes it. fn runs on the polling goroutine and must not call ApplyLivePrice.
func (s *Service) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}
