package application

import (
	"context"
	"sync"
	"time"

	"goldprice-service/internal/domain"
)

func ptr(v float64) *float64 { return &v }

type fakeProvider struct {
	name    string
	cred    string
	hasKey  bool
	out     domain.LatestQuote
	err     error
	history []domain.MonthlyPoint
	maxAge  time.Duration

	// entered is closed on the first FetchLatest; gate, when set, holds it open.
	entered   chan struct{}
	enterOnce sync.Once
	gate      chan struct{}

	mu           sync.Mutex
	latestCalls  int
	historyCalls int
}

func (f *fakeProvider) Name() string { return f.name }
func (f *fakeProvider) Credential() string { return f.cred }
func (f *fakeProvider) HasCredentials() bool { return f.hasKey }
func (f *fakeProvider) MaxAge() time.Duration { return f.maxAge }

func (f *fakeProvider) FetchLatest(ctx context.Context) (domain.LatestQuote, error) {
	f.mu.Lock()
	f.latestCalls++
	f.mu.Unlock()
	if f.entered != nil {
		f.enterOnce.Do(func() { close(f.entered) })
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return domain.LatestQuote{}, ctx.Err()
		}
	}
	if f.err != nil {
		return domain.LatestQuote{}, f.err
	}
	return f.out, nil
}

func (f *fakeProvider) FetchMonthlyHistory(context.Context) []domain.MonthlyPoint {
	f.mu.Lock()
	f.historyCalls++
	f.mu.Unlock()
	return f.history
}

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latestCalls
}

type fakeFX struct {
	name  string
	out   domain.CrossRates
	err   error
	calls int
}

func (f *fakeFX) Name() string { return f.name }

func (f *fakeFX) USDRates(context.Context) (domain.CrossRates, error) {
	f.calls++
	if f.err != nil {
		return domain.CrossRates{}, f.err
	}
	return f.out, nil
}

type memCache struct {
	stored *domain.ServedQuote
	ttl    time.Duration
	getErr error
}

func (m *memCache) Get(context.Context) (domain.ServedQuote, bool, error) {
	if m.getErr != nil {
		return domain.ServedQuote{}, false, m.getErr
	}
	if m.stored == nil {
		return domain.ServedQuote{}, false, nil
	}
	return *m.stored, true, nil
}

func (m *memCache) Set(_ context.Context, q domain.ServedQuote, ttl time.Duration) error {
	m.stored, m.ttl = &q, ttl
	return nil
}
