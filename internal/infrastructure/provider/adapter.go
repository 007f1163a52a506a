package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"goldprice-service/internal/application"
	"goldprice-service/internal/domain"
	"goldprice-service/internal/infrastructure/httpx"

	"go.uber.org/zap"
)

const historyMonths = 12

var _ application.PriceProvider = (*Adapter)(nil)

// Adapter talks to one commodity price provider described by a Dialect.
type Adapter struct {
	Dialect Dialect
	// CredentialName is the env var the key came from, used in error messages.
	CredentialName string
	APIKey         string
	BaseURL        string
	MaxAgeOverride time.Duration
	Client         *httpx.Client
	Log            *zap.Logger
	Now            func() time.Time
}

func (a *Adapter) Name() string { return a.Dialect.Name }

func (a *Adapter) Credential() string { return a.CredentialName }

func (a *Adapter) HasCredentials() bool { return a.APIKey != "" }

func (a *Adapter) MaxAge() time.Duration {
	if a.MaxAgeOverride > 0 {
		return a.MaxAgeOverride
	}
	return a.Dialect.MaxAge
}

func (a *Adapter) now() time.Time {
	if a.Now != nil {
		return a.Now().UTC()
	}
	return time.Now().UTC()
}

func (a *Adapter) log() *zap.Logger {
	if a.Log == nil {
		return zap.NewNop()
	}
	return a.Log
}

func (a *Adapter) client() *httpx.Client {
	if a.Client == nil {
		return &httpx.Client{}
	}
	return a.Client
}

func (a *Adapter) request(ep endpoint) (string, map[string]string, error) {
	base := a.BaseURL
	if base == "" {
		base = a.Dialect.DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(base, "/") + ep.Path)
	if err != nil {
		return "", nil, fmt.Errorf("%s: invalid base url: %w", a.Name(), err)
	}
	q := u.Query()
	for k, vs := range ep.Query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	var headers map[string]string
	if a.Dialect.KeyHeader != "" {
		headers = map[string]string{a.Dialect.KeyHeader: a.APIKey}
	} else if a.Dialect.KeyParam != "" {
		q.Set(a.Dialect.KeyParam, a.APIKey)
	}
	u.RawQuery = q.Encode()
	return u.String(), headers, nil
}

func (a *Adapter) get(ctx context.Context, ep endpoint) (envelope, error) {
	rawURL, headers, err := a.request(ep)
	if err != nil {
		return envelope{}, err
	}
	return fetchJSON(ctx, a.client(), a.Name(), rawURL, headers)
}

// FetchLatest issues the single latest-rate call and resolves whatever rates the
// answer carries. Missing rates are left nil for the caller to fill or reject.
func (a *Adapter) FetchLatest(ctx context.Context) (domain.LatestQuote, error) {
	env, err := a.get(ctx, a.Dialect.Latest())
	if err != nil {
		return domain.LatestQuote{}, err
	}
	out := domain.LatestQuote{
		Provider:  a.Name(),
		Timestamp: a.now(),
		Cross:     ResolveCrossRates(env.Rates),
	}
	if ts, ok := PositiveRate(env.Timestamp); ok {
		out.Timestamp = time.Unix(int64(ts), 0).UTC()
	}
	if usd, ok := ResolveUSDPerOunce(env.Rates); ok {
		usd = domain.Round2(usd)
		out.USDPerOunce = &usd
	}
	return out, nil
}

// FetchMonthlyHistory returns up to twelve month-end prices. Any failure yields
// an empty slice: history is an enhancement, never a reason to fail a request.
func (a *Adapter) FetchMonthlyHistory(ctx context.Context) []domain.MonthlyPoint {
	log := a.log().With(zap.String("provider", a.Name()))
	end := a.now()
	start := time.Date(end.Year(), end.Month()-(historyMonths-1), 1, 0, 0, 0, 0, time.UTC)

	var points []domain.DailyPoint
	env, err := a.get(ctx, a.Dialect.Timeseries(start.Format(time.DateOnly), end.Format(time.DateOnly)))
	if err != nil {
		log.Debug("history.timeseries_failed", zap.Error(err))
	} else {
		points = ExtractTimeseries(env.Rates)
	}

	if len(points) < 2 && a.Dialect.Historical != nil {
		if daily := a.fetchMonthEnds(ctx, end); len(daily) > len(points) {
			points = daily
		}
	}
	return domain.CollapseToMonthly(points)
}

// fetchMonthEnds asks for the last day of each of the past twelve months, one
// request at a time. The current month uses today.
func (a *Adapter) fetchMonthEnds(ctx context.Context, today time.Time) []domain.DailyPoint {
	log := a.log().With(zap.String("provider", a.Name()))
	var points []domain.DailyPoint
	for _, day := range monthEnds(today, historyMonths) {
		date := day.Format(time.DateOnly)
		env, err := a.get(ctx, a.Dialect.Historical(date))
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return points
			}
			log.Debug("history.day_failed", zap.String("date", date), zap.Error(err))
			continue
		}
		if usd, ok := ResolveUSDPerOunce(env.Rates); ok {
			points = append(points, domain.DailyPoint{Date: date, USDPerOunce: usd})
			continue
		}
		if series := ExtractTimeseries(env.Rates); len(series) > 0 {
			last := series[len(series)-1]
			points = append(points, domain.DailyPoint{Date: date, USDPerOunce: last.USDPerOunce})
		}
	}
	return points
}

// monthEnds lists the last day of each of the n months ending with today's
// month, oldest first, with the current month capped at today.
func monthEnds(today time.Time, n int) []time.Time {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, 0, n)
	for i := n - 1; i >= 0; i-- {
		firstOfNext := time.Date(today.Year(), today.Month()-time.Month(i)+1, 1, 0, 0, 0, 0, time.UTC)
		last := firstOfNext.AddDate(0, 0, -1)
		if last.After(today) {
			last = today
		}
		out = append(out, last)
	}
	return out
}
