package provider_test

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"goldprice-service/internal/infrastructure/httpx"
)

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r), nil }

type reply struct {
	code int
	body string
}

// fakeUpstream answers by URL path and records every request it sees.
type fakeUpstream struct {
	mu       sync.Mutex
	routes   map[string]reply
	fallback reply
	seen     []*http.Request
}

func (f *fakeUpstream) client() *httpx.Client {
	return &httpx.Client{HTTP: &http.Client{
		Timeout: 2 * time.Second,
		Transport: roundTripFunc(func(r *http.Request) *http.Response {
			f.mu.Lock()
			f.seen = append(f.seen, r)
			rep, ok := f.routes[r.URL.Path]
			f.mu.Unlock()
			if !ok {
				rep = f.fallback
			}
			if rep.code == 0 {
				rep = reply{code: 404, body: `{"success":false,"error":{"code":404,"info":"no route"}}`}
			}
			return &http.Response{
				StatusCode: rep.code,
				Body:       io.NopCloser(strings.NewReader(rep.body)),
				Header:     make(http.Header),
				Request:    r,
			}
		}),
	}}
}

func (f *fakeUpstream) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

func (f *fakeUpstream) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.seen))
	for _, r := range f.seen {
		out = append(out, r.URL.Path)
	}
	return out
}

type errTransport struct{}

func (errTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}
