package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const maxBody = 4 << 20

// Client wraps http.Client with default headers and an optional retry budget.
// Retries is zero unless configured: by default every call is a single attempt.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	Headers   map[string]string
	Retries   uint64
}

// Response is a fully read upstream answer.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

func (r Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

func New(timeout time.Duration, retries int) *Client {
	if retries < 0 {
		retries = 0
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: "goldprice-service/1.0",
		Retries:   uint64(retries),
	}
}

// Get issues a GET and returns the status and body. Transport errors are
// returned as errors; any HTTP status, including 5xx, is returned as a Response.
// When Retries > 0, transport errors and 5xx answers are retried with backoff.
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) (Response, error) {
	httpc := c.HTTP
	if httpc == nil {
		httpc = http.DefaultClient
	}

	var last Response
	op := func() error {
		last = Response{}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", redact(err)))
		}
		req.Header.Set("Accept", "application/json")
		if c.UserAgent != "" {
			req.Header.Set("User-Agent", c.UserAgent)
		}
		for k, v := range c.Headers {
			req.Header.Set(k, v)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		resp, err := httpc.Do(req)
		if err != nil {
			return redact(err)
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		last = Response{Status: resp.StatusCode, Header: resp.Header, Body: body}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("server error %d", resp.StatusCode)
		}
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 200 * time.Millisecond
	exp.MaxInterval = 1 * time.Second
	b := backoff.WithContext(backoff.WithMaxRetries(exp, c.Retries), ctx)

	if err := backoff.Retry(op, b); err != nil {
		if last.Status >= 500 {
			return last, nil
		}
		return Response{}, err
	}
	return last, nil
}

// redact drops the query string from errors that embed the request URL.
// Some providers take their API key as a query parameter.
func redact(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	return &url.Error{Op: ue.Op, URL: stripQuery(ue.URL), Err: ue.Err}
}

func stripQuery(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		return raw[:i]
	}
	return raw
}
