package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"goldprice-service/internal/domain"
	"goldprice-service/internal/infrastructure/httpx"
)

// envelope covers the union of fields the supported providers answer with.
type envelope struct {
	Success   *bool           `json:"success"`
	Result    string          `json:"result"`
	ErrorType string          `json:"error-type"`
	Timestamp any             `json:"timestamp"`
	Rates     map[string]any  `json:"rates"`
	Quotes    map[string]any  `json:"quotes"`
	Message   string          `json:"message"`
	Code      any             `json:"code"`
	Error     json.RawMessage `json:"error"`
}

type errorObject struct {
	Code    any    `json:"code"`
	Info    string `json:"info"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e envelope) failed() bool {
	return (e.Success != nil && !*e.Success) || e.Result == "error"
}

func (e envelope) errorDetails() (obj errorObject, text string) {
	raw := bytes.TrimSpace(e.Error)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return obj, ""
	}
	if raw[0] == '{' {
		_ = json.Unmarshal(raw, &obj)
		return obj, ""
	}
	if raw[0] == '"' {
		_ = json.Unmarshal(raw, &text)
		return obj, text
	}
	return obj, string(raw)
}

// upstreamError builds the failure for a non-2xx or success=false answer,
// preferring the provider's own message and code over the raw body.
func (e envelope) upstreamError(provider string, status int, body []byte) *domain.UpstreamError {
	obj, text := e.errorDetails()
	msg := firstNonEmpty(e.Message, obj.Info, obj.Message, text, obj.Type, e.ErrorType)
	var code any
	switch {
	case e.Code != nil:
		code = e.Code
	case obj.Code != nil:
		code = obj.Code
	case len(e.Error) == 0 && e.Message == "":
		code = status
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = "Upstream error"
	}
	return &domain.UpstreamError{Provider: provider, Message: msg, Code: code, Status: status}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// fetchJSON performs one GET and decodes the provider envelope. Unparseable
// bodies, non-2xx statuses and success=false all become *domain.UpstreamError;
// transport failures are returned wrapped.
func fetchJSON(ctx context.Context, c *httpx.Client, provider, rawURL string, headers map[string]string) (envelope, error) {
	resp, err := c.Get(ctx, rawURL, headers)
	if err != nil {
		return envelope{}, fmt.Errorf("%s: do request: %w", provider, err)
	}
	var env envelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		msg := string(resp.Body)
		if msg == "" {
			msg = "Upstream error"
		}
		return envelope{}, &domain.UpstreamError{Provider: provider, Message: msg, Code: resp.Status, Status: resp.Status}
	}
	if !resp.OK() || env.failed() {
		return envelope{}, env.upstreamError(provider, resp.Status, resp.Body)
	}
	return env, nil
}
