package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"goldprice-service/internal/domain"
	"goldprice-service/internal/infrastructure/logx"

	"go.uber.org/zap"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// GoldQuoter produces the validated gold record for a request.
type GoldQuoter interface {
	Latest(ctx context.Context) (domain.ServedQuote, error)
}

type Server struct {
	svc  GoldQuoter
	ping func(ctx context.Context) error
}

func NewServer(svc GoldQuoter) *Server { return &Server{svc: svc} }

// SetReadyCheck installs the dependency probe behind /readyz.
func (s *Server) SetReadyCheck(fn func(ctx context.Context) error) { s.ping = fn }

type goldResponse struct {
	Timestamp      string         `json:"timestamp"`
	USDPerOz       float64        `json:"usdPerOz"`
	USDToZAR       float64        `json:"usdToZar"`
	USDToMZN       float64        `json:"usdToMzn"`
	MonthlyHistory []historyPoint `json:"monthlyHistory,omitempty"`
}

type historyPoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

type errorResponse struct {
	Error    string                `json:"error"`
	Provider string                `json:"provider,omitempty"`
	Code     *json.RawMessage      `json:"code,omitempty"`
	Missing  *domain.MissingFields `json:"missing,omitempty"`
}

func (s *Server) GetGold(w http.ResponseWriter, r *http.Request) {
	served, err := s.svc.Latest(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	q := served.Quote
	resp := goldResponse{
		Timestamp: q.Timestamp.UTC().Format(timestampLayout),
		USDPerOz:  q.USDPerOunce,
		USDToZAR:  q.USDToZAR,
		USDToMZN:  q.USDToMZN,
	}
	for _, p := range q.MonthlyHistory {
		resp.MonthlyHistory = append(resp.MonthlyHistory, historyPoint{Date: p.Month, Price: p.USDPerOunce})
	}
	w.Header().Set("Cache-Control", cacheControl(served.MaxAge))
	writeJSON(w, http.StatusOK, resp)
}

// cacheControl lets shared caches serve a stale record for twice the freshness window.
func cacheControl(maxAge time.Duration) string {
	secs := int(maxAge / time.Second)
	return fmt.Sprintf("s-maxage=%d, stale-while-revalidate=%d", secs, 2*secs)
}

func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorBody(err)
	logx.WithFields(r.Context(), logx.L()).Warn("gold.request_failed",
		zap.Int("status", status),
		zap.Error(err),
	)
	writeJSON(w, status, body)
}

func errorBody(err error) (int, errorResponse) {
	var cfgErr *domain.ConfigError
	var upErr *domain.UpstreamError
	var dataErr *domain.DataIntegrityError
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError, errorResponse{Error: cfgErr.Error()}
	case errors.As(err, &upErr):
		return http.StatusBadGateway, errorResponse{
			Error:    upErr.Message,
			Provider: upErr.Provider,
			Code:     encodeCode(upErr.Code),
		}
	case errors.As(err, &dataErr):
		missing := dataErr.Missing
		return http.StatusBadGateway, errorResponse{Error: dataErr.Error(), Missing: &missing}
	default:
		msg := err.Error()
		if msg == "" {
			msg = "Server error"
		}
		return http.StatusInternalServerError, errorResponse{Error: msg}
	}
}

// encodeCode always yields a code field for upstream errors, null when the provider sent none.
func encodeCode(code any) *json.RawMessage {
	raw := json.RawMessage("null")
	if code != nil {
		if b, err := json.Marshal(code); err == nil {
			raw = b
		}
	}
	return &raw
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
