package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"quotes-service/internal/application"
	"quotes-service/internal/domain"
	"quotes-service/internal/infrastructure/logx"

	"go.uber.org/zap"
)

type QuoteGetter interface {
	GetQuote(ctx context.Context, symbol string, forceRefresh bool) (domain.QuoteRecord, error)
}

type HealthChecker interface {
	Check(ctx context.Context) domain.HealthStatus
}

type Server struct {
	quotes QuoteGetter
	health HealthChecker
	log    *zap.Logger
}

func NewServer(quotes QuoteGetter, health HealthChecker, log *zap.Logger) *Server {
	if log == nil {
		log = logx.L()
	}
	return &Server{quotes: quotes, health: health, log: log}
}

func (s *Server) GetQuote(w http.ResponseWriter, r *http.Request) {
	params, err := bindGetQuoteParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	force := params.ForceRefresh != nil && *params.ForceRefresh

	q, err := s.quotes.GetQuote(r.Context(), params.Symbol, force)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, toQuoteResponse(q))
	case errors.Is(err, application.ErrInvalidSymbol):
		writeError(w, http.StatusBadRequest, "symbol is required and must be a valid ticker")
	case errors.Is(err, application.ErrExternalUnavailable):
		writeError(w, http.StatusServiceUnavailable, "quote unavailable: market data provider failed and no cached quote exists")
	default:
		s.log.Error("http.get_quote_failed", zap.String("symbol", params.Symbol), zap.Error(err))
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	st := s.health.Check(r.Context())
	code := http.StatusOK
	if st.Status != domain.HealthOK {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, toHealthResponse(st))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Code: status, Message: msg})
}
