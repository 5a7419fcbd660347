package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"quotes-service/internal/domain"

	"github.com/oapi-codegen/runtime"
)

// GetQuoteParams are the query parameters of GET /quotes.
type GetQuoteParams struct {
	Symbol       string `form:"symbol" json:"symbol"`
	ForceRefresh *bool  `form:"forceRefresh,omitempty" json:"forceRefresh,omitempty"`
}

type QuoteResponse struct {
	Symbol        string      `json:"symbol"`
	Price         json.Number `json:"price"`
	Currency      string      `json:"currency"`
	ObservedAtUtc time.Time   `json:"observedAtUtc"`
	Source        string      `json:"source"`
}

type HealthResponse struct {
	Status                string `json:"status"`
	DatabaseOk            bool   `json:"databaseOk"`
	ExternalMarketOk      bool   `json:"externalMarketOk"`
	ExternalMarketMessage string `json:"externalMarketMessage,omitempty"`
}

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %v", e.ParamName, e.Err)
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

func bindGetQuoteParams(r *http.Request) (GetQuoteParams, error) {
	var params GetQuoteParams
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, true, "symbol", q, &params.Symbol); err != nil {
		return params, &InvalidParamFormatError{ParamName: "symbol", Err: err}
	}
	if err := runtime.BindQueryParameter("form", true, false, "forceRefresh", q, &params.ForceRefresh); err != nil {
		return params, &InvalidParamFormatError{ParamName: "forceRefresh", Err: err}
	}
	return params, nil
}

func toQuoteResponse(q domain.QuoteRecord) QuoteResponse {
	return QuoteResponse{
		Symbol:        q.Symbol.String(),
		Price:         json.Number(q.Price.String()),
		Currency:      q.Currency,
		ObservedAtUtc: q.ObservedAt.UTC(),
		Source:        string(q.Source),
	}
}

func toHealthResponse(h domain.HealthStatus) HealthResponse {
	return HealthResponse{
		Status:                h.Status,
		DatabaseOk:            h.DatabaseOK,
		ExternalMarketOk:      h.ExternalMarketOK,
		ExternalMarketMessage: h.ExternalMarketMessage,
	}
}
