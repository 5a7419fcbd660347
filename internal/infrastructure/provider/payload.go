package provider

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"quotes-service/internal/domain"

	"github.com/shopspring/decimal"
)

// Keys a provider uses to answer 200 OK while refusing the request
// (rate limit, bad key, unknown function).
var rejectionKeys = []string{"Note", "Information", "Error Message"}

const globalQuoteKey = "Global Quote"

// rawQuote is either payload shape reduced to loosely typed fields.
type rawQuote struct {
	symbol    any
	price     any
	currency  any
	timestamp any
}

func parsePayload(body []byte, defaultCurrency string, now time.Time) (domain.ProviderQuote, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var top map[string]any
	if err := dec.Decode(&top); err != nil || top == nil {
		return domain.ProviderQuote{}, invalid("response is not a JSON object")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return domain.ProviderQuote{}, invalid("trailing data after JSON object")
	}

	for _, k := range rejectionKeys {
		if v, ok := top[k]; ok {
			return domain.ProviderQuote{}, &domain.ProviderError{
				Kind:    domain.ProviderRejected,
				Message: fmt.Sprintf("%s: %s", strings.ToLower(k), stringOf(v)),
			}
		}
	}

	raw, err := extract(top)
	if err != nil {
		return domain.ProviderQuote{}, err
	}

	symbol := strings.ToUpper(strings.TrimSpace(stringOf(raw.symbol)))
	if symbol == "" {
		return domain.ProviderQuote{}, invalid("missing symbol")
	}
	price, ok := decimalOf(raw.price)
	if !ok {
		return domain.ProviderQuote{}, invalid("missing or non-numeric price")
	}
	if !price.IsPositive() {
		return domain.ProviderQuote{}, invalid("price must be positive")
	}
	currency, err := domain.NormalizeCurrency(stringOf(raw.currency), defaultCurrency)
	if err != nil {
		return domain.ProviderQuote{}, invalid("invalid currency")
	}

	return domain.ProviderQuote{
		Symbol:     domain.Symbol(symbol),
		Price:      price,
		Currency:   currency,
		ObservedAt: timestampOf(raw.timestamp, now),
	}, nil
}

func extract(top map[string]any) (rawQuote, error) {
	if gq, ok := top[globalQuoteKey]; ok {
		m, ok := gq.(map[string]any)
		if !ok {
			return rawQuote{}, invalid("global quote is not an object")
		}
		if len(m) == 0 {
			return rawQuote{}, invalid("empty global quote")
		}
		return rawQuote{
			symbol:    m["01. symbol"],
			price:     m["05. price"],
			currency:  m["currency"],
			timestamp: m["07. latest trading day"],
		}, nil
	}
	ts := top["timestampUtc"]
	if ts == nil {
		ts = top["timestamp"]
	}
	return rawQuote{
		symbol:    top["symbol"],
		price:     top["price"],
		currency:  top["currency"],
		timestamp: ts,
	}, nil
}

func stringOf(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func decimalOf(v any) (decimal.Decimal, bool) {
	s := strings.TrimSpace(stringOf(v))
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// timestampOf resolves v to UTC. A bare date is midnight UTC. Unix seconds
// (or milliseconds) are accepted. Anything unresolvable yields now.
func timestampOf(v any, now time.Time) time.Time {
	s := strings.TrimSpace(stringOf(v))
	if s == "" {
		return now
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
		if n > 1e12 {
			return time.UnixMilli(n).UTC()
		}
		return time.Unix(n, 0).UTC()
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return now
}

func invalid(msg string) error {
	return &domain.ProviderError{Kind: domain.ProviderPayloadInvalid, Message: msg}
}
