package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"quotes-service/internal/application"
	"quotes-service/internal/domain"
	"quotes-service/internal/infrastructure/httpx"

	"go.uber.org/zap"
)

const (
	globalQuotePath = "/query"
	excerptLen      = 256
	DefaultTimeout  = 10 * time.Second
	DefaultCurrency = "USD"
)

// MarketDataProvider fetches GLOBAL_QUOTE payloads from an Alpha Vantage
// compatible endpoint. One HTTP attempt per call.
type MarketDataProvider struct {
	BaseURL         string
	APIKey          string
	DefaultCurrency string
	Timeout         time.Duration
	Client          *httpx.Client
	Log             *zap.Logger

	now func() time.Time
}

var _ application.ProviderGateway = (*MarketDataProvider)(nil)

func (p *MarketDataProvider) FetchLatest(ctx context.Context, symbol domain.Symbol) (domain.ProviderQuote, error) {
	u, err := p.quoteURL(symbol)
	if err != nil {
		return domain.ProviderQuote{}, err
	}
	ctx, cancel := p.bound(ctx)
	defer cancel()

	status, body, err := p.client().Get(ctx, u)
	if err != nil {
		p.logger().Warn("provider.fetch_failed", zap.String("symbol", symbol.String()), zap.String("error", p.redact(cause(err))))
		return domain.ProviderQuote{}, p.unreachable(err)
	}
	if status < 200 || status > 299 {
		return domain.ProviderQuote{}, &domain.ProviderError{
			Kind:       domain.ProviderRejected,
			Message:    fmt.Sprintf("unexpected status %d", status),
			Detail:     p.redact(excerpt(body)),
			StatusCode: status,
		}
	}

	pq, err := parsePayload(body, p.currency(), p.clock())
	if err != nil {
		var pe *domain.ProviderError
		if errors.As(err, &pe) {
			pe.Message = p.redact(pe.Message)
			pe.Detail = p.redact(excerpt(body))
			pe.StatusCode = status
		}
		return domain.ProviderQuote{}, err
	}
	if pq.Symbol != symbol {
		p.logger().Debug("provider.symbol_mismatch",
			zap.String("requested", symbol.String()),
			zap.String("returned", pq.Symbol.String()),
		)
		pq.Symbol = symbol
	}
	pq.RawPayload = p.redact(string(body))
	return pq, nil
}

// Ping reports network reachability of BaseURL. Any HTTP status counts.
func (p *MarketDataProvider) Ping(ctx context.Context) error {
	if strings.TrimSpace(p.BaseURL) == "" {
		return &domain.ProviderError{Kind: domain.ProviderUnreachable, Message: "base url not configured"}
	}
	if _, _, err := p.client().Get(ctx, p.BaseURL); err != nil {
		return p.unreachable(err)
	}
	return nil
}

func (p *MarketDataProvider) quoteURL(symbol domain.Symbol) (string, error) {
	if strings.TrimSpace(p.BaseURL) == "" {
		return "", &domain.ProviderError{Kind: domain.ProviderUnreachable, Message: "base url not configured"}
	}
	u, err := url.Parse(p.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", &domain.ProviderError{Kind: domain.ProviderUnreachable, Message: "invalid base url"}
	}
	u.Path = strings.TrimRight(u.Path, "/") + globalQuotePath
	q := u.Query()
	q.Set("function", "GLOBAL_QUOTE")
	q.Set("symbol", symbol.String())
	if p.APIKey != "" {
		q.Set("apikey", p.APIKey)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (p *MarketDataProvider) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (p *MarketDataProvider) unreachable(err error) error {
	return &domain.ProviderError{Kind: domain.ProviderUnreachable, Message: p.redact(cause(err))}
}

// redact strips the API key, raw or query-escaped, from s.
func (p *MarketDataProvider) redact(s string) string {
	if p.APIKey == "" {
		return s
	}
	s = strings.ReplaceAll(s, p.APIKey, "***")
	return strings.ReplaceAll(s, url.QueryEscape(p.APIKey), "***")
}

var defaultClient = httpx.New(DefaultTimeout)

func (p *MarketDataProvider) client() *httpx.Client {
	if p.Client == nil {
		return defaultClient
	}
	return p.Client
}

func (p *MarketDataProvider) logger() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log
}

func (p *MarketDataProvider) currency() string {
	if p.DefaultCurrency == "" {
		return DefaultCurrency
	}
	return p.DefaultCurrency
}

func (p *MarketDataProvider) clock() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now().UTC()
}

// cause drops the *url.Error wrapper, whose text embeds the request URL.
func cause(err error) string {
	var ue *url.Error
	if errors.As(err, &ue) {
		err = ue.Err
	}
	return err.Error()
}

func excerpt(body []byte) string {
	if len(body) > excerptLen {
		body = body[:excerptLen]
	}
	return string(body)
}
