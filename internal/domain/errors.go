package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSymbol   = errors.New("invalid symbol")
	ErrInvalidCurrency = errors.New("invalid currency")

	ErrProviderUnreachable    = errors.New("provider unreachable")
	ErrProviderRejected       = errors.New("provider rejected request")
	ErrProviderPayloadInvalid = errors.New("provider payload invalid")
)

type ProviderErrorKind string

const (
	ProviderUnreachable    ProviderErrorKind = "provider_unreachable"
	ProviderRejected       ProviderErrorKind = "provider_rejected"
	ProviderPayloadInvalid ProviderErrorKind = "provider_payload_invalid"
)

// ProviderError is the only error shape a ProviderGateway returns.
// Detail carries an HTTP status or a raw payload excerpt for logs; it never
// contains credentials.
type ProviderError struct {
	Kind       ProviderErrorKind
	Message    string
	Detail     string
	StatusCode int
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Kind, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error {
	switch e.Kind {
	case ProviderUnreachable:
		return ErrProviderUnreachable
	case ProviderRejected:
		return ErrProviderRejected
	default:
		return ErrProviderPayloadInvalid
	}
}

// ProviderErrorKindOf reports the failure kind of err, or "" when err did not
// come from a provider.
func ProviderErrorKindOf(err error) ProviderErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
