package application

import (
	"errors"
	"fmt"

	"quotes-service/internal/domain"
)

// ErrInvalidSymbol is a caller error; it is never retried and never falls back.
var ErrInvalidSymbol = domain.ErrInvalidSymbol

var ErrExternalUnavailable = errors.New("external market data unavailable")

// ExternalUnavailableError is returned when the provider failed and no cached
// record exists to fall back to. Cause is the provider failure.
type ExternalUnavailableError struct {
	Symbol domain.Symbol
	Cause  error
}

func (e *ExternalUnavailableError) Error() string {
	return fmt.Sprintf("%s for %s: %v", ErrExternalUnavailable, e.Symbol, e.Cause)
}

func (e *ExternalUnavailableError) Unwrap() []error {
	return []error{ErrExternalUnavailable, e.Cause}
}
