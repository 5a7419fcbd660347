package domain

import (
	"regexp"
	"strings"
	"unicode"
)

type Symbol string

func (s Symbol) String() string { return string(s) }

// NormalizeSymbol trims and upper-cases raw. The result is the store key.
// Any ticker spelling the provider might know is accepted; only blank input
// and control characters are refused.
func NormalizeSymbol(raw string) (Symbol, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" || strings.IndexFunc(s, unicode.IsControl) >= 0 {
		return "", ErrInvalidSymbol
	}
	return Symbol(s), nil
}

var currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

// NormalizeCurrency upper-cases raw and returns fallback when raw is blank.
func NormalizeCurrency(raw, fallback string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(raw))
	if c == "" {
		c = strings.ToUpper(strings.TrimSpace(fallback))
	}
	if !currencyRe.MatchString(c) {
		return "", ErrInvalidCurrency
	}
	return c, nil
}
