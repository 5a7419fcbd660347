package application

import (
	"time"

	"quotes-service/internal/domain"
)

type Verdict string

const (
	VerdictCacheHit Verdict = "cache_hit"
	VerdictRefresh  Verdict = "refresh"
)

// Policy decides whether a stored record can be served as is.
type Policy struct {
	StaleAfter time.Duration
}

func NewPolicy(staleAfterSeconds int) Policy {
	return Policy{StaleAfter: time.Duration(staleAfterSeconds) * time.Second}
}

// Classify is pure: the same inputs always give the same verdict. A missing
// record is a refresh, not a separate state, since the next step is the same.
// Records observed in the future (provider clock skew) count as fresh.
func (p Policy) Classify(rec *domain.QuoteRecord, forceRefresh bool, now time.Time) Verdict {
	if forceRefresh || rec == nil {
		return VerdictRefresh
	}
	age := now.Sub(rec.ObservedAt)
	if age <= 0 || age <= p.StaleAfter {
		return VerdictCacheHit
	}
	return VerdictRefresh
}
