package application

import (
	"context"
	"time"

	"quotes-service/internal/domain"

	"go.uber.org/zap"
)

const DefaultPingTimeout = 2 * time.Second

// HealthService reports store and provider reachability for readiness probes.
type HealthService struct {
	db                 Pinger
	gateway            ProviderGateway
	providerConfigured bool
	pingTimeout        time.Duration
	log                *zap.Logger
}

func NewHealthService(db Pinger, gateway ProviderGateway, providerConfigured bool, pingTimeout time.Duration, log *zap.Logger) *HealthService {
	if pingTimeout <= 0 {
		pingTimeout = DefaultPingTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HealthService{
		db:                 db,
		gateway:            gateway,
		providerConfigured: providerConfigured,
		pingTimeout:        pingTimeout,
		log:                log,
	}
}

func (h *HealthService) Check(ctx context.Context) domain.HealthStatus {
	st := domain.HealthStatus{Status: domain.HealthDegraded}

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			h.log.Warn("health.db_ping_failed", zap.Error(err))
		} else {
			st.DatabaseOK = true
		}
	}

	switch {
	case !h.providerConfigured || h.gateway == nil:
		st.ExternalMarketMessage = "external market base url not configured"
	default:
		pctx, cancel := context.WithTimeout(ctx, h.pingTimeout)
		err := h.gateway.Ping(pctx)
		cancel()
		if err != nil {
			h.log.Warn("health.provider_ping_failed", zap.Error(err))
			st.ExternalMarketMessage = err.Error()
		} else {
			st.ExternalMarketOK = true
		}
	}

	if st.DatabaseOK && st.ExternalMarketOK {
		st.Status = domain.HealthOK
	}
	return st
}
