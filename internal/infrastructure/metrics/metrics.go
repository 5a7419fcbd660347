package metrics

import (
	"time"

	"quotes-service/internal/application"
	"quotes-service/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the service's collectors. Several recorders may coexist
// when each is given its own registry.
type Recorder struct {
	Verdicts         *prometheus.CounterVec
	Outcomes         *prometheus.CounterVec
	ProviderCalls    *prometheus.CounterVec
	ProviderDuration prometheus.Histogram

	RefreshLastRun      prometheus.Gauge
	RefreshLastDuration prometheus.Gauge
	RefreshFailures     prometheus.Counter
}

var _ application.Metrics = (*Recorder)(nil)

func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		Verdicts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "quotes_verdicts_total",
			Help: "Cache policy verdicts per GetQuote call",
		}, []string{"verdict"}),
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "quotes_outcomes_total",
			Help: "How each GetQuote call was answered",
		}, []string{"outcome"}),
		ProviderCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "quotes_provider_calls_total",
			Help: "Provider fetches by result (ok or failure kind)",
		}, []string{"result"}),
		ProviderDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "quotes_provider_call_duration_seconds",
			Help:    "Provider fetch latency",
			Buckets: prometheus.DefBuckets,
		}),
		RefreshLastRun: f.NewGauge(prometheus.GaugeOpts{
			Name: "quotes_refresh_last_run_timestamp",
			Help: "Unix timestamp of the last completed refresh run",
		}),
		RefreshLastDuration: f.NewGauge(prometheus.GaugeOpts{
			Name: "quotes_refresh_last_duration_seconds",
			Help: "Duration of the last completed refresh run",
		}),
		RefreshFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "quotes_refresh_failures_total",
			Help: "Symbols that could not be answered during refresh runs",
		}),
	}
}

func (r *Recorder) Verdict(v application.Verdict) { r.Verdicts.WithLabelValues(string(v)).Inc() }
func (r *Recorder) Outcome(o application.Outcome) { r.Outcomes.WithLabelValues(string(o)).Inc() }

func (r *Recorder) ProviderCall(kind domain.ProviderErrorKind, took time.Duration) {
	result := "ok"
	if kind != "" {
		result = string(kind)
	}
	r.ProviderCalls.WithLabelValues(result).Inc()
	r.ProviderDuration.Observe(took.Seconds())
}

func (r *Recorder) RefreshRun(startedAt time.Time, failures int) {
	r.RefreshLastDuration.Set(time.Since(startedAt).Seconds())
	r.RefreshLastRun.Set(float64(time.Now().Unix()))
	r.RefreshFailures.Add(float64(failures))
}
