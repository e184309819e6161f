package daemon

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/GiGiDKR/tokenwatch/internal/model"
)

// Prometheus metrics served at /metrics.
var (
	tokensUsedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tokenwatch",
		Name:      "tokens_used",
		Help:      "Tokens consumed in the active session block",
	})

	tokenLimitGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tokenwatch",
		Name:      "token_limit",
		Help:      "Effective token limit for the current plan",
	})

	burnRateGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tokenwatch",
		Name:      "burn_rate_tokens_per_minute",
		Help:      "Trailing one-hour token burn rate",
	})

	usagePercentGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tokenwatch",
		Name:      "usage_percent",
		Help:      "Tokens used as a percentage of the effective limit",
	})

	sessionActiveGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tokenwatch",
		Name:      "session_active",
		Help:      "1 when an active session block exists, 0 otherwise",
	})

	pollsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tokenwatch",
		Name:      "polls_total",
		Help:      "Total evaluation polls",
	})

	pollErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tokenwatch",
		Name:      "poll_errors_total",
		Help:      "Total polls that failed evaluation",
	})

	eventsPublishedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tokenwatch",
		Name:      "events_published_total",
		Help:      "Total events published to subscribers",
	})
)

var metricsRegistered bool

// registerMetrics registers collectors with the default registry. Safe to
// call once per process; Run does this before serving.
func registerMetrics() {
	if metricsRegistered {
		return
	}
	prometheus.MustRegister(
		tokensUsedGauge,
		tokenLimitGauge,
		burnRateGauge,
		usagePercentGauge,
		sessionActiveGauge,
		pollsTotal,
		pollErrorsTotal,
		eventsPublishedTotal,
	)
	metricsRegistered = true
}

func observeReport(r model.Report) {
	tokensUsedGauge.Set(float64(r.TokensUsed))
	tokenLimitGauge.Set(float64(r.TokenLimit))
	burnRateGauge.Set(r.BurnRatePerMin)
	usagePercentGauge.Set(r.UsagePercent)
	if r.Status == model.StatusActive {
		sessionActiveGauge.Set(1)
	} else {
		sessionActiveGauge.Set(0)
	}
}
