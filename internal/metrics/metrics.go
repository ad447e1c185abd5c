package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Scrape outcomes
const (
	OutcomeOK          = "ok"
	OutcomeInvalid     = "invalid_input"
	OutcomeUnsupported = "unsupported"
	OutcomeFetchError  = "fetch_error"
	OutcomeError       = "error"
)

// Registry holds the extraction metrics. A nil *Registry is valid and
// records nothing, so callers never need to guard.
type Registry struct {
	reg            *prometheus.Registry
	Scrapes        *prometheus.CounterVec
	FetchSeconds   *prometheus.HistogramVec
	FieldsFilled   *prometheus.CounterVec
	StrategyErrors *prometheus.CounterVec
}

// NewRegistry creates the collectors on a private Prometheus registry
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	scrapes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kvittering_scrapes_total",
		Help: "Listing scrape requests by platform and outcome.",
	}, []string{"platform", "outcome"})
	fetchSeconds := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kvittering_fetch_duration_seconds",
		Help:    "Time spent fetching listing pages.",
		Buckets: prometheus.DefBuckets,
	}, []string{"platform"})
	fieldsFilled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kvittering_fields_filled_total",
		Help: "Listing fields filled, by the cascade layer that filled them.",
	}, []string{"platform", "layer"})
	strategyErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kvittering_strategy_errors_total",
		Help: "Absorbed extraction strategy failures.",
	}, []string{"platform", "strategy"})

	r.MustRegister(scrapes, fetchSeconds, fieldsFilled, strategyErrors)
	return &Registry{
		reg:            r,
		Scrapes:        scrapes,
		FetchSeconds:   fetchSeconds,
		FieldsFilled:   fieldsFilled,
		StrategyErrors: strategyErrors,
	}
}

// ObserveScrape counts one dispatcher call by outcome
func (r *Registry) ObserveScrape(platform, outcome string) {
	if r == nil {
		return
	}
	r.Scrapes.WithLabelValues(platform, outcome).Inc()
}

// ObserveFetch records how long a page fetch took
func (r *Registry) ObserveFetch(platform string, d time.Duration) {
	if r == nil {
		return
	}
	r.FetchSeconds.WithLabelValues(platform).Observe(d.Seconds())
}

// ObserveFields counts the fields a cascade layer filled
func (r *Registry) ObserveFields(platform, layer string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.FieldsFilled.WithLabelValues(platform, layer).Add(float64(n))
}

// ObserveStrategyError counts a strategy failure the cascade absorbed
func (r *Registry) ObserveStrategyError(platform, strategy string) {
	if r == nil {
		return
	}
	r.StrategyErrors.WithLabelValues(platform, strategy).Inc()
}

// Handler serves the registry in the Prometheus text format
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
