// Package metrics exposes report and click counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wadjakorntonsri/popular-clicks/pkg/core/domain"
)

const namespace = "popular_clicks"

// Collector holds all Prometheus metrics of the service.
type Collector struct {
	registry *prometheus.Registry

	ReportsTotal   *prometheus.CounterVec
	ReportDuration *prometheus.HistogramVec
	ClicksRecorded prometheus.Counter
	CacheLookups   *prometheus.CounterVec
}

// New creates a collector registered on its own registry, together with the
// Go runtime and process collectors.
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		ReportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reports_total",
				Help:      "Reports evaluated, by kind and outcome (ok, empty, error)",
			},
			[]string{"kind", "outcome"},
		),
		ReportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "report_duration_seconds",
				Help:      "Time spent resolving and aggregating one report",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"kind"},
		),
		ClicksRecorded: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "clicks_recorded_total",
				Help:      "Clicks appended to the click log",
			},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_cache_total",
				Help:      "Report cache lookups, by result (hit, miss, error)",
			},
			[]string{"result"},
		),
	}
}

// ObserveReport records one report evaluation.
func (c *Collector) ObserveReport(kind domain.ReportKind, outcome string, elapsed time.Duration) {
	c.ReportsTotal.WithLabelValues(string(kind), outcome).Inc()
	c.ReportDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

// ClickRecorded counts one stored click.
func (c *Collector) ClickRecorded() {
	c.ClicksRecorded.Inc()
}

// CacheLookup counts one report cache lookup.
func (c *Collector) CacheLookup(result string) {
	c.CacheLookups.WithLabelValues(result).Inc()
}

// Registry returns the registry the collector registered on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
