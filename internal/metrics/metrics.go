// Package metrics exports Prometheus metrics for searches and per-source scrapes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"omnisearch/internal/catalog"
	"omnisearch/internal/scraper"
)

// Metrics holds the search metrics.
type Metrics struct {
	ScrapeRequests *prometheus.CounterVec
	ScrapeDuration *prometheus.HistogramVec
	SearchRequests *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the metrics on reg. Pass prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ScrapeRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scrape_requests_total",
			Help: "Source scrapes by outcome (ok, empty, missing_config, failed)",
		}, []string{"source", "outcome"}),
		ScrapeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scrape_duration_seconds",
			Help:    "Time spent scraping one source",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"source"}),
		SearchRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "Searches by result (ok, invalid, error)",
		}, []string{"result"}),
		gatherer: reg,
	}
}

// ObserveScrape implements scraper.Observer.
func (m *Metrics) ObserveScrape(source catalog.SourceKey, outcome scraper.Outcome, elapsed time.Duration) {
	m.ScrapeRequests.WithLabelValues(source.String(), string(outcome)).Inc()
	m.ScrapeDuration.WithLabelValues(source.String()).Observe(elapsed.Seconds())
}

// ObserveSearch counts one finished search.
func (m *Metrics) ObserveSearch(result string) {
	m.SearchRequests.WithLabelValues(result).Inc()
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
