package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the harvest pipeline.
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	RetriesTotal    prometheus.Counter
	ErrorsTotal     *prometheus.CounterVec
	PagesWalked     prometheus.Counter
	LinksFound      prometheus.Counter
	ProductsTotal   *prometheus.CounterVec
	ImagesSaved     prometheus.Counter
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_requests_total",
			Help: "Total HTTP requests issued by the harvester.",
		},
		[]string{"phase"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "harvester_request_duration_seconds",
			Help:    "HTTP request latency for harvester requests.",
			Buckets: prometheus.DefBuckets,
		},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "harvester_retries_total",
			Help: "Total number of retry attempts.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_errors_total",
			Help: "Total number of harvester errors by type.",
		},
		[]string{"error_type"},
	)
	pagesWalked := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "harvester_listing_pages_total",
			Help: "Total listing pages walked.",
		},
	)
	linksFound := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "harvester_links_discovered_total",
			Help: "Total product links discovered on listing pages.",
		},
	)
	productsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_products_total",
			Help: "Products processed by outcome (enriched, deduped, rejected).",
		},
		[]string{"outcome"},
	)
	imagesSaved := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "harvester_images_saved_total",
			Help: "Total product images saved to disk.",
		},
	)

	registry.MustRegister(requests, requestDuration, retries, errorsTotal,
		pagesWalked, linksFound, productsTotal, imagesSaved)

	return &Metrics{
		Registry:        registry,
		RequestsTotal:   requests,
		RequestDuration: requestDuration,
		RetriesTotal:    retries,
		ErrorsTotal:     errorsTotal,
		PagesWalked:     pagesWalked,
		LinksFound:      linksFound,
		ProductsTotal:   productsTotal,
		ImagesSaved:     imagesSaved,
	}
}

// IncRequest increments the requests total counter for a phase.
func (m *Metrics) IncRequest(phase string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(phase).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// IncRetries increments the retries counter.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// IncPages increments the listing pages counter.
func (m *Metrics) IncPages() {
	if m == nil {
		return
	}
	m.PagesWalked.Inc()
}

// AddLinks adds to the discovered links counter.
func (m *Metrics) AddLinks(n int) {
	if m == nil {
		return
	}
	m.LinksFound.Add(float64(n))
}

// IncProduct increments the products counter for an outcome label.
func (m *Metrics) IncProduct(outcome string) {
	if m == nil {
		return
	}
	m.ProductsTotal.WithLabelValues(outcome).Inc()
}

// IncImages increments the saved images counter.
func (m *Metrics) IncImages() {
	if m == nil {
		return
	}
	m.ImagesSaved.Inc()
}
