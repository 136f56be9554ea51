// Package metrics holds the prometheus collectors for stock and checkout
// activity. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the collector set
type Metrics struct {
	registry *prometheus.Registry

	StockMovements   *prometheus.CounterVec
	Checkouts        *prometheus.CounterVec
	CouponRejections *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		StockMovements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "stock_movements_total",
			Help:      "Stock movements appended to the ledger, by movement type.",
		}, []string{"type"}),
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "checkouts_total",
			Help:      "Checkout attempts, by outcome.",
		}, []string{"outcome"}),
		CouponRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "coupon_rejections_total",
			Help:      "Coupon validations that failed, by reason code.",
		}, []string{"reason"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		m.StockMovements,
		m.Checkouts,
		m.CouponRejections,
		m.HTTPDuration,
		collectors.NewGoCollector(),
	)
	return m
}

// StockMoved counts one ledger movement
func (m *Metrics) StockMoved(movementType string) {
	if m == nil {
		return
	}
	m.StockMovements.WithLabelValues(movementType).Inc()
}

// CheckoutFinished counts a checkout outcome ("placed", "rejected", "failed")
func (m *Metrics) CheckoutFinished(outcome string) {
	if m == nil {
		return
	}
	m.Checkouts.WithLabelValues(outcome).Inc()
}

// CouponRejected counts a coupon rejection
func (m *Metrics) CouponRejected(reason string) {
	if m == nil {
		return
	}
	m.CouponRejections.WithLabelValues(reason).Inc()
}

// ObserveHTTP records a request duration
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler exposes the registry for scraping
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
