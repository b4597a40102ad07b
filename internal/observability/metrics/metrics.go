// Package metrics exposes prometheus instruments for the HTTP layer and
// the order/billing domain.
package metrics

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// HTTPMetrics instruments request throughput and latency.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// Metrics exposes application-level instruments.
type Metrics struct {
	SessionsStarted prometheus.Counter
	OrdersPlaced    prometheus.Counter
	OrdersCancelled prometheus.Counter
	BillsFinalized  prometheus.Counter
	PaymentsTotal   *prometheus.CounterVec
}

func NewHTTPMetrics() *HTTPMetrics {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dineops_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dineops_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	prometheus.MustRegister(m.requests, m.duration)
	return m
}

func New() *Metrics {
	m := &Metrics{
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dineops_sessions_started_total",
			Help: "Dining sessions opened.",
		}),
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dineops_orders_placed_total",
			Help: "Orders placed.",
		}),
		OrdersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dineops_orders_cancelled_total",
			Help: "Orders cancelled.",
		}),
		BillsFinalized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dineops_bills_finalized_total",
			Help: "Bills finalized.",
		}),
		PaymentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dineops_payments_total",
			Help: "Payments recorded by method.",
		}, []string{"method"}),
	}
	prometheus.MustRegister(
		m.SessionsStarted,
		m.OrdersPlaced,
		m.OrdersCancelled,
		m.BillsFinalized,
		m.PaymentsTotal,
	)
	return m
}

// GinMiddleware records per-request metrics.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		method := c.Request.Method
		m.requests.WithLabelValues(route, method, statusLabel(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

var Module = fx.Module("metrics",
	fx.Provide(NewHTTPMetrics, New),
)
