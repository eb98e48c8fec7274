package httpapi

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"inventaris/internal/domain"
)

type metrics struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	transactions *prometheus.CounterVec
	units        *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_ms",
			Help:    "Duration of HTTP requests in ms",
			Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600},
		}, []string{"method", "path"}),
		transactions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "inventaris_transactions_created_total",
			Help: "Transactions created, by type",
		}, []string{"type"}),
		units: f.NewCounterVec(prometheus.CounterOpts{
			Name: "inventaris_stock_units_moved_total",
			Help: "Stock units moved by created transactions, by type",
		}, []string{"type"}),
	}
}

func (m *metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, path).Observe(float64(time.Since(start).Milliseconds()))
	}
}

func (m *metrics) transactionCreated(t *domain.Transaction) {
	m.transactions.WithLabelValues(string(t.Type)).Inc()
	var units int64
	for _, it := range t.Items {
		units += it.Quantity
	}
	m.units.WithLabelValues(string(t.Type)).Add(float64(units))
}
