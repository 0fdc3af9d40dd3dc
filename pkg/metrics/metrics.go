package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	StatusCategoryCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_status_category_total",
			Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
		},
		[]string{"category"},
	)

	PricingRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocky_pricing_runs_total",
			Help: "Pricing passes by outcome",
		},
		[]string{"outcome"},
	)

	PricingProducts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocky_pricing_products_total",
			Help: "Products touched by the pricing job, by action (discounted, expired, failed)",
		},
		[]string{"action"},
	)

	PricingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stocky_pricing_duration_seconds",
			Help:    "Duration of a pricing pass",
			Buckets: prometheus.DefBuckets,
		},
	)

	BlockchainCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocky_blockchain_calls_total",
			Help: "Wallet operations by method and outcome (ok, error, simulated)",
		},
		[]string{"method", "outcome"},
	)

	AIAnalyses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocky_ai_analyses_total",
			Help: "Image analyses by source (api, mock, cache)",
		},
		[]string{"source"},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			StatusCategoryCounter,
			PricingRuns,
			PricingProducts,
			PricingDuration,
			BlockchainCalls,
			AIAnalyses,
		)
	})
}

func statusCategory(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}

// Middleware records request count and latency, labelled by route pattern
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else if se, ok := err.(interface{ HTTPStatus() int }); ok {
				status = se.HTTPStatus()
			}
		}

		path := c.Route().Path
		method := c.Method()

		RequestCounter.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		RequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		StatusCategoryCounter.WithLabelValues(statusCategory(status)).Inc()

		return err
	}
}

// Handler exposes the default registry on a Fiber route
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
