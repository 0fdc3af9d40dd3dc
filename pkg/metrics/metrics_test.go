package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCategory(t *testing.T) {
	assert.Equal(t, "2xx", statusCategory(201))
	assert.Equal(t, "3xx", statusCategory(304))
	assert.Equal(t, "4xx", statusCategory(404))
	assert.Equal(t, "5xx", statusCategory(502))
}

func TestMiddleware_CountsByRoutePattern(t *testing.T) {
	Register()

	app := fiber.New()
	app.Use(Middleware())
	app.Get("/products/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/missing/:id", func(c *fiber.Ctx) error { return fiber.ErrNotFound })

	before := testutil.ToFloat64(RequestCounter.WithLabelValues("GET", "/products/:id", "200"))
	resp, err := app.Test(httptest.NewRequest("GET", "/products/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, before+1, testutil.ToFloat64(RequestCounter.WithLabelValues("GET", "/products/:id", "200")))

	before = testutil.ToFloat64(RequestCounter.WithLabelValues("GET", "/missing/:id", "404"))
	_, err = app.Test(httptest.NewRequest("GET", "/missing/1", nil))
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(RequestCounter.WithLabelValues("GET", "/missing/:id", "404")))
}

func TestHandler_ExposesRegistry(t *testing.T) {
	Register()

	app := fiber.New()
	app.Get("/metrics", Handler())

	AIAnalyses.WithLabelValues("mock").Inc()
	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
