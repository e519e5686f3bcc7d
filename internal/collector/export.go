package collector

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MapWebMetrics serves the per-source lookup status as JSON on /metrics and
// the pipeline counters in the Prometheus text format on /metrics/prometheus.
func (mc *MetricsCollector) MapWebMetrics(e *echo.Echo) {
	e.GET("/metrics", func(c echo.Context) error {
		return c.JSON(http.StatusOK, mc.GetAllSourceMetrics())
	})
	e.GET("/metrics/prometheus", echo.WrapHandler(promhttp.Handler()))
}
