package health

import (
	"net/http"

	"crtsubs/internal/collector"
	"crtsubs/internal/config"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// MapHealth sets up a simple healthcheck endpoint if enabled in config.
func MapHealth(e *echo.Echo, cfg config.ServerConfig) {
	if !cfg.HealthCheck {
		log.Info().Msg("Health check disabled")
		return
	}
	g := e.Group("/health")
	g.GET("/status", StatusCheck)
	log.Info().Msg("Health check enabled at /health/status")
}

// StatusCheck reports liveness along with the lookup status of every source.
func StatusCheck(c echo.Context) error {
	body := map[string]any{
		"status": "ok",
	}

	if mc, err := collector.GetMetricsCollector(); err == nil {
		sources := map[string]string{}
		for name, sm := range mc.GetAllSourceMetrics() {
			sources[name] = sm.LookupStatus
		}
		body["sources"] = sources
	}

	return c.JSON(http.StatusOK, body)
}
