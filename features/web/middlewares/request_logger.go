package middlewares

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RequestLogger logs one line per request, tagged with the request ID and the
// queried domain when there is one.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			err := next(c)

			res := c.Response()
			entry := log.With().
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("remote_ip", c.RealIP()).
				Int("status", res.Status).
				Int64("bytes_out", res.Size).
				Dur("latency", time.Since(start))
			if domain := c.QueryParam("domain"); domain != "" {
				entry = entry.Str("domain", domain)
			}
			logger := entry.Logger()

			levelFor(logger, res.Status, err).Msg("Request served")
			return err
		}
	}
}

func levelFor(logger zerolog.Logger, status int, err error) *zerolog.Event {
	switch {
	case err != nil:
		return logger.Error().Err(err)
	case status >= 500:
		return logger.Error()
	case status >= 400:
		return logger.Warn()
	default:
		return logger.Debug()
	}
}
