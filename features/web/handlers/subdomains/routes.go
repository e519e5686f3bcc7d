package subdomains

import (
	"errors"

	"crtsubs/features/store"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

var ErrNoLookup = errors.New("subdomain routes need a lookup service")

func MapSubdomainRoutes(e *echo.Echo, lookup Lookuper, repo store.SubdomainRepository) error {
	if lookup == nil {
		return ErrNoLookup
	}
	handler := NewSubdomainsHandler(lookup, repo)

	g := e.Group("/api/v1/subdomains")
	g.GET("", handler.Lookup)
	log.Info().Msg("Subdomain routes mapped successfully. at /api/v1/subdomains")

	if repo != nil {
		g.GET("/stored", handler.Stored)
		log.Info().Msg("Stored subdomain route mapped at /api/v1/subdomains/stored")
	}

	return nil
}
