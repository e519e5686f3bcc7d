package web

import (
	"net/http"

	"crtsubs/features/web/handlers/health"
	"crtsubs/features/web/handlers/problem"
	"crtsubs/features/web/handlers/subdomains"

	"github.com/labstack/echo/v4"
)

func (app *Application) ConfigureRoutes() error {
	e := app.Echo

	app.MapHome()
	if err := subdomains.MapSubdomainRoutes(e, app.services.Enumerator, app.services.Store); err != nil {
		return err
	}

	problem.MapRoutes(e)
	health.MapHealth(e, *app.config)

	return nil
}

func (app *Application) MapHome() {
	app.Echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "crtsubs: certificate transparency subdomain lookup")
	})
}
