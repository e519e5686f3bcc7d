package web

import (
	"errors"
	"net/http"
	"net/http/pprof"
	rpprof "runtime/pprof"
	"strconv"
	"sync"

	"crtsubs/features/web/middlewares"
	"crtsubs/internal/collector"
	"crtsubs/internal/config"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
	"github.com/unrolled/secure"
	"github.com/ziflex/lecho/v3"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

// Application errors
var (
	ErrApplicationNotInitialized = errors.New("application not initialized")
	ErrRoutesMapFailed           = errors.New("routes configuration failed")
	ErrMetricCollectorFailed     = errors.New("metric collector configuration failed")
)

var (
	onceApplication sync.Once
	application     *Application
)

// Application holds the Echo instance, its config, logger and services.
type Application struct {
	Echo     *echo.Echo
	config   *config.ServerConfig
	logger   *lecho.Logger
	services *Services
	// request metrics live in their own registry
	httpMetrics *prometheus.Registry
}

// GetApplication retrieves the singleton instance of Application.
func GetApplication() (*Application, error) {
	if application == nil {
		return nil, ErrApplicationNotInitialized
	}
	return application, nil
}

// NewApplication builds the shared Application once.
func NewApplication(cfg *config.ServerConfig, svcs *Services) (*Application, error) {
	var initErr error
	onceApplication.Do(func() {
		application, initErr = newApplication(cfg, svcs)
	})

	return application, initErr
}

func newApplication(cfg *config.ServerConfig, svcs *Services) (*Application, error) {
	e := echo.New()
	e.HideBanner = true
	e.Server.Addr = ":" + strconv.Itoa(cfg.Port)
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout
	log.Info().Str("address", e.Server.Addr).Msg("Server address")

	app := &Application{
		Echo:        e,
		config:      cfg,
		services:    svcs,
		httpMetrics: prometheus.NewRegistry(),
	}

	app.configureLogger()
	app.configureMiddleware()

	if err := app.ConfigureRoutes(); err != nil {
		log.Err(err).Msg("Routes configuration error")
		return nil, errors.Join(ErrRoutesMapFailed, err)
	}

	if config.IsDevMode() {
		app.ConfigurePprof()
	}

	if err := app.configureMetricCollector(); err != nil {
		log.Err(err).Msg("Metric collector configuration error")
		return nil, errors.Join(ErrMetricCollectorFailed, err)
	}

	return app, nil
}

func (app *Application) configureMetricCollector() error {
	collector.NewMetricsCollector([]string{app.services.Enumerator.SourceName()})

	mc, err := collector.GetMetricsCollector()
	if err != nil {
		log.Err(err).Msg("Failed to get metrics collector")
		return err
	}

	mc.MapWebMetrics(app.Echo)

	// OpenTelemetry metrics are served from the default registry the exporter writes to
	app.Echo.GET("/otel-metrics", echo.WrapHandler(promhttp.Handler()))
	log.Info().Msg("OpenTelemetry metrics endpoint configured at /otel-metrics")

	app.Echo.GET("/metrics/http", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: app.httpMetrics,
	}))

	return nil
}

func (app *Application) configureMiddleware() {
	e := app.Echo

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return xid.New().String()
		},
	}))

	e.Use(otelecho.Middleware("crtsubs"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "crtsubs_http",
		Registerer: app.httpMetrics,
	}))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		BrowserXssFilter:   true,
		ContentTypeNosniff: true,
	})
	e.Use(echo.WrapMiddleware(secureMiddleware.Handler))

	e.Use(lecho.Middleware(lecho.Config{Logger: app.logger}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: app.config.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodHead},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
		},
	}))

	e.Use(middlewares.RequestLogger())
	e.Pre(middleware.RemoveTrailingSlash())

	middlewares.ConfigureValidator(e)
}

func (app *Application) configureLogger() {
	lechoLogger := lecho.From(log.Logger, lecho.WithTimestamp())
	app.Echo.Logger = lechoLogger
	app.logger = lechoLogger
}

// ConfigurePprof exposes the runtime profiles under /debug/pprof.
func (app *Application) ConfigurePprof() {
	pprofGroup := app.Echo.Group("/debug/pprof")

	pprofGroup.GET("", echo.WrapHandler(http.HandlerFunc(pprof.Index)))
	pprofGroup.GET("/cmdline", echo.WrapHandler(http.HandlerFunc(pprof.Cmdline)))
	pprofGroup.GET("/profile", echo.WrapHandler(http.HandlerFunc(pprof.Profile)))
	pprofGroup.GET("/symbol", echo.WrapHandler(http.HandlerFunc(pprof.Symbol)))
	pprofGroup.GET("/trace", echo.WrapHandler(http.HandlerFunc(pprof.Trace)))

	for _, profile := range rpprof.Profiles() {
		name := profile.Name()
		pprofGroup.GET("/"+name, echo.WrapHandler(pprof.Handler(name)))
	}
}
