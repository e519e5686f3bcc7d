package cmd

import (
	"crtsubs/features/store"
	"crtsubs/features/watch"
	"crtsubs/features/web"
	"crtsubs/internal/config"
	"crtsubs/internal/db"

	"github.com/ory/graceful"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

// WebServer is the CLI command that starts the web API server.
var WebServer = &cli.Command{
	Name:    "serve",
	Aliases: []string{"s"},
	Usage:   "Start web API server",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "Port to listen on. Defaults to server.port.",
		},
		&cli.BoolFlag{
			Name:  "watch",
			Usage: "Also run the watch schedule for watch.domains.",
		},
	},
	Action: serve,
}

func serve(c *cli.Context) (err error) {
	cfg, err := loadConfig(func(cfg *config.Config) {
		if c.IsSet("port") {
			cfg.Server.Port = c.Int("port")
		}
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to load config")
		return err
	}

	enum, release, err := buildEnumerator(c.Context, cfg)
	if err != nil {
		return err
	}
	defer release()

	var repo store.SubdomainRepository
	if dbConn, err := db.GetDB(); err != nil {
		log.Warn().Err(err).Msg("Store unavailable, stored subdomain route disabled")
	} else {
		repo = store.NewSQLiteRepository(dbConn)
		defer db.DeferClose()
	}

	svcs, err := web.NewServices(enum, repo)
	if err != nil {
		return err
	}

	app, err := web.NewApplication(&cfg.Server, svcs)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create web application")
		return err
	}

	if c.Bool("watch") && repo != nil {
		domains, err := watchDomains(c, &cfg.Watch)
		if err != nil {
			return err
		}
		w, err := watch.New(enum, repo, domains)
		if err != nil {
			return err
		}
		go func() {
			if err := schedule(c.Context, w, &cfg.Watch); err != nil {
				log.Error().Err(err).Msg("Watch schedule stopped")
			}
		}()
	}

	server := graceful.WithDefaults(app.Echo.Server)
	server.Handler = app.Echo
	log.Info().Msgf("Starting server on %s", server.Addr)

	if err = graceful.Graceful(server.ListenAndServe, server.Shutdown); err != nil {
		log.Error().Err(err).Msg("Failed to start server")
		return err
	}

	log.Info().Msg("Server stopped gracefully.")
	return nil
}
