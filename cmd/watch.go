package cmd

import (
	"context"
	"errors"

	"crtsubs/features/enumerator"
	"crtsubs/features/output"
	"crtsubs/features/store"
	"crtsubs/features/watch"
	"crtsubs/internal/config"
	"crtsubs/internal/db"
	"crtsubs/internal/runner"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

// WatchCommand re-enumerates a set of domains on a schedule and reports new subdomains.
var WatchCommand = &cli.Command{
	Name:    "watch",
	Aliases: []string{"w"},
	Usage:   "Watch domains for newly issued subdomains",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "domain",
			Aliases: []string{"d"},
			Usage:   "Domain to watch (repeatable). Defaults to watch.domains.",
		},
		&cli.StringFlag{
			Name:    "list",
			Aliases: []string{"l"},
			Usage:   "File of domains to watch. Defaults to watch.list_file.",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Append new subdomains to this file.",
		},
		&cli.StringFlag{
			Name:  "cron",
			Usage: "Cron schedule of the watch pass. Defaults to watch.cron_schedule.",
		},
		&cli.StringFlag{
			Name:  "db",
			Usage: "SQLite database file. Defaults to store.path.",
		},
		&cli.BoolFlag{
			Name:  "once",
			Usage: "Run a single pass and exit.",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Report new subdomains without recording them.",
		},
	},
	Action: watchAction,
}

func watchAction(c *cli.Context) error {
	cfg, err := loadConfig(func(cfg *config.Config) {
		if c.IsSet("cron") {
			cfg.Watch.CronSchedule = c.String("cron")
		}
		if c.IsSet("db") {
			cfg.Store.Path = c.String("db")
		}
	})
	if err != nil {
		return err
	}

	domains, err := watchDomains(c, &cfg.Watch)
	if err != nil {
		return err
	}

	enum, release, err := buildEnumerator(c.Context, cfg)
	if err != nil {
		return err
	}
	defer release()

	dbConn, err := db.GetDB()
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to database")
		return err
	}
	defer db.DeferClose()

	notifiers := watch.Notifiers{output.NewConsole(c.App.Writer)}
	if path := c.String("output"); path != "" {
		notifiers = append(notifiers, output.NewFileSink(path, output.Append))
	}

	w, err := watch.New(enum, store.NewSQLiteRepository(dbConn), domains,
		watch.WithNotifier(notifiers),
		watch.WithDryRun(c.Bool("dry-run")),
	)
	if err != nil {
		return err
	}

	if c.Bool("once") {
		_, err := w.RunOnce(c.Context)
		return err
	}

	return schedule(c.Context, w, &cfg.Watch)
}

// schedule runs w on the configured cron schedule until ctx is done.
func schedule(ctx context.Context, w *watch.Watcher, cfg *config.WatchConfig) error {
	r, err := runner.InitializeRunner(ctx, []runner.Task{w}, cfg.CronSchedule)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize scheduler runner")
		return err
	}
	defer func() {
		if err := runner.ShutdownRunner(); err != nil {
			log.Error().Err(err).Msg("Failed to stop scheduler runner")
		}
	}()

	if cfg.RunAtStartup {
		log.Info().Msg("Running watch pass at startup")
		if err := r.RunTaskImmediately(w.Name()); err != nil && !enumerator.IsCanceled(err) {
			log.Error().Err(err).Msg("Startup watch pass failed")
		}
	}

	<-ctx.Done()
	log.Info().Msg("Stopping watch")
	return nil
}

// watchDomains merges flag domains with the list file; config is the fallback
// when no flag is given.
func watchDomains(c *cli.Context, cfg *config.WatchConfig) ([]string, error) {
	domains := c.StringSlice("domain")
	listFile := c.String("list")

	if len(domains) == 0 && listFile == "" {
		domains = cfg.Domains
		listFile = cfg.ListFile
	}

	if listFile != "" {
		fromFile, err := readDomainList(listFile)
		if err != nil {
			return nil, err
		}
		domains = append(domains, fromFile...)
	}

	domains = enumerator.CleanDomains(domains)
	if len(domains) == 0 {
		return nil, errors.New("no domains to watch: use -d, -l or watch.domains")
	}
	return domains, nil
}
