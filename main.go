package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"crtsubs/cmd"
	"crtsubs/internal/config"
	"crtsubs/internal/logger"
	"crtsubs/internal/telemetry"

	stdlog "log"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const version = "v0.1.0"

var shutdownTelemetry telemetry.ShutdownFunc

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app().RunContext(ctx, os.Args); err != nil {
		stop()
		stdlog.Fatalf("error running the app: %v", err)
	}
}

func app() *cli.App {
	helpName := color.YellowString(filepath.Base(os.Args[0]))
	year := strconv.Itoa(time.Now().UTC().Year())

	app := &cli.App{
		Name:        "crtsubs",
		Usage:       "Fetch subdomains of a domain from crt.sh",
		HelpName:    helpName,
		Version:     version,
		Compiled:    time.Now().UTC(),
		Copyright:   "© " + year + " crtsubs authors",
		Description: "Enumerates the subdomains recorded in certificate transparency logs.",
		Flags:       cmd.EnumerateFlags,
		Action:      cmd.Enumerate,
		Commands:    cmd.Commands,
		Before:      before,
		After:       after,
	}

	app.Suggest = true
	return app
}

func before(c *cli.Context) error {
	if err := config.InitConfig(); err != nil {
		stdlog.Printf("error loading config: %v", err)
		return err
	}

	logger.InitializeLogger()

	shutdown, err := telemetry.InitTelemetry(c.Context, &config.GetConfig().Telemetry, "crtsubs", version)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize telemetry")
		return err
	}
	shutdownTelemetry = shutdown

	return nil
}

func after(c *cli.Context) error {
	if shutdownTelemetry == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdownTelemetry(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown telemetry")
	}
	return nil
}
