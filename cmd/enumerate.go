package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"crtsubs/features/enumerator"
	"crtsubs/features/output"
	"crtsubs/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

var ErrListFile = errors.New("cannot read domain list")

// EnumerateFlags are the flags of the root command.
var EnumerateFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "domain",
		Aliases: []string{"d"},
		Usage:   "Single domain to fetch subdomains for.",
	},
	&cli.StringFlag{
		Name:    "list",
		Aliases: []string{"l"},
		Usage:   "File containing a list of domains to fetch subdomains for, one per line.",
	},
	&cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output file to save subdomains. Overwritten for -d, appended to for -l.",
	},
	&cli.IntFlag{
		Name:    "concurrency",
		Aliases: []string{"c"},
		Usage:   "Number of domains looked up at the same time.",
	},
	&cli.BoolFlag{
		Name:  "cache",
		Usage: "Cache crt.sh responses on disk (cache.badger_path) for the configured TTL, so later runs reuse them.",
	},
	&cli.StringFlag{
		Name:  "endpoint",
		Usage: "crt.sh base URL.",
	},
}

// Enumerate is the root action: look up one domain (-d) or every domain in a file (-l).
func Enumerate(c *cli.Context) error {
	console := output.NewConsole(c.App.Writer)

	domain := strings.TrimSpace(c.String("domain"))
	listFile := c.String("list")

	if domain == "" && listFile == "" {
		return console.Usage()
	}
	if domain != "" && listFile != "" {
		log.Warn().
			Str("domain", domain).
			Str("list", listFile).
			Msg("Both -d and -l given, using -d")
	}

	cfg, err := loadConfig(enumerateOverrides(c))
	if err != nil {
		return err
	}

	enum, release, err := buildEnumerator(c.Context, cfg)
	if err != nil {
		return err
	}
	defer release()

	if domain != "" {
		return enumerateDomain(c, enum, console, domain, c.String("output"))
	}
	return enumerateList(c, enum, console, listFile, c.String("output"))
}

func enumerateOverrides(c *cli.Context) func(*config.Config) {
	return func(cfg *config.Config) {
		if c.IsSet("concurrency") {
			cfg.Collector.Concurrency = c.Int("concurrency")
		}
		if c.Bool("cache") {
			cfg.Cache.Enabled = true
		}
		if c.IsSet("endpoint") {
			cfg.Crtsh.Endpoint = c.String("endpoint")
		}
	}
}

func enumerateDomain(c *cli.Context, enum *enumerator.Enumerator, console *output.Console, domain, outputFile string) error {
	var sink enumerator.Sink = output.Discard
	if outputFile != "" {
		sink = output.NewFileSink(outputFile, output.Overwrite)
	}

	batch, err := enum.Run(c.Context, []string{domain}, sink)
	if err != nil {
		return err
	}

	if outputFile != "" {
		log.Info().
			Str("file", outputFile).
			Int("subdomains", len(batch.Unique())).
			Msg("Results written")
		return nil
	}

	return console.Subdomains(domain, batch.Unique())
}

func enumerateList(c *cli.Context, enum *enumerator.Enumerator, console *output.Console, listFile, outputFile string) error {
	domains, err := readDomainList(listFile)
	if err != nil {
		log.Error().Err(err).Msg("Error reading domain list")
		return err
	}

	var sink enumerator.Sink = output.Discard
	if outputFile != "" {
		sink = output.NewFileSink(outputFile, output.Append)
	}

	batch, err := enum.Run(c.Context, domains, sink)
	if err != nil {
		return err
	}

	return console.Total(listFile, batch.Unique())
}

// readDomainList returns the non-blank, trimmed lines of path.
func readDomainList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: the file %s does not exist", ErrListFile, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrListFile, path, err)
	}

	return enumerator.CleanDomains(strings.Split(string(data), "\n")), nil
}
