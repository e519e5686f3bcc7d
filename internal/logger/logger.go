package logger

import (
	"crtsubs/internal/config"
	"io"
	stdlog "log"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	zerologger zerolog.Logger
)

type logWrapper struct {
	zerolog.Logger
}

func (l logWrapper) Write(p []byte) (n int, err error) {
	n = len(p)
	if n > 0 && p[n-1] == '\n' {
		p = p[:n-1]
	}
	l.Info().Msg(string(p))
	return
}

// InitializeLogger installs the global zerolog logger on stderr so stdout stays
// reserved for results.
func InitializeLogger() {
	InitializeLoggerTo(os.Stderr)
}

func InitializeLoggerTo(out *os.File) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(level())

	var w io.Writer = out
	if isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()) {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	zerologger = zerolog.New(w).With().Timestamp().Logger()
	if config.IsDevMode() {
		zerologger = zerologger.With().Caller().Logger()
	}

	log.Logger = zerologger

	stdlog.SetFlags(0)
	stdlog.SetOutput(logWrapper{zerologger})
}

func level() zerolog.Level {
	if config.IsDevMode() {
		return zerolog.DebugLevel
	}
	cfg := config.GetConfig()
	if cfg == nil {
		return zerolog.InfoLevel
	}
	return cfg.APP.Level()
}
