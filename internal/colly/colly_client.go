package colly

import (
	"crtsubs/internal/config"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog/log"
)

var ErrCollyNotInitialized = errors.New("colly client is not initialized")

var (
	client *colly.Collector
	once   sync.Once
	err    error
)

// InitCollyClient returns the shared collector, building it from the crt.sh settings on first use.
func InitCollyClient() (*colly.Collector, error) {
	once.Do(func() {
		cfg := config.GetConfig()
		if cfg == nil {
			err = ErrCollyNotInitialized
			return
		}
		client = NewCollyClient(&cfg.Crtsh)
		log.Debug().
			Str("user_agent", cfg.Crtsh.UserAgent).
			Dur("timeout", cfg.Crtsh.TimeOut).
			Msg("Colly client initialized")
	})
	return client, err
}

// NewCollyClient builds a synchronous collector. Requests are issued one at a
// time from the caller's goroutine, so Visit reports transport and status errors directly.
func NewCollyClient(settings *config.CrtshConfig) *colly.Collector {
	c := colly.NewCollector(
		colly.MaxBodySize(settings.MaxBodySize),
		colly.IgnoreRobotsTxt(),
		colly.AllowURLRevisit(),
		colly.UserAgent(settings.UserAgent),
	)
	if settings.TimeOut > 0 {
		c.SetRequestTimeout(settings.TimeOut)
	}

	maxRedirects := settings.MaxRedirects
	c.SetRedirectHandler(func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	})

	return c
}

func GetCollyClient() (*colly.Collector, error) {
	if client == nil {
		return nil, ErrCollyNotInitialized
	}
	return client, nil
}
