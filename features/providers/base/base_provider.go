package base

import (
	"context"
	"errors"
	"fmt"
	"io"

	"crtsubs/features/cache"
	"crtsubs/internal/collector"
	"crtsubs/internal/config"

	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// Fetch errors
	ErrFetchingSource = errors.New("error fetching source data")
	ErrVisitingURL    = errors.New("error visiting URL")
	ErrEmptyResponse  = errors.New("empty response from source")
	ErrCollyNotSet    = errors.New("colly client not set")

	// Parse errors
	ErrParsingData   = errors.New("error parsing source data")
	ErrInvalidFormat = errors.New("invalid data format from source")
)

// Provider is a hostname source queried per domain.
type Provider interface {
	GetName() string
	Source() string
	QueryURL(domain string) (string, error)
	Fetch(ctx context.Context, target string) ([]byte, error)
	Parse(data io.Reader) ([]string, error)
	Hostnames(ctx context.Context, domain string) ([]string, error)
	SetCollyClient(collyClient *colly.Collector)
	SetCache(responses *cache.ResponseCache)
}

type BaseProvider struct {
	Name        string
	SourceURL   string
	Settings    *config.CrtshConfig
	CollyClient *colly.Collector
	Responses   *cache.ResponseCache
}

// NewBaseProvider creates a new BaseProvider
func NewBaseProvider(name, sourceURL string, settings *config.CrtshConfig, collyClient *colly.Collector) *BaseProvider {
	return &BaseProvider{
		Name:        name,
		SourceURL:   sourceURL,
		Settings:    settings,
		CollyClient: collyClient,
	}
}

// GetName returns the provider name
func (b *BaseProvider) GetName() string {
	return b.Name
}

// Source returns the source URL
func (b *BaseProvider) Source() string {
	return b.SourceURL
}

// SetCollyClient sets the colly client
func (b *BaseProvider) SetCollyClient(collyClient *colly.Collector) {
	b.CollyClient = collyClient
}

// SetCache enables the response cache. nil disables it.
func (b *BaseProvider) SetCache(responses *cache.ResponseCache) {
	b.Responses = responses
}

// Fetch performs one GET of target and returns the whole body. Transport
// failures and error statuses are reported as ErrFetchingSource.
func (b *BaseProvider) Fetch(ctx context.Context, target string) ([]byte, error) {
	if b.CollyClient == nil {
		return nil, ErrCollyNotSet
	}

	tracer := otel.Tracer("crtsubs/providers")
	ctx, span := tracer.Start(ctx, "provider.fetch",
		trace.WithAttributes(
			attribute.String("provider", b.Name),
			attribute.String("url", target),
		),
	)
	defer span.End()

	var (
		responseBody []byte
		statusCode   int
	)

	c := b.CollyClient.Clone()
	c.Context = ctx
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	c.OnResponse(func(r *colly.Response) {
		responseBody = r.Body
		statusCode = r.StatusCode
		log.Debug().
			Str("source", target).
			Int("status_code", r.StatusCode).
			Int("bytes", len(responseBody)).
			Msg("Fetched data from source")
	})

	c.OnError(func(r *colly.Response, err error) {
		statusCode = r.StatusCode
		log.Debug().Err(err).
			Str("url", target).
			Int("status_code", r.StatusCode).
			Msg("Colly error when fetching data")
	})

	log.Debug().Str("provider", b.Name).Msgf("Fetching %s", target)
	if err := c.Visit(target); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if statusCode != 0 {
			return nil, fmt.Errorf("%w: %s returned status %d: %w", ErrFetchingSource, target, statusCode, err)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrVisitingURL, target, err)
	}

	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %w", ErrFetchingSource, err)
	}

	span.SetAttributes(
		attribute.Int("http.status_code", statusCode),
		attribute.Int("response.bytes", len(responseBody)),
	)

	if len(responseBody) == 0 {
		span.SetStatus(codes.Error, ErrEmptyResponse.Error())
		return nil, fmt.Errorf("%w: %s", ErrEmptyResponse, target)
	}

	return responseBody, nil
}

// FetchCached goes through the response cache when one is set. The boolean
// reports whether the body came from the cache.
func (b *BaseProvider) FetchCached(ctx context.Context, target string) ([]byte, bool, error) {
	if b.Responses == nil {
		body, err := b.Fetch(ctx, target)
		return body, false, err
	}

	body, hit, err := b.Responses.GetOrFetch(target, func() ([]byte, error) {
		return b.Fetch(ctx, target)
	})
	if hit {
		if mc, _ := collector.GetMetricsCollector(); mc != nil {
			mc.IncrementCacheHits(b.Name)
		}
	}
	return body, hit, err
}
