package config

import (
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

type ServerConfig struct {
	Scheme string `koanf:"scheme" default:"http"`
	Port   int    `koanf:"port" default:"8082" validate:"min=1,max=65535"`
	Host   string `koanf:"host" default:"localhost"`

	ReadTimeout     time.Duration `koanf:"read_timeout" default:"5s"`
	WriteTimeout    time.Duration `koanf:"write_timeout" default:"5m"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" default:"30s"`

	AllowOrigins []string `koanf:"alloworigins" default:"[]"`
	HealthCheck  bool     `koanf:"health_check" default:"true"`
}

func (s *ServerConfig) GetServerURL() string {
	return s.Scheme + "://" + s.Host + ":" + strconv.Itoa(s.Port)
}

type APPConfig struct {
	Environment string `koanf:"environment" default:"production" validate:"oneof=development production"`
	LogLevel    string `koanf:"log_level" default:"info"`
}

// Level parses LogLevel, falling back to info for unknown values.
func (a *APPConfig) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(a.LogLevel)
	if err != nil || a.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return level
}

// CrtshConfig controls how the certificate transparency search service is queried.
type CrtshConfig struct {
	Endpoint     string        `koanf:"endpoint" default:"https://crt.sh/" validate:"required,url"`
	UserAgent    string        `koanf:"user_agent" default:"crtsubs/0.1 (+https://crt.sh)"`
	TimeOut      time.Duration `koanf:"timeout" default:"5m"`
	MaxBodySize  int           `koanf:"max_body_size" default:"0" validate:"min=0"` // 0 means unlimited
	RateLimit    time.Duration `koanf:"rate_limit" default:"0s"`                    // minimum gap between requests
	MaxRedirects int           `koanf:"max_redirects" default:"10"`
}

type CacheSettings struct {
	Enabled    bool          `koanf:"enabled" default:"false"`
	BadgerPath string        `koanf:"badger_path" default:".crtsubs-cache" validate:"required_if=InMemory false"`
	InMemory   bool          `koanf:"in_memory" default:"false"`
	TTL        time.Duration `koanf:"ttl" default:"24h"`
}

type CollectorConfig struct {
	Concurrency int `koanf:"concurrency" default:"1" validate:"min=1"`
}

type StoreConfig struct {
	Path string `koanf:"path" default:"crtsubs.db" validate:"required"`
}

type WatchConfig struct {
	CronSchedule string   `koanf:"cron_schedule" default:"0 0 * * *" validate:"required"`
	Domains      []string `koanf:"domains"`
	ListFile     string   `koanf:"list_file"`
	RunAtStartup bool     `koanf:"run_at_startup" default:"true"`
}

type TelemetryConfig struct {
	Enabled      bool   `koanf:"enabled" default:"false"`
	OTLPEndpoint string `koanf:"otlp_endpoint" default:"localhost:4317"`
}

type Config struct {
	APP       APPConfig       `koanf:"app"`
	Crtsh     CrtshConfig     `koanf:"crtsh"`
	Cache     CacheSettings   `koanf:"cache"`
	Collector CollectorConfig `koanf:"collector"`
	Store     StoreConfig     `koanf:"store"`
	Watch     WatchConfig     `koanf:"watch"`
	Server    ServerConfig    `koanf:"server"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}
