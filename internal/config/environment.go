package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrConfigDefaults = errors.New("failed to apply config defaults")
	ErrConfigDecode   = errors.New("failed to decode config")
	ErrConfigInvalid  = errors.New("invalid config")
)

var (
	_k      *koanf.Koanf
	_config *Config
	once    sync.Once
	initErr error
)

func GetConfig() *Config {
	if _config == nil {
		log.Info().Msg("config is nil trying to init")
		if err := InitConfig(); err != nil {
			log.Error().Msgf("error initializing config: %v", err)
		}
	}

	return _config
}

func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// InitConfig loads the TOML config file named by CONFIG_FILE (default .env.toml)
// and an optional .env file on top of the struct defaults. It runs once.
func InitConfig() error {
	once.Do(func() {
		cfg, err := Load(GetEnv("CONFIG_FILE", ".env.toml"), ".env")
		if err != nil {
			initErr = err
			return
		}
		_config = cfg
		zerolog.SetGlobalLevel(_config.APP.Level())
	})

	return initErr
}

// Load builds a Config from the given files. Missing files are skipped.
func Load(configFile, envFile string) (*Config, error) {
	_k = koanf.New(".")

	if configFile != "" {
		if err := _k.Load(file.Provider(configFile), toml.Parser()); err != nil {
			log.Debug().Err(err).Str("file", configFile).Msg("config file not loaded [TOML]")
		}
	}

	if envFile != "" {
		if err := _k.Load(file.Provider(envFile), dotenv.Parser()); err != nil {
			log.Debug().Err(err).Str("file", envFile).Msg("env file not loaded [DOTENV]")
		}
	}

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigDefaults, err)
	}

	if err := _k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigDecode, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	log.Trace().Msgf("k: %+v", cfg)
	return cfg, nil
}

// Validate checks the struct tag constraints of cfg.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	return nil
}

func IsDevMode() bool {
	if _config == nil {
		return true
	}

	return _config.APP.Environment == "development"
}
