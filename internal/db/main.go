package db

import (
	"database/sql"
	"fmt"
	"sync"

	"crtsubs/internal/config"

	"github.com/rs/zerolog/log"
)

var (
	db    *sql.DB
	once  sync.Once
	dbErr error
)

// GetDB returns the shared connection to the store configured in store.path.
func GetDB() (*sql.DB, error) {
	once.Do(func() {
		path := dbName
		if cfg := config.GetConfig(); cfg != nil {
			path = cfg.Store.Path
		}

		db, dbErr = Connect(WithPath(path))
		if dbErr != nil {
			dbErr = fmt.Errorf("failed to initialize database connection: %w", dbErr)
			return
		}
		log.Info().Str("path", path).Msg("Database connection initialized")
	})
	return db, dbErr
}

func DeferClose() {
	if db != nil {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database connection")
		}
	}
}
