package utils

import (
	"context"
	"database/sql"
	"testing"

	ic "crtsubs/internal/colly"
	"crtsubs/internal/config"
	"crtsubs/internal/db"

	"github.com/gocolly/colly/v2"
	"github.com/stretchr/testify/require"
)

// Initialize returns a default config, an in-memory store and a collector
// for tests. The store is closed when the test ends.
func Initialize(t *testing.T) (ctx context.Context, cfg *config.Config, _db *sql.DB, cc *colly.Collector) {
	t.Helper()

	cfg, err := config.Load("", "")
	require.NoError(t, err, "Should build default config without error")

	_db, err = db.Connect(db.WithInMemory(true))
	require.NoError(t, err, "Expected no error while opening in-memory DB")
	t.Cleanup(func() { _ = _db.Close() })

	cc = ic.NewCollyClient(&cfg.Crtsh)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return ctx, cfg, _db, cc
}
