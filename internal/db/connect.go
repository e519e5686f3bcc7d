package db

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"
)

const (
	driverName = "sqlite"
	dbName     = "crtsubs.db"
	testDB     = "crtsubs-test.db"
)

// Connect opens a SQLite database configured by opts and makes sure the
// schema exists.
func Connect(opts ...Option) (*sql.DB, error) {
	o := &dbOptions{path: dbName}
	for _, opt := range opts {
		opt(o)
	}

	db, err := sql.Open(driverName, o.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if o.inMemory {
		// every pooled connection to :memory: would get its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if o.isReadOnly {
		return db, nil
	}

	if err := initDB(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return db, nil
}

func (o *dbOptions) dsn() string {
	if o.inMemory {
		return ":memory:"
	}

	path := o.path
	if o.isTesting {
		path = testDB
	}

	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "foreign_keys(1)")
	if o.isReadOnly {
		q.Set("mode", "ro")
	} else {
		q.Add("_pragma", "journal_mode(WAL)")
	}

	return "file:" + path + "?" + q.Encode()
}

// initDB creates the tables and indexes if they do not exist.
func initDB(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS subdomains (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			domain TEXT NOT NULL,
			hostname TEXT NOT NULL,
			run_id TEXT NOT NULL,
			first_seen DATETIME NOT NULL,
			last_seen DATETIME NOT NULL,
			UNIQUE (domain, hostname)
		);
		CREATE INDEX IF NOT EXISTS idx_subdomains_domain ON subdomains (domain);
		CREATE INDEX IF NOT EXISTS idx_subdomains_run_id ON subdomains (run_id);
	`)
	if err != nil {
		return fmt.Errorf("failed to create table and indexes: %w", err)
	}
	return nil
}
