package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// SQLiteRepository is the SubdomainRepository backed by the subdomains table.
type SQLiteRepository struct {
	db        *sql.DB
	writeLock sync.Mutex
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Record(ctx context.Context, domain string, hostnames []string, runID string) ([]string, error) {
	if r.db == nil {
		return nil, ErrNoStore
	}

	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %w", ErrRecord, err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Error().Err(err).Msg("Failed to rollback transaction")
		}
	}()

	insert, err := tx.PrepareContext(ctx, `
		INSERT INTO subdomains (domain, hostname, run_id, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (domain, hostname) DO NOTHING
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: prepare insert: %w", ErrRecord, err)
	}
	defer insert.Close()

	touch, err := tx.PrepareContext(ctx, `
		UPDATE subdomains SET last_seen = ?, run_id = ? WHERE domain = ? AND hostname = ?
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: prepare update: %w", ErrRecord, err)
	}
	defer touch.Close()

	now := time.Now().UTC()
	added := []string{}

	for _, hostname := range hostnames {
		res, err := insert.ExecContext(ctx, domain, hostname, runID, now, now)
		if err != nil {
			return nil, fmt.Errorf("%w: insert %s: %w", ErrRecord, hostname, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRecord, err)
		}

		if affected > 0 {
			added = append(added, hostname)
			continue
		}

		if _, err := touch.ExecContext(ctx, now, runID, domain, hostname); err != nil {
			return nil, fmt.Errorf("%w: update %s: %w", ErrRecord, hostname, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit: %w", ErrRecord, err)
	}

	log.Debug().
		Str("domain", domain).
		Str("run_id", runID).
		Int("seen", len(hostnames)).
		Int("new", len(added)).
		Msg("Recorded subdomains")

	return added, nil
}

func (r *SQLiteRepository) GetSubdomains(ctx context.Context, domain string) ([]Subdomain, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT domain, hostname, run_id, first_seen, last_seen
		FROM subdomains
		WHERE domain = ?
		ORDER BY first_seen, id
	`, domain)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	defer rows.Close()

	result := []Subdomain{}
	for rows.Next() {
		var s Subdomain
		if err := rows.Scan(&s.Domain, &s.Hostname, &s.RunID, &s.FirstSeen, &s.LastSeen); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", ErrQuery, err)
		}
		result = append(result, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows iteration: %w", ErrQuery, err)
	}

	return result, nil
}

func (r *SQLiteRepository) GetHostnames(ctx context.Context, domain string) ([]string, error) {
	subs, err := r.GetSubdomains(ctx, domain)
	if err != nil {
		return nil, err
	}

	hosts := make([]string, 0, len(subs))
	for _, s := range subs {
		hosts = append(hosts, s.Hostname)
	}
	return hosts, nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, domain, hostname string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM subdomains WHERE domain = ? AND hostname = ? LIMIT 1`,
		domain, hostname,
	).Scan(&one)

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	return true, nil
}

// IterateHostnames streams every stored (domain, hostname) pair to fn.
func (r *SQLiteRepository) IterateHostnames(ctx context.Context, fn func(domain, hostname string) error) error {
	rows, err := r.db.QueryContext(ctx, `SELECT domain, hostname FROM subdomains`)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var domain, hostname string
		if err := rows.Scan(&domain, &hostname); err != nil {
			return fmt.Errorf("%w: scan: %w", ErrQuery, err)
		}
		if err := fn(domain, hostname); err != nil {
			return err
		}
	}

	return rows.Err()
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subdomains`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	return count, nil
}
