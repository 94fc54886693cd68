package ratelimit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const createWindowsTable = `CREATE TABLE IF NOT EXISTS rate_limit_windows (
	key        TEXT PRIMARY KEY,
	count      INTEGER NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
)`

// hitWindow starts a fresh window when the stored one has expired and
// otherwise increments, saturating at limit+1 so rejected hits stay rejected
// without growing the counter.
const hitWindow = `INSERT INTO rate_limit_windows AS w (key, count, expires_at)
VALUES ($1, 1, $3)
ON CONFLICT (key) DO UPDATE SET
	count = CASE
		WHEN w.expires_at <= $2 THEN 1
		WHEN w.count <= $4 THEN w.count + 1
		ELSE w.count
	END,
	expires_at = CASE WHEN w.expires_at <= $2 THEN $3 ELSE w.expires_at END
RETURNING count, expires_at`

const sweepWindows = `DELETE FROM rate_limit_windows WHERE expires_at <= $1`

const schemaTimeout = 10 * time.Second

// PostgresStore shares counters between gateway instances. Each Hit is a
// single upsert, so concurrent requests for one key serialize on its row.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgresStore connects and creates the windows table. Either failing is
// a startup error.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
	defer cancel()
	s, err := newPostgresStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func newPostgresStore(ctx context.Context, db *sql.DB) (*PostgresStore, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping rate limit db: %w", err)
	}
	if _, err := db.ExecContext(ctx, createWindowsTable); err != nil {
		return nil, fmt.Errorf("ensure rate limit schema: %w", err)
	}
	return &PostgresStore{db: db, now: time.Now}, nil
}

func (s *PostgresStore) Hit(ctx context.Context, key string, limit int, win time.Duration) (Decision, error) {
	now := s.now().UTC()
	var (
		count   int
		expires time.Time
	)
	if err := s.db.QueryRowContext(ctx, hitWindow, key, now, now.Add(win), limit).Scan(&count, &expires); err != nil {
		return Decision{}, fmt.Errorf("hit rate limit window: %w", err)
	}
	d := Decision{Allowed: count <= limit, Count: count, Limit: limit, ResetAt: expires}
	if !d.Allowed {
		d.Count = limit
		d.RetryAfter = expires.Sub(now)
	}
	return d, nil
}

// Sweep deletes expired windows and reports how many were removed.
func (s *PostgresStore) Sweep(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, sweepWindows, s.now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RunSweeper calls Sweep every interval until ctx is done.
func RunSweeper(ctx context.Context, s Sweeper, interval time.Duration, logger *slog.Logger) {
	if s == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				if logger != nil {
					logger.Warn("rate limit sweep failed", "error", err)
				}
				continue
			}
			if logger != nil && n > 0 {
				logger.Debug("rate limit windows swept", "removed", n)
			}
		}
	}
}
