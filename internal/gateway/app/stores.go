package app

import (
	"fmt"
	"log/slog"
	"strings"

	"issuescout/internal/gateway/config"
	"issuescout/internal/ratelimit"
)

type rateLimitStore struct {
	store   ratelimit.Store
	sweeper ratelimit.Sweeper
	close   func() error
}

// initRateLimitStore shares counters through Postgres when RATELIMIT_PG_DSN
// is set and keeps them in process otherwise.
func initRateLimitStore(cfg *config.Config, logger *slog.Logger) (*rateLimitStore, error) {
	if dsn := strings.TrimSpace(cfg.RateLimit.PostgresDSN); dsn != "" {
		pg, err := ratelimit.NewPostgresStore(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open rate limit db: %w", err)
		}
		logger.Info("rate limit store: postgres")
		return &rateLimitStore{store: pg, sweeper: pg, close: pg.Close}, nil
	}

	ttl := cfg.RateLimit.SummaryWindow
	if cfg.RateLimit.SearchWindow > ttl {
		ttl = cfg.RateLimit.SearchWindow
	}
	logger.Info("rate limit store: memory", "max_keys", cfg.RateLimit.MaxKeys)
	return &rateLimitStore{
		store: ratelimit.NewMemoryStore(cfg.RateLimit.MaxKeys, ttl),
		close: func() error { return nil },
	}, nil
}
