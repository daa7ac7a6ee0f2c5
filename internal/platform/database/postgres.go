package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/srgjo27/meeting_room/internal/platform/config"
	"github.com/srgjo27/meeting_room/internal/platform/logger/sl"
)

func DSN(cfg config.Database) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// NewPostgresDB opens a pool and pings it, retrying while the server is
// still coming up.
func NewPostgresDB(ctx context.Context, cfg config.Database, log *slog.Logger) (*sql.DB, error) {
	maxRetries := cfg.ConnectRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	var err error
	for i := 1; i <= maxRetries; i++ {
		log.Info("connecting to database", slog.Int("attempt", i), slog.Int("max_attempts", maxRetries))

		var db *sql.DB
		db, err = sql.Open("postgres", DSN(cfg))
		if err == nil {
			err = db.PingContext(ctx)
			if err == nil {
				db.SetMaxOpenConns(cfg.MaxOpenConns)
				db.SetMaxIdleConns(cfg.MaxIdleConns)
				db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

				log.Info("database connected")
				return db, nil
			}
			_ = db.Close()
		}

		log.Warn("database not ready yet", sl.Err(err), slog.Duration("retry_in", cfg.RetryInterval))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, fmt.Errorf("failed to connect to database: %w", err)
}
