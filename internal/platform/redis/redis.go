package redis

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/srgjo27/meeting_room/internal/platform/config"
)

func NewClient(ctx context.Context, cfg config.Redis, log *slog.Logger) (*goredis.Client, error) {
	log.Info("connecting to redis", slog.String("addr", cfg.Addr()))

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("redis connected")

	return client, nil
}
