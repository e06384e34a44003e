package redisStore

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

type Store struct {
	client *redis.Client
	Type   int
	logger *logger_i.Logger
}

// Connect opens one logical redis database and checks it answers.
func Connect(ctx context.Context, settings config.RedisSettings, dbType int) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:                  settings.Addr,
		Password:              settings.Password,
		DB:                    dbType,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis at %s is offline: %w", settings.Addr, err)
	}

	s := NewStore(client)
	s.Type = dbType
	s.logger.Info("Redis store connected", "addr", settings.Addr, "db", dbType)
	return s, nil
}

// NewStore wraps an existing client, used by tests against miniredis.
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		logger: logger_i.NewLogger("redis_store"),
	}
}

func (s *Store) Close() error {
	s.logger.Info("Closing Redis store", "db", s.Type)
	return s.client.Close()
}
