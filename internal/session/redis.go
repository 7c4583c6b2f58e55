package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const keyFormat = "session:%d:asset"

// RedisStore keeps selections in Redis with an optional TTL, so several bot
// replicas share them.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisOptions configures NewRedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	log.WithField("addr", opts.Addr).Info("Redis session store connected")
	return &RedisStore{client: client, ttl: opts.TTL}, nil
}

func key(chatID int64) string { return fmt.Sprintf(keyFormat, chatID) }

func (r *RedisStore) Get(ctx context.Context, chatID int64) (string, bool, error) {
	v, err := r.client.Get(ctx, key(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return v, true, nil
}

// Set stores the selection; a zero TTL keeps it forever.
func (r *RedisStore) Set(ctx context.Context, chatID int64, asset string) error {
	if err := r.client.Set(ctx, key(chatID), asset, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error { return r.client.Close() }
