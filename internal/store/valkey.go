package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "meridian/internal/errors"

	"github.com/redis/go-redis/v9"
)

type ValkeyConfig struct {
	Addr     string
	Password string
	DB       int
}

// ValkeyStore keeps each blob as a plain string key
type ValkeyStore struct {
	client *redis.Client
}

func NewValkeyStore(cfg ValkeyConfig) (*ValkeyStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &ValkeyStore{client: rdb}, nil
}

func (v *ValkeyStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := v.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}
	return value, nil
}

func (v *ValkeyStore) Set(ctx context.Context, key string, value []byte) error {
	if err := v.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("cache write error: %w", err)
	}
	return nil
}

func (v *ValkeyStore) Ping(ctx context.Context) error {
	return v.client.Ping(ctx).Err()
}

func (v *ValkeyStore) Close() error {
	return v.client.Close()
}
