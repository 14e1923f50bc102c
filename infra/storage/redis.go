package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kilianp07/tariffopt/core/model"
	"github.com/kilianp07/tariffopt/core/store"
)

const (
	defaultRedisPrefix = "tariffopt:"
	redisDialTimeout   = 5 * time.Second
)

// RedisStore keeps each record as a JSON string under a prefixed key.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to addr and validates the connection with PING.
func NewRedisStore(addr, password string, db int, prefix string) (*RedisStore, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("redis: addr is empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  redisDialTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewRedisStoreFromClient(client, prefix), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) LoadTariff(ctx context.Context) (model.TariffTable, error) {
	b, err := s.get(ctx, store.KeyTariff)
	if err != nil {
		return model.TariffTable{}, err
	}
	return decodeTariff(b)
}

func (s *RedisStore) SaveTariff(ctx context.Context, t model.TariffTable) error {
	b, err := encodeTariff(t, false)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+store.KeyTariff, b, 0).Err()
}

func (s *RedisStore) LoadAppliances(ctx context.Context) ([]model.Appliance, error) {
	b, err := s.get(ctx, store.KeyAppliances)
	if err != nil {
		return nil, err
	}
	return decodeAppliances(b)
}

func (s *RedisStore) SaveAppliances(ctx context.Context, apps []model.Appliance) error {
	b, err := encodeAppliances(apps, false)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+store.KeyAppliances, b, 0).Err()
}

// Close closes the client.
func (s *RedisStore) Close() error { return s.client.Close() }

func (s *RedisStore) get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, nil
}
