package services

import (
	"context"
	"fmt"
	"time"

	"sa-birth-backend/internal/config"

	"github.com/redis/go-redis/v9"
)

var _ Ledger = (*RedisService)(nil)

type RedisService struct {
	client *redis.Client
}

func NewRedisService(cfg *config.Config) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	return NewRedisServiceFromClient(context.Background(), client)
}

func NewRedisServiceFromClient(ctx context.Context, client *redis.Client) (*RedisService, error) {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return &RedisService{client: client}, nil
}

func (s *RedisService) Client() *redis.Client {
	return s.client
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

func (s *RedisService) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

// Put writes value while preserving whatever expiry key already has.
func (s *RedisService) Put(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisService) ExtendTTL(ctx context.Context, key string, ttl time.Duration) error {
	ok, err := s.client.Expire(ctx, key, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis expire: %w", err)
	}
	if !ok {
		return ErrRecordNotFound
	}
	return nil
}

func (s *RedisService) CheckRateLimit(ctx context.Context, player string, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, player, action)

	// EXPIRE NX on every call also repairs a counter whose first EXPIRE was lost.
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %v", err)
	}

	return incr.Val() <= int64(limit), nil
}

func (s *RedisService) ClearRateLimit(ctx context.Context, player string, action string) error {
	return s.client.Del(ctx, fmt.Sprintf(KeyRateLimit, player, action)).Err()
}

func (s *RedisService) StoreChallenge(ctx context.Context, player, nonce string, ttl time.Duration) error {
	if err := s.client.Set(ctx, fmt.Sprintf(KeyLoginChallenge, player), nonce, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store login challenge: %v", err)
	}
	return nil
}

// ConsumeChallenge returns and deletes the player's pending challenge.
func (s *RedisService) ConsumeChallenge(ctx context.Context, player string) (string, error) {
	nonce, err := s.client.GetDel(ctx, fmt.Sprintf(KeyLoginChallenge, player)).Result()
	if err == redis.Nil {
		return "", ErrRecordNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read login challenge: %v", err)
	}
	return nonce, nil
}
