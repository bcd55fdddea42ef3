package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeenCache marks topic uniqueIds that have already been fed into the
// pipeline so the aggregator can skip them cheaply.
type SeenCache interface {
	IsSeen(ctx context.Context, uniqueID string) (bool, error)
	MarkSeen(ctx context.Context, uniqueID string, ttl time.Duration) error
	ClearSeen(ctx context.Context) error
	Close() error
}

type RedisClient struct {
	client *redis.Client
	prefix string
}

func NewRedisClient(redisURL, prefix string) (*RedisClient, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{
		client: client,
		prefix: prefix + "seen:",
	}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

func (r *RedisClient) IsSeen(ctx context.Context, uniqueID string) (bool, error) {
	exists, err := r.client.Exists(ctx, r.prefix+uniqueID).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists error: %w", err)
	}
	return exists > 0, nil
}

func (r *RedisClient) MarkSeen(ctx context.Context, uniqueID string, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+uniqueID, "1", ttl).Err()
}

func (r *RedisClient) ClearSeen(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	var keys []string

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("error scanning keys: %w", err)
	}

	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("error deleting keys: %w", err)
		}
	}

	return nil
}
