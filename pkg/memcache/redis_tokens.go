package mem

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisTokenPrefix = "fitbook:token:"

type RedisTokens struct {
	client *redis.Client
}

func NewRedisTokens(client *redis.Client) *RedisTokens {
	return &RedisTokens{client: client}
}

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (s *RedisTokens) Set(ctx context.Context, token, value string, ttl time.Duration) error {
	return s.client.Set(ctx, redisTokenPrefix+token, value, ttl).Err()
}

func (s *RedisTokens) Consume(ctx context.Context, token string) (string, error) {
	v, err := s.client.GetDel(ctx, redisTokenPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}
