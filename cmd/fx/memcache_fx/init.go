package memcache_fx

import (
	"context"

	"fitbook/pkg/config"
	mem "fitbook/pkg/memcache"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Provide(provideTokenStore)

// provideTokenStore uses redis when REDIS_URL is set so login state survives
// across replicas; otherwise the in-process store.
func provideTokenStore(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (mem.TokenStore, error) {
	if cfg.RedisURL == "" {
		log.Info("token store: in-memory")
		return mem.NewMemoryTokens(), nil
	}
	client, err := mem.NewRedisClient(context.Background(), cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return client.Close() },
	})
	log.Info("token store: redis")
	return mem.NewRedisTokens(client), nil
}
