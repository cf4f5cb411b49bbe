package providers

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/km-arc/go-lifespan/framework/config"
	"github.com/km-arc/go-lifespan/framework/lifespan"
)

// Redis connects a redis client on setup, failing startup when the server
// does not answer PING, and closes it on teardown.
func Redis(cfg config.RedisConfig) lifespan.SetupFunc[*redis.Client] {
	return func(ctx context.Context, _ lifespan.Deps) (*redis.Client, lifespan.Teardown, error) {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})

		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("providers: ping redis at %s: %w", cfg.Addr, err)
		}

		return client, func(context.Context) error { return client.Close() }, nil
	}
}
