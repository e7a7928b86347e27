package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/nikhilbhat/eventformatter/internal/config"
	"github.com/nikhilbhat/eventformatter/internal/event"
)

// Redis appends output events to a Redis stream. Each entry carries the
// JSON-encoded event under the "event" field; downstream consumers read
// with XREAD/consumer groups.
type Redis struct {
	client *redis.Client
	stream string
}

// NewRedis connects to Redis and verifies the connection with a ping.
func NewRedis(cfg config.RedisSinkConf) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("sink: connect redis %s: %w", cfg.Addr, err)
	}
	return &Redis{client: client, stream: cfg.Stream}, nil
}

func (s *Redis) Emit(ctx context.Context, out event.Output) error {
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("sink: encode output: %w", err)
	}
	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{"event": string(data)},
	}).Err()
	if err != nil {
		return fmt.Errorf("sink: xadd %s: %w", s.stream, err)
	}
	return nil
}

func (s *Redis) Close() error { return s.client.Close() }
