package queue

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisQueueKey = "fusionfit:queue:jobs"

// RedisDriver persists jobs in a Redis list so they survive restarts and
// can be shared across processes. LPUSH to enqueue, BRPOP to consume.
type RedisDriver struct {
	client *redis.Client
	key    string
}

// NewRedisDriver wraps client as a queue driver. The caller owns the client.
func NewRedisDriver(client *redis.Client) *RedisDriver {
	return &RedisDriver{client: client, key: redisQueueKey}
}

func (d *RedisDriver) Push(payload []byte) error {
	return d.client.LPush(context.Background(), d.key, payload).Err()
}

func (d *RedisDriver) Pop(ctx context.Context) ([]byte, error) {
	res, err := d.client.BRPop(ctx, 2*time.Second, d.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // timeout, nothing queued
		}
		return nil, err
	}
	// BRPOP returns [key, value]
	if len(res) < 2 {
		return nil, nil
	}
	return []byte(res[1]), nil
}
