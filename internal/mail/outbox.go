package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to REDIS_URL and verifies the connection.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

// RedisOutbox queues confirmation mails for cmd/mailer.
type RedisOutbox struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

func NewRedisOutbox(client *redis.Client) *RedisOutbox {
	return &RedisOutbox{client: client, key: OutboxKey, now: time.Now}
}

// Send enqueues the envelope; a failure here is the caller's only signal.
func (o *RedisOutbox) Send(ctx context.Context, code, address string) error {
	payload, err := json.Marshal(Envelope{To: address, Code: code, QueuedAt: o.now().UTC()})
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	if err := o.client.LPush(ctx, o.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue mail: %w", err)
	}
	return nil
}
