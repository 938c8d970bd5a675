package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBus implements Bus using Redis Streams
type RedisBus struct {
	client *redis.Client
	maxLen int64
	logger *zap.Logger
}

// NewRedisBus creates a new Redis event bus. A positive maxLen caps each
// stream approximately.
func NewRedisBus(client *redis.Client, maxLen int64, logger *zap.Logger) *RedisBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBus{
		client: client,
		maxLen: maxLen,
		logger: logger,
	}
}

// Publish publishes an event to a topic
func (b *RedisBus) Publish(ctx context.Context, topic string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: topic,
		Values: map[string]interface{}{
			"type": event.Type,
			"data": string(data),
		},
	}
	if b.maxLen > 0 {
		args.MaxLen = b.maxLen
		args.Approx = true
	}

	id, err := b.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("event published",
		zap.String("topic", topic),
		zap.String("type", event.Type),
		zap.String("message_id", id),
	)

	return nil
}

// Close closes the event bus (the redis client is owned by the caller)
func (b *RedisBus) Close() error {
	return nil
}
