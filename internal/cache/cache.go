package cache

import (
	"context"
	"encoding/json"
	"time"

	"citystore-api-io/api/pkg/util"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const ChannelGlobalCache = "GLOBAL_CACHE"

type MessageType string

const (
	InvalidateProduct  MessageType = "product.invalidate"
	InvalidateProducts MessageType = "products.invalidate"
	InvalidateFeatured MessageType = "products.featured.invalidate"
	InvalidateReviews  MessageType = "product.reviews.invalidate"
	InvalidateCart     MessageType = "cart.invalidate"
	OrderCreated       MessageType = "order.created"
)

type Message struct {
	Type      MessageType `json:"type"`
	Payload   string      `json:"payload"`
	Timestamp int64       `json:"timestamp"`
}

// Publisher announces data changes to whoever caches API responses.
type Publisher interface {
	Publish(ctx context.Context, messageType MessageType, payload string) error
}

// RedisPublisher sends JSON messages on a Redis pub/sub channel.
type RedisPublisher struct {
	client  redis.Cmdable
	channel string
}

func NewRedisPublisher(client redis.Cmdable) *RedisPublisher {
	return &RedisPublisher{client: client, channel: ChannelGlobalCache}
}

func (p *RedisPublisher) Publish(ctx context.Context, messageType MessageType, payload string) error {
	messageJSON, err := json.Marshal(Message{
		Type:      messageType,
		Payload:   payload,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		return errors.Wrap(err, "marshal cache message")
	}

	if err := p.client.Publish(ctx, p.channel, string(messageJSON)).Err(); err != nil {
		return errors.Wrap(err, "publish cache message")
	}

	util.LogFields(map[string]any{"type": messageType, "payload": payload}).Debug("published cache message")
	return nil
}

// NopPublisher drops every message. Used when no Redis is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, MessageType, string) error {
	return nil
}
