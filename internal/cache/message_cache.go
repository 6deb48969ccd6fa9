package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"questionsbattle/internal/model"
)

// historyLimit caps the conversation kept per room; the judge only ever
// needs the recent exchange.
const historyLimit = 50

// MessageCache stores the room conversation history in a Redis list
type MessageCache interface {
	Append(ctx context.Context, code string, msg *model.ChatMessage) error
	List(ctx context.Context, code string) ([]model.ChatMessage, error)
	Delete(ctx context.Context, code string) error
}

type messageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMessageCache creates a new message cache
func NewMessageCache(client *redis.Client) MessageCache {
	return &messageCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *messageCache) key(code string) string {
	return fmt.Sprintf("room:%s:messages", code)
}

func (c *messageCache) Append(ctx context.Context, code string, msg *model.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	pipe := c.client.Pipeline()
	pipe.RPush(ctx, c.key(code), data)
	pipe.LTrim(ctx, c.key(code), -historyLimit, -1)
	pipe.Expire(ctx, c.key(code), c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *messageCache) List(ctx context.Context, code string) ([]model.ChatMessage, error) {
	items, err := c.client.LRange(ctx, c.key(code), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	messages := make([]model.ChatMessage, 0, len(items))
	for _, item := range items {
		var msg model.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (c *messageCache) Delete(ctx context.Context, code string) error {
	return c.client.Del(ctx, c.key(code)).Err()
}
