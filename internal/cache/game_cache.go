package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"questionsbattle/internal/model"
)

// GameCache handles Redis operations for the per-room game record. The
// record is a single JSON blob, so get/set on one key is all the atomicity
// the store provides; callers serialize writes per room themselves.
type GameCache interface {
	Get(ctx context.Context, code string) (*model.Game, error)
	Set(ctx context.Context, code string, game *model.Game) error
	Exists(ctx context.Context, code string) (bool, error)
	Delete(ctx context.Context, code string) error
}

type gameCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGameCache creates a new game cache
func NewGameCache(client *redis.Client) GameCache {
	return &gameCache{
		client: client,
		ttl:    24 * time.Hour, // Finished rooms stay readable until then
	}
}

func (c *gameCache) key(code string) string {
	return fmt.Sprintf("game:%s", code)
}

func (c *gameCache) Get(ctx context.Context, code string) (*model.Game, error) {
	data, err := c.client.Get(ctx, c.key(code)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var game model.Game
	if err := json.Unmarshal([]byte(data), &game); err != nil {
		return nil, err
	}
	if err := game.Validate(); err != nil {
		return nil, fmt.Errorf("corrupt record for room %s: %w", code, err)
	}
	return &game, nil
}

func (c *gameCache) Set(ctx context.Context, code string, game *model.Game) error {
	if err := game.Validate(); err != nil {
		return fmt.Errorf("refusing to persist invalid record for room %s: %w", code, err)
	}
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(code), data, c.ttl).Err()
}

func (c *gameCache) Exists(ctx context.Context, code string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(code)).Result()
	return n > 0, err
}

func (c *gameCache) Delete(ctx context.Context, code string) error {
	return c.client.Del(ctx, c.key(code)).Err()
}
