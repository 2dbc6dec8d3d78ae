package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"twotier-board/internal/model"
)

const (
	listKey  = "board:messages"
	dirtyKey = "board:messages:dirty"
)

// ListCache keeps the rendered message list in redis. Writers set a short-lived
// dirty marker so a reader holding a pre-insert snapshot cannot repopulate the key.
type ListCache struct {
	client   *redisv9.Client
	listTTL  time.Duration
	dirtyTTL time.Duration
}

func NewListCache(client *redisv9.Client, listTTL, dirtyTTL time.Duration) *ListCache {
	if listTTL <= 0 {
		listTTL = 30 * time.Second
	}
	if dirtyTTL <= 0 {
		dirtyTTL = 5 * time.Second
	}
	return &ListCache{
		client:   client,
		listTTL:  listTTL,
		dirtyTTL: dirtyTTL,
	}
}

func (c *ListCache) Get(ctx context.Context) ([]model.Message, bool, error) {
	raw, err := c.client.Get(ctx, listKey).Bytes()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get message list failed: %w", err)
	}

	var messages []model.Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached message list failed: %w", err)
	}
	return messages, true, nil
}

func (c *ListCache) Set(ctx context.Context, messages []model.Message) error {
	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal message list failed: %w", err)
	}
	if err := c.client.Set(ctx, listKey, payload, c.listTTL).Err(); err != nil {
		return fmt.Errorf("redis set message list failed: %w", err)
	}
	return nil
}

// Invalidate marks the list dirty and drops the cached copy in one round trip.
func (c *ListCache) Invalidate(ctx context.Context) error {
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, dirtyKey, "1", c.dirtyTTL)
	pipe.Del(ctx, listKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis invalidate message list failed: %w", err)
	}
	return nil
}

func (c *ListCache) IsDirty(ctx context.Context) (bool, error) {
	exists, err := c.client.Exists(ctx, dirtyKey).Result()
	if err != nil {
		return false, fmt.Errorf("redis check dirty marker failed: %w", err)
	}
	return exists > 0, nil
}
