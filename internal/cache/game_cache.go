package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"promptparty/internal/model"
)

// GameMeta is the hot subset of a game cached under its invite code so
// joins don't hit mongo for the code lookup.
type GameMeta struct {
	GameID      string          `json:"gameId"`
	State       model.GameState `json:"state"`
	PlayerLimit int             `json:"playerLimit"`
}

type GameCache interface {
	SetMeta(ctx context.Context, gid string, meta *GameMeta) error
	GetMeta(ctx context.Context, gid string) (*GameMeta, error)
	SetState(ctx context.Context, gid string, state model.GameState) error
	Delete(ctx context.Context, gid string) error
}

type gameCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewGameCache(client *redis.Client) GameCache {
	return &gameCache{client: client, ttl: 24 * time.Hour}
}

func (c *gameCache) key(gid string) string {
	return "game:gid:" + gid
}

func (c *gameCache) SetMeta(ctx context.Context, gid string, meta *GameMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(gid), data, c.ttl).Err()
}

func (c *gameCache) GetMeta(ctx context.Context, gid string) (*GameMeta, error) {
	data, err := c.client.Get(ctx, c.key(gid)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var meta GameMeta
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (c *gameCache) SetState(ctx context.Context, gid string, state model.GameState) error {
	meta, err := c.GetMeta(ctx, gid)
	if err != nil || meta == nil {
		return err
	}
	meta.State = state
	return c.SetMeta(ctx, gid, meta)
}

func (c *gameCache) Delete(ctx context.Context, gid string) error {
	return c.client.Del(ctx, c.key(gid)).Err()
}
