package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// LeaderboardCache tracks prize counts per game in a Redis ZSET so the
// standings view never has to scan player documents.
type LeaderboardCache interface {
	SetPrizes(ctx context.Context, gameID, playerID string, prizes int) error
	AddPrize(ctx context.Context, gameID, playerID string) error
	GetTop(ctx context.Context, gameID string, limit int) ([]LeaderboardEntry, error)
}

type LeaderboardEntry struct {
	PlayerID string `json:"playerId"`
	Prizes   int    `json:"prizes"`
	Rank     int    `json:"rank"`
}

type leaderboardCache struct {
	client *redis.Client
}

func NewLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &leaderboardCache{client: client}
}

func (c *leaderboardCache) key(gameID string) string {
	return fmt.Sprintf("game:%s:prizes", gameID)
}

func (c *leaderboardCache) SetPrizes(ctx context.Context, gameID, playerID string, prizes int) error {
	return c.client.ZAdd(ctx, c.key(gameID), redis.Z{
		Score:  float64(prizes),
		Member: playerID,
	}).Err()
}

func (c *leaderboardCache) AddPrize(ctx context.Context, gameID, playerID string) error {
	return c.client.ZIncrBy(ctx, c.key(gameID), 1, playerID).Err()
}

func (c *leaderboardCache) GetTop(ctx context.Context, gameID string, limit int) ([]LeaderboardEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(gameID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(results))
	for i, z := range results {
		entries[i] = LeaderboardEntry{
			PlayerID: z.Member.(string),
			Prizes:   int(z.Score),
			Rank:     i + 1,
		}
	}
	return entries, nil
}
