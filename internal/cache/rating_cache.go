package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const topRatedKey = "drawings:toprated"

// RatingCache handles Redis ZSET operations for the drawing-rating leaderboard.
type RatingCache interface {
	UpdateScore(ctx context.Context, drawingID string, averageRating float64) error
	GetTop(ctx context.Context, limit int) ([]RatedDrawing, error)
	Remove(ctx context.Context, drawingID string) error
}

// RatedDrawing is a single leaderboard entry.
type RatedDrawing struct {
	DrawingID     string  `json:"drawingId"`
	AverageRating float64 `json:"averageRating"`
	Rank          int     `json:"rank"`
}

type ratingCache struct {
	client *redis.Client
}

// NewRatingCache creates a new rating leaderboard cache.
func NewRatingCache(client *redis.Client) RatingCache {
	return &ratingCache{client: client}
}

func (c *ratingCache) UpdateScore(ctx context.Context, drawingID string, averageRating float64) error {
	return c.client.ZAdd(ctx, topRatedKey, redis.Z{
		Score:  averageRating,
		Member: drawingID,
	}).Err()
}

func (c *ratingCache) GetTop(ctx context.Context, limit int) ([]RatedDrawing, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, topRatedKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]RatedDrawing, len(results))
	for i, z := range results {
		entries[i] = RatedDrawing{
			DrawingID:     z.Member.(string),
			AverageRating: z.Score,
			Rank:          i + 1,
		}
	}
	return entries, nil
}

func (c *ratingCache) Remove(ctx context.Context, drawingID string) error {
	return c.client.ZRem(ctx, topRatedKey, drawingID).Err()
}
