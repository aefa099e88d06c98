package genai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// QuoteCache stores the quote of the day, keyed by date.
type QuoteCache interface {
	Get(ctx context.Context, key string) (string, error) // "" when absent
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisQuoteCache backs the quote cache with Redis.
type RedisQuoteCache struct {
	rdb *redis.Client
}

func NewRedisQuoteCache(addr string) *RedisQuoteCache {
	return &RedisQuoteCache{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

func (c *RedisQuoteCache) Get(ctx context.Context, key string) (string, error) {
	v, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

func (c *RedisQuoteCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

const quotePrompt = "Share one short motivational quote about learning or perseverance, " +
	"with its author. Return only the quote and attribution, no commentary."

// DailyQuote returns a motivational quote, cached for 24 hours keyed by
// date. A nil or failing cache degrades to a fresh generation per call.
func (g *QuizGenerator) DailyQuote(ctx context.Context, cache QuoteCache, now time.Time) (string, error) {
	key := "daily-quote:" + now.UTC().Format("2006-01-02")
	if cache != nil {
		if v, err := cache.Get(ctx, key); err != nil {
			log.Printf("quote cache get: %v", err)
		} else if v != "" {
			return v, nil
		}
	}

	text, err := g.gen.GenerateText(ctx, systemPrompt, quotePrompt)
	if err != nil {
		if errors.Is(err, ErrGeneration) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if cache != nil {
		if err := cache.Set(ctx, key, text, 24*time.Hour); err != nil {
			log.Printf("quote cache set: %v", err)
		}
	}
	return text, nil
}
