package redis

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// AnswerKeyLoader fetches a quiz's ordered answer key from a backing store.
type AnswerKeyLoader interface {
	LoadAnswerKey(ctx context.Context, quizID string) ([]string, error)
}

// AnswerKeyCache caches quiz answer keys in Redis and falls back to a loader
// on miss. Keys are stored as: HSET quiz:{quizID}:answers {position} {text}.
type AnswerKeyCache struct {
	client *redis.Client
	loader AnswerKeyLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewAnswerKeyCache(client *redis.Client, loader AnswerKeyLoader, ttl time.Duration) *AnswerKeyCache {
	return &AnswerKeyCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *AnswerKeyCache) GetAnswerKey(ctx context.Context, quizID string) ([]string, error) {
	cacheKey := c.key(quizID)

	fields, err := c.client.HGetAll(ctx, cacheKey).Result()
	if err == nil && len(fields) > 0 {
		return orderedKey(fields), nil
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Re-check in case another goroutine filled the cache.
		fields, err := c.client.HGetAll(ctx, cacheKey).Result()
		if err == nil && len(fields) > 0 {
			return orderedKey(fields), nil
		}

		key, err := c.loader.LoadAnswerKey(ctx, quizID)
		if err != nil {
			return nil, err
		}

		pipe := c.client.Pipeline()
		for i, answer := range key {
			pipe.HSet(ctx, cacheKey, strconv.Itoa(i), answer)
		}
		if ttl := c.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, cacheKey, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return key, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

// Invalidate drops the cached key, best-effort.
func (c *AnswerKeyCache) Invalidate(quizID string) {
	_ = c.client.Del(context.Background(), c.key(quizID)).Err()
}

func (c *AnswerKeyCache) key(quizID string) string {
	return "quiz:" + quizID + ":answers"
}

// orderedKey rebuilds the positional answer slice from the stored hash.
func orderedKey(fields map[string]string) []string {
	key := make([]string, len(fields))
	for field, answer := range fields {
		idx, err := strconv.Atoi(field)
		if err != nil || idx < 0 || idx >= len(key) {
			continue
		}
		key[idx] = answer
	}
	return key
}

func (c *AnswerKeyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
