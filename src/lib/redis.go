package lib

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

// ClaimOnce marks key as seen and reports whether this caller was the first
// to do so. Used to drop webhook redeliveries and duplicate notifications.
// When redis is unavailable the claim succeeds so processing still happens;
// the state machines downstream are idempotent anyway.
func ClaimOnce(ctx context.Context, key string, ttl time.Duration) bool {
	rdb := GetRedisClient()
	if rdb == nil {
		return true
	}
	ok, err := rdb.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		log.Printf("[redis] Error claiming key %s: %s\n", key, err.Error())
		return true
	}
	return ok
}

// ReleaseClaim gives a claimed key back so the next delivery of the same
// message is processed again. Callers release when handling fails after the
// claim; without this the retry would be swallowed for the claim's TTL.
func ReleaseClaim(ctx context.Context, key string) {
	rdb := GetRedisClient()
	if rdb == nil {
		return
	}
	if err := rdb.Del(ctx, key).Err(); err != nil {
		log.Printf("[redis] Error releasing key %s: %s\n", key, err.Error())
	}
}
