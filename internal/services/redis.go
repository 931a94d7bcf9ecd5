package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campuspool/campuspool-backend/internal/models"
)

var RedisClient *redis.Client

const rideListKey = "rides:all"

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	_, err = RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// CacheRideList stores the unfiltered ride listing with a short TTL. The
// cache is best-effort: a nil client or a failed write is ignored by callers.
func CacheRideList(ctx context.Context, rides []models.Ride) error {
	if RedisClient == nil {
		return nil
	}
	data, err := json.Marshal(rides)
	if err != nil {
		return err
	}
	return RedisClient.Set(ctx, rideListKey, data, 30*time.Second).Err()
}

// GetCachedRideList retrieves the unfiltered ride listing from Redis.
func GetCachedRideList(ctx context.Context) ([]models.Ride, error) {
	if RedisClient == nil {
		return nil, redis.Nil
	}
	data, err := RedisClient.Get(ctx, rideListKey).Result()
	if err != nil {
		return nil, err
	}

	var rides []models.Ride
	if err := json.Unmarshal([]byte(data), &rides); err != nil {
		return nil, err
	}
	return rides, nil
}

// InvalidateRideCache drops the cached listing after any ride or booking
// mutation.
func InvalidateRideCache(ctx context.Context) {
	if RedisClient == nil {
		return
	}
	RedisClient.Del(ctx, rideListKey)
}
