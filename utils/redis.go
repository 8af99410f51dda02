package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// InitRedis connects the shared Redis client used for the cached
// operator profile and refresh-token sessions.
func InitRedis() error {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	RedisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := RedisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	log.Println("✅ Redis connected")
	return nil
}

// ======================
// Cached operator profile
// ======================
// The browser app kept the signed-in user's profile in local storage;
// the station equivalent is a Redis record with explicit invalidation.

func profileKey(username string) string {
	return "station:profile:" + username
}

// CacheProfile stores the operator profile as JSON. No TTL: the cache
// is valid until explicitly invalidated, matching the directory cache
// policy.
func CacheProfile(ctx context.Context, username string, profile interface{}) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return RedisClient.Set(ctx, profileKey(username), data, 0).Err()
}

// GetCachedProfile loads a cached operator profile into dest. Returns
// redis.Nil when no profile is cached.
func GetCachedProfile(ctx context.Context, username string, dest interface{}) error {
	data, err := RedisClient.Get(ctx, profileKey(username)).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// InvalidateProfile drops the cached operator profile.
func InvalidateProfile(ctx context.Context, username string) error {
	return RedisClient.Del(ctx, profileKey(username)).Err()
}

// ======================
// Refresh token sessions
// ======================

func sessionKey(username string) string {
	return "station:session:" + username
}

// StoreRefreshToken records the active refresh token for an operator.
func StoreRefreshToken(ctx context.Context, username, token string, ttl time.Duration) error {
	return RedisClient.Set(ctx, sessionKey(username), token, ttl).Err()
}

// ValidateRefreshToken checks a presented refresh token against the
// stored session.
func ValidateRefreshToken(ctx context.Context, username, token string) (bool, error) {
	stored, err := RedisClient.Get(ctx, sessionKey(username)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored == token, nil
}

// RevokeSession drops the operator's refresh session on logout.
func RevokeSession(ctx context.Context, username string) error {
	return RedisClient.Del(ctx, sessionKey(username)).Err()
}
