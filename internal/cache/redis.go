package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/tripbooking/config"
	"github.com/Domenick1991/tripbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client   *redis.Client
	tripsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, tripsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		tripsTTL,
	)
}

func NewRedisCacheWithClient(client *redis.Client, tripsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, tripsTTL: tripsTTL}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type tripsPage struct {
	Trips []domain.Trip `json:"trips"`
	Total int           `json:"total"`
}

// GetTrips returns a cached catalog page; ok is false on a miss.
func (c *RedisCache) GetTrips(ctx context.Context, page, limit int) ([]domain.Trip, int, bool, error) {
	data, err := c.client.Get(ctx, tripsKey(page, limit)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, 0, false, nil
		}
		return nil, 0, false, err
	}

	var p tripsPage
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, 0, false, err
	}
	return p.Trips, p.Total, true, nil
}

func (c *RedisCache) SetTrips(ctx context.Context, page, limit int, trips []domain.Trip, total int) error {
	if c.tripsTTL <= 0 {
		return nil
	}
	payload, err := json.Marshal(tripsPage{Trips: trips, Total: total})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, tripsKey(page, limit), payload, c.tripsTTL).Err()
}

// AcquireBookingLock serializes booking creation for one (user, trip) pair.
// The returned token must be passed to ReleaseBookingLock.
func (c *RedisCache) AcquireBookingLock(ctx context.Context, userID, tripID uuid.UUID, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := c.client.SetNX(ctx, bookingLockKey(userID, tripID), token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

// only the holder may delete the lock; an expired holder must not release a newer one
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (c *RedisCache) ReleaseBookingLock(ctx context.Context, userID, tripID uuid.UUID, token string) error {
	return releaseScript.Run(ctx, c.client, []string{bookingLockKey(userID, tripID)}, token).Err()
}

func tripsKey(page, limit int) string {
	return fmt.Sprintf("cache:trips:page:%d:limit:%d", page, limit)
}

func bookingLockKey(userID, tripID uuid.UUID) string {
	return fmt.Sprintf("lock:booking:user:%s:trip:%s", userID, tripID)
}
