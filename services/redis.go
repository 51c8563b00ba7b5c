package services

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/redis/go-redis/v9"

	"github.com/hafizh-dev/portfolio_api/dto"
)

// RedisService is optional: it only opens a client when REDIS_ADDR is set.
// When present, the rate limiter swaps its in-memory store for the shared
// Redis-backed one so multiple instances see the same window.
type RedisService struct {
	appContext.DefaultService
	redis *redis.Client
}

const REDIS_SVC = "redis_svc"

func (svc RedisService) Id() string {
	return REDIS_SVC
}

func (svc *RedisService) Configure(ctx *appContext.Context) error {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		db := 0
		if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
			if parsed, err := strconv.Atoi(dbStr); err == nil {
				db = parsed
			}
		}

		svc.redis = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       db,
		})
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *RedisService) Start() error {
	if svc.redis != nil {
		ctx := context.Background()
		if _, err := svc.redis.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
	}
	return nil
}

func (svc *RedisService) Shutdown() {
	if svc.redis != nil {
		_ = svc.redis.Close()
	}
}

func (svc *RedisService) Client() *redis.Client {
	return svc.redis
}

// RedisRateLimitStore implements the sliding window as a sorted set of
// request timestamps, trimmed on every check. Same contract as the memory
// store: denied attempts leave the set untouched.
type RedisRateLimitStore struct {
	redis *redis.Client
	now   func() time.Time
}

func NewRedisRateLimitStore(client *redis.Client) *RedisRateLimitStore {
	return &RedisRateLimitStore{
		redis: client,
		now:   time.Now,
	}
}

func (s *RedisRateLimitStore) Check(ctx context.Context, identifier string, limit int, window time.Duration) (*dto.RateLimitResult, error) {
	key := "ratelimit:" + identifier
	now := s.now()
	windowStart := now.Add(-window)

	pipe := s.redis.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	count := int(countCmd.Val())
	if count >= limit {
		oldest, err := s.redis.ZRangeWithScores(ctx, key, 0, 0).Result()
		if err != nil {
			return nil, err
		}

		retryAfter := 1
		if len(oldest) > 0 {
			oldestAt := time.Unix(0, int64(oldest[0].Score))
			retryAfter = int(math.Ceil((window - now.Sub(oldestAt)).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
		}

		return &dto.RateLimitResult{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: retryAfter,
		}, nil
	}

	pipe = s.redis.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	return &dto.RateLimitResult{
		Allowed:   true,
		Remaining: limit - count - 1,
	}, nil
}
