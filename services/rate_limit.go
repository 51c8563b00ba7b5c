package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/hafizh-dev/portfolio_api/dto"
	"github.com/hafizh-dev/portfolio_api/model"
	"github.com/hafizh-dev/portfolio_api/shared"
)

// RateLimitService enforces the trailing-window quota for the insights
// endpoint. The store is injected so tests run isolated and deployments can
// point it at Redis instead of process memory.
type RateLimitService struct {
	appContext.DefaultService

	config model.RateLimitConfig
	store  RateLimitStore

	redisSvc *RedisService
}

const RATE_LIMIT_SVC = "rate_limit_svc"

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *appContext.Context) error {
	svc.config = model.RateLimitConfig{
		MaxRequests: 10,
		WindowSize:  5 * time.Minute,
		Description: "AI insights generation rate limit per IP",
	}
	svc.store = NewMemoryRateLimitStore()

	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)

	if client := svc.redisSvc.Client(); client != nil {
		svc.store = NewRedisRateLimitStore(client)
		log.Info("Rate limiter using shared Redis store")
	}

	return nil
}

// SetStore replaces the backing store. Used by tests.
func (svc *RateLimitService) SetStore(store RateLimitStore) {
	svc.store = store
}

func (svc *RateLimitService) Check(ctx context.Context, identifier string) (*dto.RateLimitResult, error) {
	result, err := svc.store.Check(ctx, identifier, svc.config.MaxRequests, svc.config.WindowSize)
	if err != nil {
		return nil, err
	}

	if !result.Allowed {
		rateLimitedTotal.Inc()
		log.WithField("identifier", identifier).
			WithField("retry_after", result.RetryAfter).
			Warn("Rate limit exceeded")
	}

	return result, nil
}

func (svc *RateLimitService) AddRateLimitHeaders(c *fiber.Ctx, result *dto.RateLimitResult) {
	if result == nil {
		return
	}

	if result.Allowed {
		c.Set(shared.HeaderRateLimitRemaining, strconv.Itoa(result.Remaining))
		return
	}

	c.Set(shared.HeaderRetryAfter, strconv.Itoa(result.RetryAfter))
}

func (svc *RateLimitService) RetryMessage(retryAfter int) string {
	return fmt.Sprintf("Rate limit exceeded. Try again in %d seconds.", retryAfter)
}
