package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/hafizh-dev/portfolio_api/dto"
)

type InsightsServiceInterface interface {
	GenerateInsights(ctx context.Context, req dto.InsightsRequest) (dto.InsightsResponse, error)
}

type RateLimitServiceInterface interface {
	Check(ctx context.Context, identifier string) (*dto.RateLimitResult, error)
	AddRateLimitHeaders(c *fiber.Ctx, result *dto.RateLimitResult)
	RetryMessage(retryAfter int) string
}
