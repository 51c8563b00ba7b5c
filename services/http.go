package services

import (
	"fmt"
	"os"
	"strconv"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"

	"github.com/hafizh-dev/portfolio_api/dto"
	"github.com/hafizh-dev/portfolio_api/services/handlers"
	"github.com/hafizh-dev/portfolio_api/shared"
)

type HttpService struct {
	appContext.DefaultService

	insightsSvc  *InsightsService
	rateLimitSvc *RateLimitService
	llmSvc       *LLMService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *appContext.Context) error {
	if port := os.Getenv("PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 5174
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.insightsSvc = svc.Service(INSIGHTS_SVC).(*InsightsService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.llmSvc = svc.Service(LLM_SVC).(*LLMService)

	app := fiber.New(fiber.Config{
		ErrorHandler:          svc.handleError,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST",
		AllowHeaders: "Content-Type",
	}))
	app.Use(svc.requestLogger())

	insightsHandler := handlers.NewInsightsHandler(svc.insightsSvc, svc.rateLimitSvc)

	app.Get("/api/health", insightsHandler.Health)
	app.Post("/api/ai-insights", insightsHandler.PostInsights)

	app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseJSON(c, fiber.StatusNotFound, dto.ErrorResponse{
			Error:   "Not found",
			Message: "page not found",
		})
	})

	svc.server = app

	log.WithField("port", svc.port).
		WithField("provider", svc.llmSvc.Provider()).
		Info("HTTP server started")

	return svc.server.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

func (svc *HttpService) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		started := time.Now()
		err := c.Next()

		ObserveRequest(c.Route().Path, c.Method(), c.Response().StatusCode(), time.Since(started))

		log.WithField("method", c.Method()).
			WithField("path", c.Path()).
			WithField("status", c.Response().StatusCode()).
			WithField("duration", time.Since(started).String()).
			Debug("Request handled")

		return err
	}
}

// handleError is the safety net for errors that escape the handlers; the
// insights handler writes its own 400/429/500 bodies.
func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		if appErr.StatusCode == fiber.StatusTooManyRequests {
			return shared.ResponseJSON(c, appErr.StatusCode, dto.RateLimitErrorResponse{
				Error:      appErr.ErrorLabel,
				Message:    appErr.Message,
				RetryAfter: appErr.RetryAfter,
			})
		}
		if appErr.StatusCode >= fiber.StatusInternalServerError {
			return shared.ResponseJSON(c, appErr.StatusCode, dto.ProviderErrorResponse{
				Error:   appErr.ErrorLabel,
				Message: appErr.Message,
				Details: appErr.Details,
			})
		}
		return shared.ResponseJSON(c, appErr.StatusCode, dto.ErrorResponse{
			Error:   appErr.ErrorLabel,
			Message: appErr.Message,
		})
	}

	log.WithError(err).Error("Unhandled error")
	return shared.ResponseJSON(c, fiber.StatusInternalServerError, dto.ErrorResponse{
		Error:   "Internal server error",
		Message: "unexpected error",
	})
}
