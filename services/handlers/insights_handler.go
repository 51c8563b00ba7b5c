package handlers

import (
	"net"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/hafizh-dev/portfolio_api/dto"
	"github.com/hafizh-dev/portfolio_api/shared"
)

type InsightsHandler struct {
	insightsSvc  InsightsServiceInterface
	rateLimitSvc RateLimitServiceInterface
}

func NewInsightsHandler(insightsSvc InsightsServiceInterface, rateLimitSvc RateLimitServiceInterface) *InsightsHandler {
	return &InsightsHandler{
		insightsSvc:  insightsSvc,
		rateLimitSvc: rateLimitSvc,
	}
}

// @Summary Generate Career Insights
// @Description Validates the metrics payload, applies the per-IP rate limit and proxies a generation request to the configured LLM provider
// @Tags insights
// @Accept  json
// @Produce json
// @Param insightsRequest body dto.InsightsRequest true "Metrics payload"
// @Success 200 {object} dto.InsightsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 429 {object} dto.RateLimitErrorResponse
// @Failure 500 {object} dto.ProviderErrorResponse
// @Router /api/ai-insights [post]
func (h *InsightsHandler) PostInsights(c *fiber.Ctx) error {
	var req dto.InsightsRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.ResponseJSON(c, fiber.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request",
			Message: "request body must be valid JSON",
		})
	}

	// Validation runs before the rate check: a rejected request must not
	// consume quota and must not reach the provider.
	if err := req.Validate(); err != nil {
		return shared.ResponseJSON(c, fiber.StatusBadRequest, validationErrorBody(err))
	}

	identifier := getClientIP(c)
	result, err := h.rateLimitSvc.Check(c.UserContext(), identifier)
	if err != nil {
		// Store trouble should not lock users out.
		log.WithError(err).WithField("identifier", identifier).Error("Rate limit check failed")
	} else {
		h.rateLimitSvc.AddRateLimitHeaders(c, result)
		if !result.Allowed {
			return shared.ResponseJSON(c, fiber.StatusTooManyRequests, dto.RateLimitErrorResponse{
				Error:      "Too many requests",
				Message:    h.rateLimitSvc.RetryMessage(result.RetryAfter),
				RetryAfter: result.RetryAfter,
			})
		}
	}

	insights, err := h.insightsSvc.GenerateInsights(c.UserContext(), req)
	if err != nil {
		if appErr, ok := shared.GetAppError(err); ok {
			return shared.ResponseJSON(c, appErr.StatusCode, dto.ProviderErrorResponse{
				Error:   appErr.ErrorLabel,
				Message: appErr.Message,
				Details: appErr.Details,
			})
		}
		return shared.ResponseJSON(c, fiber.StatusInternalServerError, dto.ProviderErrorResponse{
			Error:   "Internal server error",
			Message: "Gagal menghasilkan insights.",
			Details: err.Error(),
		})
	}

	return shared.ResponseJSON(c, fiber.StatusOK, insights)
}

// @Summary Health
// @Description Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /api/health [get]
func (h *InsightsHandler) Health(c *fiber.Ctx) error {
	return shared.ResponseJSON(c, fiber.StatusOK, dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func validationErrorBody(err error) dto.ErrorResponse {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			if fieldError.Field() == "Range" {
				return dto.ErrorResponse{
					Error:   "Invalid range",
					Message: "range must be one of: 7d, 30d",
				}
			}
		}
	}

	return dto.ErrorResponse{
		Error:   "Invalid metrics",
		Message: "metrics object with coding_time_7d (number) is required",
	}
}

func getClientIP(c *fiber.Ctx) string {
	forwarded := c.Get("X-Forwarded-For")
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		if len(ips) > 0 {
			ip := strings.TrimSpace(ips[0])
			if ip != "" {
				return ip
			}
		}
	}

	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	if cfIP := c.Get("CF-Connecting-IP"); cfIP != "" {
		return cfIP
	}

	ip, _, err := net.SplitHostPort(c.Context().RemoteAddr().String())
	if err != nil {
		return c.Context().RemoteAddr().String()
	}

	return ip
}
