package services

import (
	"context"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/hafizh-dev/portfolio_api/dto"
	"github.com/hafizh-dev/portfolio_api/shared"
)

// InsightsService runs the generation pipeline: prompt → provider call →
// normalization. Rate limiting and request validation happen in the handler
// before this service is ever touched.
type InsightsService struct {
	appContext.DefaultService

	llmSvc *LLMService
}

const INSIGHTS_SVC = "insights_svc"

func (svc InsightsService) Id() string {
	return INSIGHTS_SVC
}

func (svc *InsightsService) Start() error {
	svc.llmSvc = svc.Service(LLM_SVC).(*LLMService)
	return nil
}

func (svc *InsightsService) GenerateInsights(ctx context.Context, req dto.InsightsRequest) (dto.InsightsResponse, error) {
	log.WithField("track", req.Track).
		WithField("range", req.Range).
		Info("Generating insights")

	started := time.Now()
	prompt := BuildInsightsPrompt(req)

	raw, err := svc.llmSvc.Generate(ctx, prompt)
	if err != nil {
		log.WithError(err).Error("Insight generation failed")
		return dto.InsightsResponse{}, shared.NewProviderError(err, "Gagal menghasilkan insights.")
	}

	generationDurationSeconds.Observe(time.Since(started).Seconds())

	return NormalizeInsights(raw), nil
}
