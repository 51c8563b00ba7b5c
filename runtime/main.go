package main

import (
	"os"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/hafizh-dev/portfolio_api/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using process environment")
	}

	if level, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}

	ctx, err := context.NewCtx(
		&services.RedisService{},
		&services.RateLimitService{},
		&services.LLMService{},
		&services.InsightsService{},
		&services.MonitoringService{},

		&services.HttpService{},
	)
	if err != nil {
		log.WithError(err).Fatal("Failed to build service context")
		return
	}

	if err := ctx.Run(); err != nil {
		log.WithError(err).Fatal("Service runtime exited")
		return
	}
}
