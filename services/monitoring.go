package services

import (
	"fmt"
	"os"
	"strconv"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/hafizh-dev/portfolio_api/shared"
)

const (
	MONITORING_SVC          = "monitoring_svc"
	DEFAULT_PROMETHEUS_PORT = 2112
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"endpoint", "method", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint", "method", "status"},
	)

	rateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "insights_rate_limited_total",
			Help: "Requests denied by the sliding-window rate limiter",
		},
	)

	providerAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_provider_attempts_total",
			Help: "Generation attempts per provider and model",
		},
		[]string{"provider", "model"},
	)

	providerFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_provider_failures_total",
			Help: "Failed generation attempts per provider and model",
		},
		[]string{"provider", "model"},
	)

	// Distinct from provider failures: the model answered, but with a payload
	// that failed schema validation and was replaced by the fallback.
	fallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "insights_fallback_substitutions_total",
			Help: "Responses replaced by the canonical fallback payload",
		},
	)

	generationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "insights_generation_duration_seconds",
			Help:    "End-to-end LLM generation duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)
)

type MonitoringService struct {
	appContext.DefaultService

	port     int
	register *prometheus.Registry
	server   *fiber.App
}

func (svc *MonitoringService) Id() string {
	return MONITORING_SVC
}

func (svc *MonitoringService) Start() error {
	port, err := strconv.Atoi(os.Getenv("PROMETHEUS_PORT"))
	if err != nil {
		port = DEFAULT_PROMETHEUS_PORT
	}
	svc.port = port

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	reg.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		rateLimitedTotal,
		providerAttemptsTotal,
		providerFailuresTotal,
		fallbackTotal,
		generationDurationSeconds,
	)
	svc.register = reg

	svc.server = fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	svc.server.Use(recover.New())
	svc.server.Get("/metrics", svc.metricsHandler)
	svc.server.Get("/health", svc.healthHandler)

	go func() {
		log.WithField("port", svc.port).Info("Prometheus metrics server started")
		if err := svc.server.Listen(fmt.Sprintf(":%v", svc.port)); err != nil {
			log.WithError(err).Error("Metrics server stopped")
		}
	}()

	return nil
}

func (svc *MonitoringService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

func (svc *MonitoringService) metricsHandler(c *fiber.Ctx) error {
	handler := promhttp.HandlerFor(svc.register, promhttp.HandlerOpts{})
	return adaptor.HTTPHandler(handler)(c)
}

func (svc *MonitoringService) healthHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "healthy",
		"service":   shared.ServiceName,
		"timestamp": time.Now().Unix(),
	})
}

// ObserveRequest records one served HTTP request; called from the request
// logging middleware in the HTTP service.
func ObserveRequest(endpoint, method string, status int, duration time.Duration) {
	statusLabel := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(endpoint, method, statusLabel).Inc()
	httpRequestDurationSeconds.WithLabelValues(endpoint, method, statusLabel).Observe(duration.Seconds())
}
