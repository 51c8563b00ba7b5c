package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hafizh-dev/portfolio_api/model"
)

func newTestRateLimitService() *RateLimitService {
	svc := &RateLimitService{}
	svc.config = model.RateLimitConfig{
		MaxRequests: 10,
		WindowSize:  5 * time.Minute,
	}
	svc.SetStore(NewMemoryRateLimitStore())
	return svc
}

func TestRateLimitService_ElevenRapidRequests(t *testing.T) {
	svc := newTestRateLimitService()

	for i := 0; i < 10; i++ {
		result, err := svc.Check(context.Background(), "203.0.113.7")
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d should pass", i+1)
	}

	result, err := svc.Check(context.Background(), "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Greater(t, result.RetryAfter, 0)
}

func TestRateLimitService_RetryMessage(t *testing.T) {
	svc := newTestRateLimitService()
	assert.Equal(t, "Rate limit exceeded. Try again in 42 seconds.", svc.RetryMessage(42))
}
