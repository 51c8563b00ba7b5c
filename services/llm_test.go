package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hafizh-dev/portfolio_api/shared"
)

func newOpenAIService(baseURL string) *LLMService {
	return &LLMService{
		provider:      shared.ProviderOpenAI,
		openAIModel:   "gpt-4o-mini",
		openAIBaseURL: baseURL,
		httpClient:    &http.Client{Timeout: 5 * time.Second},
	}
}

func TestLLMService_MockModeReturnsValidPayload(t *testing.T) {
	svc := &LLMService{mockMode: true}

	raw, err := svc.Generate(context.Background(), "ignored")
	require.NoError(t, err)

	resp := NormalizeInsights(raw)
	assert.NotEqual(t, FallbackInsights(), resp, "mock payload must survive validation")
	assert.Equal(t, "Performance Tuning", resp.NextWeekGoal.Title)
	assert.Len(t, resp.Recommendations, 3)
}

func TestLLMService_OpenAISuccess(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	var gotAuth string
	var gotBody []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hasil analisis"}}]}`))
	}))
	defer ts.Close()

	svc := newOpenAIService(ts.URL)

	raw, err := svc.Generate(context.Background(), "analyze this")
	require.NoError(t, err)
	assert.Equal(t, "hasil analisis", raw)
	assert.Equal(t, "Bearer test-key", gotAuth)

	var req chatCompletionRequest
	require.NoError(t, shared.JSON.Unmarshal(gotBody, &req))
	assert.Equal(t, "gpt-4o-mini", req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "analyze this", req.Messages[1].Content)
	assert.Equal(t, 1000, req.MaxTokens)
}

func TestLLMService_OpenAIUpstreamFailure(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	svc := newOpenAIService(ts.URL)

	_, err := svc.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}

func TestLLMService_OpenAIEmptyCompletion(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer ts.Close()

	svc := newOpenAIService(ts.URL)

	_, err := svc.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestLLMService_MissingCredentialFailsAtCallTime(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	openAI := newOpenAIService("http://unused")
	_, err := openAI.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")

	gemini := &LLMService{provider: shared.ProviderGemini}
	_, err = gemini.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}
