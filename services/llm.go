package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	genai "google.golang.org/genai"

	"github.com/hafizh-dev/portfolio_api/shared"
)

var ErrEmptyCompletion = errors.New("llm: empty completion from model")

// LLMService produces raw insight text from a prompt. The provider family is
// read once at configure time; a request that exhausts its configured
// backends fails rather than silently crossing to the other family.
type LLMService struct {
	appContext.DefaultService

	provider string
	mockMode bool

	geminiModels []string
	geminiOnce   sync.Once
	geminiCli    *genai.Client
	geminiErr    error

	openAIModel   string
	openAIBaseURL string
	httpClient    *http.Client
}

const LLM_SVC = "llm_svc"

func (svc LLMService) Id() string {
	return LLM_SVC
}

func (svc *LLMService) Configure(ctx *appContext.Context) error {
	svc.provider = strings.ToLower(os.Getenv("LLM_PROVIDER"))
	if svc.provider == "" {
		svc.provider = shared.ProviderGemini
	}
	svc.mockMode = os.Getenv("MOCK_AI") == "true"

	svc.geminiModels = []string{"gemini-1.5-flash", "gemini-1.5-pro", "gemini-pro"}

	svc.openAIModel = "gpt-4o-mini"
	svc.openAIBaseURL = os.Getenv("OPENAI_BASE_URL")
	if svc.openAIBaseURL == "" {
		svc.openAIBaseURL = "https://api.openai.com/v1/chat/completions"
	}
	svc.httpClient = &http.Client{Timeout: 60 * time.Second}

	return svc.DefaultService.Configure(ctx)
}

func (svc *LLMService) Start() error {
	log.WithField("provider", svc.Provider()).Info("LLM service ready")
	return nil
}

// Provider reports the active backend for logs and startup banners.
func (svc *LLMService) Provider() string {
	if svc.mockMode {
		return "mock"
	}
	return svc.provider
}

// Generate returns raw model output for the prompt. Every error it returns
// means the configured provider family is exhausted.
func (svc *LLMService) Generate(ctx context.Context, prompt string) (string, error) {
	if svc.mockMode {
		return svc.mockResponse()
	}

	if svc.provider == shared.ProviderOpenAI {
		return svc.callOpenAI(ctx, prompt)
	}
	return svc.callGemini(ctx, prompt)
}

// ==================== GEMINI ====================

func (svc *LLMService) geminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	svc.geminiOnce.Do(func() {
		svc.geminiCli, svc.geminiErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	return svc.geminiCli, svc.geminiErr
}

func (svc *LLMService) callGemini(ctx context.Context, prompt string) (string, error) {
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		return "", errors.New("GEMINI_API_KEY belum diisi di file .env")
	}

	cli, err := svc.geminiClient(ctx, apiKey)
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}

	var lastErr error
	for _, model := range svc.geminiModels {
		providerAttemptsTotal.WithLabelValues(shared.ProviderGemini, model).Inc()
		log.WithField("model", model).Debug("Trying Gemini model")

		resp, err := cli.Models.GenerateContent(ctx, model,
			[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
			nil,
		)
		if err != nil {
			providerFailuresTotal.WithLabelValues(shared.ProviderGemini, model).Inc()
			log.WithError(err).WithField("model", model).Warn("Gemini model failed")
			lastErr = err
			continue
		}

		text := ""
		if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil && len(resp.Candidates[0].Content.Parts) > 0 {
			text = resp.Candidates[0].Content.Parts[0].Text
		}
		if text != "" {
			log.WithField("model", model).Info("Gemini generation succeeded")
			return text, nil
		}

		providerFailuresTotal.WithLabelValues(shared.ProviderGemini, model).Inc()
		lastErr = ErrEmptyCompletion
	}

	return "", fmt.Errorf("Google AI Error: %v. Coba gunakan LLM_PROVIDER=openai atau aktifkan MOCK_AI=true di .env", lastErr)
}

// ==================== OPENAI ====================

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (svc *LLMService) callOpenAI(ctx context.Context, prompt string) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", errors.New("OPENAI_API_KEY belum diisi")
	}

	providerAttemptsTotal.WithLabelValues(shared.ProviderOpenAI, svc.openAIModel).Inc()

	reqBody := chatCompletionRequest{
		Model: svc.openAIModel,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a career advisor AI. Always respond in Indonesian and with valid JSON only."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   1000,
	}

	b, err := shared.JSON.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.openAIBaseURL, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := svc.httpClient.Do(req)
	if err != nil {
		providerFailuresTotal.WithLabelValues(shared.ProviderOpenAI, svc.openAIModel).Inc()
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		providerFailuresTotal.WithLabelValues(shared.ProviderOpenAI, svc.openAIModel).Inc()
		body, _ := io.ReadAll(resp.Body)
		const max = 2048
		if len(body) > max {
			body = body[:max]
		}
		return "", fmt.Errorf("openai: unexpected status %s: %s", resp.Status, string(body))
	}

	var out chatCompletionResponse
	if err := shared.JSON.NewDecoder(resp.Body).Decode(&out); err != nil {
		providerFailuresTotal.WithLabelValues(shared.ProviderOpenAI, svc.openAIModel).Inc()
		return "", err
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		providerFailuresTotal.WithLabelValues(shared.ProviderOpenAI, svc.openAIModel).Inc()
		return "", ErrEmptyCompletion
	}

	return out.Choices[0].Message.Content, nil
}

// ==================== MOCK MODE ====================

const mockInsightsJSON = `{
  "summary": "Hafiz menunjukkan dedikasi yang signifikan dalam pengembangan infrastruktur data menggunakan Python. Fokus utama pada project 'Test' selama 14 jam mengindikasikan progres teknis yang stabil.",
  "focus": "Pengguna saat ini mengarahkan pengembangan pada optimasi pemrosesan data dan arsitektur backend.",
  "recommendations": [
    "Implementasi unit testing pada modul Python untuk meningkatkan keandalan sistem.",
    "Eksplorasi optimasi query untuk efisiensi performa pada data besar.",
    "Dokumentasi arsitektur project 'Test' untuk standarisasi alur kerja."
  ],
  "alerts": ["Terdapat peningkatan aktivitas sebesar 20% dibandingkan periode sebelumnya."],
  "next_week_goal": {
    "title": "Performance Tuning",
    "target": "Optimasi 2 modul utama pada project 'Test'."
  }
}`

func (svc *LLMService) mockResponse() (string, error) {
	log.Info("Using demo mode (MOCK_AI)")
	time.Sleep(150 * time.Millisecond)
	return mockInsightsJSON, nil
}
