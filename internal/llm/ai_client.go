package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"genstory-server/internal/config"
	"genstory-server/internal/models"

	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storybook_ai_requests_total",
			Help: "Total number of requests to the AI API.",
		},
		[]string{"model", "status", "task"},
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storybook_ai_request_duration_seconds",
			Help:    "Histogram of AI API request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model", "task"},
	)
	aiTotalTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storybook_ai_total_tokens",
			Help:    "Histogram of total token counts (prompt + completion).",
			Buckets: prometheus.LinearBuckets(350, 350, 20),
		},
		[]string{"model", "task"},
	)
)

// UsageInfo содержит информацию об использовании токенов.
type UsageInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// AIClient интерфейс для взаимодействия с AI API.
// task - метка задачи генерации для метрик (enhance_character и т.д.).
type AIClient interface {
	// GenerateJSON отправляет запрос с требованием JSON-ответа
	// и возвращает сырой текст ответа модели.
	GenerateJSON(ctx context.Context, task string, systemPrompt string, userPrompt string) (string, UsageInfo, error)
}

// Compile-time check
var _ AIClient = (*openAIClient)(nil)

// openAIClient реализует AIClient с использованием go-openai.
type openAIClient struct {
	client *openaigo.Client
	model  string
	logger *zap.Logger
}

// NewAIClient создает клиент для взаимодействия с OpenAI-совместимым API.
func NewAIClient(cfg *config.Config, logger *zap.Logger) AIClient {
	openaiConfig := openaigo.DefaultConfig(cfg.AIAPIKey)
	openaiConfig.BaseURL = cfg.AIBaseURL
	openaiConfig.HTTPClient = &http.Client{
		Timeout: cfg.AITimeout,
	}
	client := openaigo.NewClientWithConfig(openaiConfig)

	log := logger.Named("OpenAIClient")
	log.Info("OpenAI client created",
		zap.String("baseURL", cfg.AIBaseURL),
		zap.String("model", cfg.AIModel),
		zap.Duration("timeout", cfg.AITimeout),
	)
	return &openAIClient{
		client: client,
		model:  cfg.AIModel,
		logger: log,
	}
}

func (c *openAIClient) GenerateJSON(ctx context.Context, task string, systemPrompt string, userPrompt string) (string, UsageInfo, error) {
	usageInfo := UsageInfo{}

	if strings.TrimSpace(systemPrompt) == "" {
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error", "task": task}).Inc()
		return "", usageInfo, fmt.Errorf("%w: системный промт пуст", models.ErrGenerationFailed)
	}

	messages := []openaigo.ChatCompletionMessage{
		{
			Role:    openaigo.ChatMessageRoleSystem,
			Content: systemPrompt,
		},
		{
			Role:    openaigo.ChatMessageRoleUser,
			Content: userPrompt,
		},
	}

	startTime := time.Now()
	c.logger.Debug("Sending request to AI",
		zap.String("task", task),
		zap.Int("systemPromptBytes", len(systemPrompt)),
		zap.Int("userPromptBytes", len(userPrompt)),
	)

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openaigo.ChatCompletionRequest{
			Model:    c.model,
			Messages: messages,
			ResponseFormat: &openaigo.ChatCompletionResponseFormat{
				Type: openaigo.ChatCompletionResponseFormatTypeJSONObject,
			},
		},
	)

	duration := time.Since(startTime)

	if err != nil {
		c.logger.Warn("AI API request failed", zap.String("task", task), zap.Duration("duration", duration), zap.Error(err))
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error", "task": task}).Inc()
		return "", usageInfo, fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		c.logger.Warn("AI API returned empty response", zap.String("task", task), zap.Duration("duration", duration))
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error_empty_response", "task": task}).Inc()
		return "", usageInfo, fmt.Errorf("%w: получен пустой ответ", models.ErrGenerationFailed)
	}

	aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "success", "task": task}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": c.model, "task": task}).Observe(duration.Seconds())

	generatedText := resp.Choices[0].Message.Content
	c.logger.Debug("AI API response received",
		zap.String("task", task),
		zap.Duration("duration", duration),
		zap.Int("responseLength", len(generatedText)),
	)

	if resp.Usage.TotalTokens > 0 {
		aiTotalTokens.With(prometheus.Labels{"model": c.model, "task": task}).Observe(float64(resp.Usage.TotalTokens))
		usageInfo.PromptTokens = resp.Usage.PromptTokens
		usageInfo.CompletionTokens = resp.Usage.CompletionTokens
		usageInfo.TotalTokens = resp.Usage.TotalTokens
	}

	return generatedText, usageInfo, nil
}
