package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"genstory-server/internal/config"
	"genstory-server/internal/models"

	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var aiImageRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storybook_ai_image_requests_total",
		Help: "Total number of cover image generation requests.",
	},
	[]string{"model", "status"},
)

// ImageGenerator генерирует обложку истории.
type ImageGenerator interface {
	// GenerateCoverImage возвращает изображение в base64.
	GenerateCoverImage(ctx context.Context, story *models.Story) (string, error)
}

// Compile-time check
var _ ImageGenerator = (*openAIImageGenerator)(nil)

type openAIImageGenerator struct {
	client  *openaigo.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewImageGenerator создает генератор обложек поверх OpenAI image API.
func NewImageGenerator(cfg *config.Config, logger *zap.Logger) ImageGenerator {
	openaiConfig := openaigo.DefaultConfig(cfg.AIAPIKey)
	openaiConfig.BaseURL = cfg.AIBaseURL
	openaiConfig.HTTPClient = &http.Client{
		Timeout: cfg.AITimeout,
	}
	return &openAIImageGenerator{
		client:  openaigo.NewClientWithConfig(openaiConfig),
		model:   cfg.AIImageModel,
		timeout: cfg.AITimeout,
		logger:  logger.Named("OpenAIImageGenerator"),
	}
}

func (g *openAIImageGenerator) GenerateCoverImage(ctx context.Context, story *models.Story) (string, error) {
	logFields := []zap.Field{zap.String("storyID", story.ID.String()), zap.String("model", g.model)}
	g.logger.Debug("Generating cover image", logFields...)

	requestCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	startTime := time.Now()
	resp, err := g.client.CreateImage(requestCtx, openaigo.ImageRequest{
		Model:          g.model,
		Prompt:         coverImagePrompt(story),
		N:              1,
		Size:           openaigo.CreateImageSize1024x1024,
		ResponseFormat: openaigo.CreateImageResponseFormatB64JSON,
	})
	duration := time.Since(startTime)

	if err != nil {
		g.logger.Warn("Cover image generation failed", append(logFields, zap.Duration("duration", duration), zap.Error(err))...)
		aiImageRequestsTotal.With(prometheus.Labels{"model": g.model, "status": "error"}).Inc()
		return "", fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		g.logger.Warn("Cover image generation returned empty data", append(logFields, zap.Duration("duration", duration))...)
		aiImageRequestsTotal.With(prometheus.Labels{"model": g.model, "status": "error_empty_response"}).Inc()
		return "", fmt.Errorf("%w: получен пустой ответ генерации изображения", models.ErrGenerationFailed)
	}

	aiImageRequestsTotal.With(prometheus.Labels{"model": g.model, "status": "success"}).Inc()
	g.logger.Info("Cover image generated successfully", append(logFields, zap.Duration("duration", duration))...)
	return resp.Data[0].B64JSON, nil
}
