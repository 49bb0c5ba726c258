package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"genstory-server/internal/config"
	"genstory-server/internal/models"

	"go.uber.org/zap"
)

// GenerationGateway - единственная точка вызова генерации из сервисного слоя.
// Каждый метод возвращает либо полностью валидный результат, либо ошибку.
// Частичные структуры наружу не выходят.
type GenerationGateway interface {
	EnhanceCharacter(ctx context.Context, character *models.Character) (*models.CharacterEnhancement, error)
	EnhanceStory(ctx context.Context, story *models.Story, characters []*models.Character) (*models.StoryEnhancement, error)
	AuthorStoryContent(ctx context.Context, story *models.Story) (*models.StoryContent, error)
}

// Compile-time check
var _ GenerationGateway = (*generationGateway)(nil)

type generationGateway struct {
	aiClient       AIClient
	timeout        time.Duration
	maxAttempts    int
	baseRetryDelay time.Duration
	logger         *zap.Logger
}

// NewGenerationGateway создает шлюз генерации с параметрами ретраев из конфига.
func NewGenerationGateway(aiClient AIClient, cfg *config.Config, logger *zap.Logger) GenerationGateway {
	return &generationGateway{
		aiClient:       aiClient,
		timeout:        cfg.AITimeout,
		maxAttempts:    cfg.AIMaxAttempts,
		baseRetryDelay: cfg.AIBaseRetryDelay,
		logger:         logger.Named("GenerationGateway"),
	}
}

// generate выполняет вызов AI с ограниченным числом попыток и
// экспоненциальной задержкой с джиттером между ними.
func (g *generationGateway) generate(ctx context.Context, task string, systemPrompt string, userPrompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		g.logger.Debug("Calling AI API", zap.String("task", task), zap.Int("attempt", attempt), zap.Int("maxAttempts", g.maxAttempts))

		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		response, _, err := g.aiClient.GenerateJSON(callCtx, task, systemPrompt, userPrompt)
		cancel()

		if err == nil {
			return response, nil
		}
		lastErr = err
		g.logger.Warn("AI API call failed",
			zap.String("task", task),
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", g.maxAttempts),
			zap.Error(err),
		)

		if attempt == g.maxAttempts {
			break
		}
		// Отмена внешнего контекста - не повод для ретрая
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", models.ErrGenerationFailed, ctx.Err())
		}

		delay := float64(g.baseRetryDelay) * math.Pow(2, float64(attempt-1))
		jitter := delay * 0.1
		delay += jitter * (rand.Float64()*2 - 1)
		waitDuration := time.Duration(delay)
		if waitDuration < g.baseRetryDelay {
			waitDuration = g.baseRetryDelay
		}
		g.logger.Debug("Waiting before next attempt", zap.String("task", task), zap.Duration("wait", waitDuration))
		select {
		case <-time.After(waitDuration):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", models.ErrGenerationFailed, ctx.Err())
		}
	}
	return "", fmt.Errorf("%w: исчерпаны попытки вызова AI: %v", models.ErrGenerationFailed, lastErr)
}

// decodeStrict декодирует JSON-ответ модели, запрещая неизвестные поля.
// Модели любят оборачивать JSON в markdown-ограждения, срезаем их.
func decodeStrict(raw string, out interface{}) error {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	dec := json.NewDecoder(bytes.NewReader([]byte(cleaned)))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func (g *generationGateway) EnhanceCharacter(ctx context.Context, character *models.Character) (*models.CharacterEnhancement, error) {
	response, err := g.generate(ctx, "enhance_character", storytellerSystemPrompt, characterEnhancementPrompt(character))
	if err != nil {
		return nil, err
	}

	var enhancement models.CharacterEnhancement
	if err := decodeStrict(response, &enhancement); err != nil {
		g.logger.Warn("Failed to decode character enhancement", zap.String("characterID", character.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: некорректный JSON ответа: %v", models.ErrGenerationFailed, err)
	}
	if enhancement.OptimizedName == "" ||
		enhancement.OptimizedDescription == "" ||
		len(enhancement.OptimizedTraits) == 0 ||
		enhancement.OptimizedStoryContext == "" {
		g.logger.Warn("Character enhancement is missing required fields", zap.String("characterID", character.ID.String()))
		return nil, fmt.Errorf("%w: в ответе отсутствуют обязательные поля", models.ErrGenerationFailed)
	}
	return &enhancement, nil
}

func (g *generationGateway) EnhanceStory(ctx context.Context, story *models.Story, characters []*models.Character) (*models.StoryEnhancement, error) {
	response, err := g.generate(ctx, "enhance_story", storytellerSystemPrompt, storyEnhancementPrompt(story, characters))
	if err != nil {
		return nil, err
	}

	var enhancement models.StoryEnhancement
	if err := decodeStrict(response, &enhancement); err != nil {
		g.logger.Warn("Failed to decode story enhancement", zap.String("storyID", story.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: некорректный JSON ответа: %v", models.ErrGenerationFailed, err)
	}
	if enhancement.OptimizedTitle == "" ||
		enhancement.OptimizedDescription == "" ||
		len(enhancement.CharacterRoles) == 0 {
		g.logger.Warn("Story enhancement is missing required fields", zap.String("storyID", story.ID.String()))
		return nil, fmt.Errorf("%w: в ответе отсутствуют обязательные поля", models.ErrGenerationFailed)
	}
	return &enhancement, nil
}

func (g *generationGateway) AuthorStoryContent(ctx context.Context, story *models.Story) (*models.StoryContent, error) {
	response, err := g.generate(ctx, "author_story_content", storytellerSystemPrompt, storyContentPrompt(story))
	if err != nil {
		return nil, err
	}

	var content models.StoryContent
	if err := decodeStrict(response, &content); err != nil {
		g.logger.Warn("Failed to decode story content", zap.String("storyID", story.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: некорректный JSON ответа: %v", models.ErrGenerationFailed, err)
	}
	if content.Introduction == "" ||
		content.Middle == "" ||
		content.Climax == "" ||
		content.Conclusion == "" ||
		content.FullStory == "" {
		g.logger.Warn("Story content is missing required fields", zap.String("storyID", story.ID.String()))
		return nil, fmt.Errorf("%w: в ответе отсутствуют обязательные поля", models.ErrGenerationFailed)
	}
	return &content, nil
}
