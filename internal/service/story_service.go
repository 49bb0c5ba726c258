package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"genstory-server/internal/llm"
	"genstory-server/internal/models"
	"genstory-server/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// minStoryCharacters - минимальный состав истории.
const minStoryCharacters = 2

// CreateStoryInput - данные создания истории.
type CreateStoryInput struct {
	Title        string
	Description  string
	CharacterIDs []uuid.UUID
}

// UpdateStoryInput - частичная правка метаданных истории.
// Указанное поле перезаписывается и сбрасывает свой optimized-двойник.
type UpdateStoryInput struct {
	Title       *string
	Description *string
}

// StoryService определяет бизнес-логику жизненного цикла историй.
type StoryService interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateStoryInput) (*models.Story, error)
	Get(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*models.Story, error)
	List(ctx context.Context, userID uuid.UUID, status *models.StoryStatus, page, size int) ([]*models.Story, int64, error)
	Update(ctx context.Context, userID uuid.UUID, id uuid.UUID, input UpdateStoryInput) (*models.Story, error)
	Refine(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*models.Story, error)
	CreateContent(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*models.Story, error)
	CreateCoverImage(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*models.CoverImage, error)
	GetCoverImage(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*models.CoverImage, error)
	Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
}

// Compile-time check
var _ StoryService = (*storyServiceImpl)(nil)

type storyServiceImpl struct {
	storyRepo     repository.StoryRepository
	characterRepo repository.CharacterRepository
	coverRepo     repository.CoverImageRepository
	gateway       llm.GenerationGateway
	imageGen      llm.ImageGenerator
	logger        *zap.Logger
}

// NewStoryService создает сервис историй.
func NewStoryService(
	storyRepo repository.StoryRepository,
	characterRepo repository.CharacterRepository,
	coverRepo repository.CoverImageRepository,
	gateway llm.GenerationGateway,
	imageGen llm.ImageGenerator,
	logger *zap.Logger,
) StoryService {
	return &storyServiceImpl{
		storyRepo:     storyRepo,
		characterRepo: characterRepo,
		coverRepo:     coverRepo,
		gateway:       gateway,
		imageGen:      imageGen,
		logger:        logger.Named("StoryService"),
	}
}

// resolveRoster проверяет состав истории и возвращает персонажей
// в порядке переданных ID. Дубликаты, чужие, несуществующие и
// непригодные персонажи отклоняются целиком.
func (s *storyServiceImpl) resolveRoster(ctx context.Context, userID uuid.UUID, characterIDs []uuid.UUID) ([]*models.Character, error) {
	if len(characterIDs) < minStoryCharacters {
		return nil, fmt.Errorf("%w: нужно минимум %d персонажа", models.ErrInvalidCharacterIDs, minStoryCharacters)
	}

	seen := make(map[uuid.UUID]struct{}, len(characterIDs))
	for _, id := range characterIDs {
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("%w: дубликат персонажа %s", models.ErrInvalidCharacterIDs, id)
		}
		seen[id] = struct{}{}
	}

	characters, err := s.characterRepo.GetByIDs(ctx, characterIDs, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения персонажей истории: %w", err)
	}

	byID := make(map[uuid.UUID]*models.Character, len(characters))
	for _, c := range characters {
		byID[c.ID] = c
	}

	ordered := make([]*models.Character, 0, len(characterIDs))
	for _, id := range characterIDs {
		character, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: персонаж %s не найден", models.ErrInvalidCharacterIDs, id)
		}
		if !character.IsStoryEligible() {
			return nil, fmt.Errorf("%w: персонаж %s не готов для истории", models.ErrInvalidCharacterIDs, id)
		}
		ordered = append(ordered, character)
	}
	return ordered, nil
}

func (s *storyServiceImpl) Create(ctx context.Context, userID uuid.UUID, input CreateStoryInput) (*models.Story, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: название истории обязательно", models.ErrInvalidInput)
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, fmt.Errorf("%w: описание истории обязательно", models.ErrInvalidInput)
	}

	if _, err := s.resolveRoster(ctx, userID, input.CharacterIDs); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	story := &models.Story{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        input.Title,
		Description:  input.Description,
		CharacterIDs: input.CharacterIDs,
		Status:       models.StoryStatusDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storyRepo.Create(ctx, story); err != nil {
		return nil, fmt.Errorf("ошибка сохранения истории: %w", err)
	}
	s.logger.Info("Story created",
		zap.String("storyID", story.ID.String()),
		zap.String("userID", userID.String()),
		zap.Int("characterCount", len(input.CharacterIDs)),
	)
	return story, nil
}

func (s *storyServiceImpl) Get(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*models.Story, error) {
	return s.storyRepo.GetByID(ctx, id, userID)
}

func (s *storyServiceImpl) List(ctx context.Context, userID uuid.UUID, status *models.StoryStatus, page, size int) ([]*models.Story, int64, error) {
	if status != nil && !status.IsValid() {
		return nil, 0, fmt.Errorf("%w: недопустимый статус %q", models.ErrInvalidInput, *status)
	}
	page, size = normalizePage(page, size)
	return s.storyRepo.List(ctx, userID, repository.StoryFilter{Status: status, Page: page, Size: size})
}

// Update правит метаданные истории. Каждое переданное поле
// сбрасывает свой optimized-двойник. Финализированная история неизменяема.
func (s *storyServiceImpl) Update(ctx context.Context, userID uuid.UUID, id uuid.UUID, input UpdateStoryInput) (*models.Story, error) {
	story, err := s.storyRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории для правки: %w", err)
	}
	if story.Status == models.StoryStatusFinalized {
		s.logger.Warn("Attempt to update finalized story", zap.String("storyID", id.String()), zap.String("userID", userID.String()))
		return nil, models.ErrFinalized
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, fmt.Errorf("%w: название истории не может быть пустым", models.ErrInvalidInput)
		}
		story.Title = *input.Title
		story.OptimizedTitle = nil
	}
	if input.Description != nil {
		if strings.TrimSpace(*input.Description) == "" {
			return nil, fmt.Errorf("%w: описание истории не может быть пустым", models.ErrInvalidInput)
		}
		story.Description = *input.Description
		story.OptimizedDescription = nil
	}
	story.UpdatedAt = time.Now().UTC()

	if err := s.storyRepo.Update(ctx, story); err != nil {
		return nil, fmt.Errorf("ошибка обновления истории: %w", err)
	}
	s.logger.Info("Story updated", zap.String("storyID", id.String()), zap.String("userID", userID.String()))
	return story, nil
}

// Refine перепроверяет состав и обогащает историю через шлюз генерации.
// Название, описание и роли записываются единым блоком.
func (s *storyServiceImpl) Refine(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*models.Story, error) {
	story, err := s.storyRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории для refine: %w", err)
	}
	if story.Status == models.StoryStatusFinalized {
		s.logger.Warn("Attempt to refine finalized story", zap.String("storyID", id.String()))
		return nil, models.ErrInvalidStatus
	}

	// Состав мог устареть с момента создания (правки, удаления персонажей)
	characters, err := s.resolveRoster(ctx, userID, story.CharacterIDs)
	if err != nil {
		return nil, err
	}

	enhancement, err := s.gateway.EnhanceStory(ctx, story, characters)
	if err != nil {
		s.logger.Warn("Story enhancement failed", zap.String("storyID", id.String()), zap.Error(err))
		return nil, err
	}

	story.ApplyEnhancement(enhancement)
	story.Status = models.StoryStatusGenerated
	story.UpdatedAt = time.Now().UTC()

	if err := s.storyRepo.Update(ctx, story); err != nil {
		return nil, fmt.Errorf("ошибка сохранения результата refine: %w", err)
	}
	s.logger.Info("Story refined",
		zap.String("storyID", id.String()),
		zap.String("userID", userID.String()),
		zap.Int("roleCount", len(story.CharacterRoles)),
	)
	return story, nil
}

// CreateContent пишет полный текст истории. Требует пройденного refine.
func (s *storyServiceImpl) CreateContent(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*models.Story, error) {
	story, err := s.storyRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории для генерации контента: %w", err)
	}
	if !story.HasRoles() {
		s.logger.Warn("Attempt to author content before refine", zap.String("storyID", id.String()))
		return nil, models.ErrInvalidStatus
	}

	content, err := s.gateway.AuthorStoryContent(ctx, story)
	if err != nil {
		s.logger.Warn("Story content generation failed", zap.String("storyID", id.String()), zap.Error(err))
		return nil, err
	}

	story.Content = content
	story.Status = models.StoryStatusFinalized
	story.UpdatedAt = time.Now().UTC()

	if err := s.storyRepo.Update(ctx, story); err != nil {
		return nil, fmt.Errorf("ошибка сохранения контента истории: %w", err)
	}
	s.logger.Info("Story content created, story finalized", zap.String("storyID", id.String()), zap.String("userID", userID.String()))
	return story, nil
}

// CreateCoverImage генерирует обложку. Требует готового контента,
// повторная обложка не допускается.
func (s *storyServiceImpl) CreateCoverImage(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*models.CoverImage, error) {
	story, err := s.storyRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории для обложки: %w", err)
	}
	if story.Content == nil {
		s.logger.Warn("Attempt to create cover image before content", zap.String("storyID", id.String()))
		return nil, models.ErrInvalidStatus
	}
	if story.CoverImageID != nil {
		s.logger.Warn("Story already has a cover image", zap.String("storyID", id.String()))
		return nil, models.ErrCoverImageExists
	}

	base64Data, err := s.imageGen.GenerateCoverImage(ctx, story)
	if err != nil {
		s.logger.Warn("Cover image generation failed", zap.String("storyID", id.String()), zap.Error(err))
		return nil, err
	}

	image := &models.CoverImage{
		ID:         uuid.New(),
		StoryID:    story.ID,
		UserID:     userID,
		Base64Data: base64Data,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.coverRepo.Create(ctx, image); err != nil {
		return nil, err
	}
	s.logger.Info("Cover image created", zap.String("storyID", id.String()), zap.String("coverImageID", image.ID.String()))
	return image, nil
}

func (s *storyServiceImpl) GetCoverImage(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*models.CoverImage, error) {
	// Проверяем принадлежность истории пользователю до выдачи артефакта
	if _, err := s.storyRepo.GetByID(ctx, id, userID); err != nil {
		return nil, err
	}
	return s.coverRepo.GetByStoryID(ctx, id, userID)
}

func (s *storyServiceImpl) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	if err := s.storyRepo.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.logger.Info("Story deleted", zap.String("storyID", id.String()), zap.String("userID", userID.String()))
	return nil
}
