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

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CreateCharacterInput - данные создания персонажа.
type CreateCharacterInput struct {
	Name         *string
	Description  string
	Traits       []models.Trait
	StoryContext *string
}

// UpdateCharacterInput - данные правки базовых полей персонажа.
type UpdateCharacterInput struct {
	Name         *string
	Description  string
	Traits       []models.Trait
	StoryContext *string
}

// CharacterService определяет бизнес-логику жизненного цикла персонажей.
type CharacterService interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateCharacterInput) (*models.Character, error)
	Get(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*models.Character, error)
	List(ctx context.Context, userID uuid.UUID, status *models.CharacterStatus, page, size int) ([]*models.Character, int64, error)
	Update(ctx context.Context, userID uuid.UUID, id uuid.UUID, input UpdateCharacterInput) (*models.Character, error)
	Generate(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*models.Character, error)
	Finalize(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*models.Character, error)
	Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
}

// Compile-time check
var _ CharacterService = (*characterServiceImpl)(nil)

type characterServiceImpl struct {
	repo    repository.CharacterRepository
	gateway llm.GenerationGateway
	logger  *zap.Logger
}

// NewCharacterService создает сервис персонажей.
func NewCharacterService(repo repository.CharacterRepository, gateway llm.GenerationGateway, logger *zap.Logger) CharacterService {
	return &characterServiceImpl{
		repo:    repo,
		gateway: gateway,
		logger:  logger.Named("CharacterService"),
	}
}

// normalizePage приводит параметры пагинации к допустимым значениям.
func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

func (s *characterServiceImpl) Create(ctx context.Context, userID uuid.UUID, input CreateCharacterInput) (*models.Character, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, fmt.Errorf("%w: описание персонажа обязательно", models.ErrInvalidInput)
	}

	now := time.Now().UTC()
	character := &models.Character{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         input.Name,
		Description:  input.Description,
		Traits:       input.Traits,
		StoryContext: input.StoryContext,
		Status:       models.CharacterStatusDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, character); err != nil {
		return nil, fmt.Errorf("ошибка сохранения персонажа: %w", err)
	}
	s.logger.Info("Character created", zap.String("characterID", character.ID.String()), zap.String("userID", userID.String()))
	return character, nil
}

func (s *characterServiceImpl) Get(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*models.Character, error) {
	return s.repo.GetByID(ctx, id, userID)
}

func (s *characterServiceImpl) List(ctx context.Context, userID uuid.UUID, status *models.CharacterStatus, page, size int) ([]*models.Character, int64, error) {
	if status != nil && !status.IsValid() {
		return nil, 0, fmt.Errorf("%w: недопустимый статус %q", models.ErrInvalidInput, *status)
	}
	page, size = normalizePage(page, size)
	return s.repo.List(ctx, userID, repository.CharacterFilter{Status: status, Page: page, Size: size})
}

// Update перезаписывает базовые поля и сбрасывает ВСЕ optimized-поля:
// после правки обогащение считается устаревшим целиком.
func (s *characterServiceImpl) Update(ctx context.Context, userID uuid.UUID, id uuid.UUID, input UpdateCharacterInput) (*models.Character, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, fmt.Errorf("%w: описание персонажа обязательно", models.ErrInvalidInput)
	}

	character, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения персонажа для правки: %w", err)
	}
	if character.Status == models.CharacterStatusFinalized {
		s.logger.Warn("Attempt to update finalized character", zap.String("characterID", id.String()), zap.String("userID", userID.String()))
		return nil, models.ErrFinalized
	}

	character.Name = input.Name
	character.Description = input.Description
	character.Traits = input.Traits
	character.StoryContext = input.StoryContext
	character.ClearOptimized()
	character.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, character); err != nil {
		return nil, fmt.Errorf("ошибка обновления персонажа: %w", err)
	}
	s.logger.Info("Character updated, enhancement reset", zap.String("characterID", id.String()), zap.String("userID", userID.String()))
	return character, nil
}

// Generate обогащает персонажа через шлюз генерации.
// Разрешено в draft и generated (повторная генерация перезаписывает результат).
// При ошибке генерации персонаж остается нетронутым.
func (s *characterServiceImpl) Generate(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*models.Character, error) {
	character, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения персонажа для генерации: %w", err)
	}
	if character.Status != models.CharacterStatusDraft && character.Status != models.CharacterStatusGenerated {
		s.logger.Warn("Attempt to generate character in invalid status",
			zap.String("characterID", id.String()),
			zap.String("status", string(character.Status)),
		)
		return nil, models.ErrInvalidStatus
	}

	enhancement, err := s.gateway.EnhanceCharacter(ctx, character)
	if err != nil {
		s.logger.Warn("Character enhancement failed", zap.String("characterID", id.String()), zap.Error(err))
		return nil, err
	}

	character.ApplyEnhancement(enhancement)
	character.Status = models.CharacterStatusGenerated
	character.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, character); err != nil {
		return nil, fmt.Errorf("ошибка сохранения результата генерации: %w", err)
	}
	s.logger.Info("Character enhanced", zap.String("characterID", id.String()), zap.String("userID", userID.String()))
	return character, nil
}

// Finalize переводит персонажа в finalized. Допустим только из generated.
func (s *characterServiceImpl) Finalize(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*models.Character, error) {
	character, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения персонажа для финализации: %w", err)
	}
	if character.Status != models.CharacterStatusGenerated {
		s.logger.Warn("Attempt to finalize character in invalid status",
			zap.String("characterID", id.String()),
			zap.String("status", string(character.Status)),
		)
		return nil, models.ErrInvalidStatus
	}

	character.Status = models.CharacterStatusFinalized
	character.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, character); err != nil {
		return nil, fmt.Errorf("ошибка финализации персонажа: %w", err)
	}
	s.logger.Info("Character finalized", zap.String("characterID", id.String()), zap.String("userID", userID.String()))
	return character, nil
}

func (s *characterServiceImpl) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.logger.Info("Character deleted", zap.String("characterID", id.String()), zap.String("userID", userID.String()))
	return nil
}
