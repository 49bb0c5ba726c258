package repository

import (
	"context"

	"genstory-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX объединяет pgxpool.Pool и pgx.Tx, чтобы репозитории могли
// работать и с пулом, и внутри транзакции.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// CharacterFilter - параметры листинга персонажей.
type CharacterFilter struct {
	Status *models.CharacterStatus
	Page   int // 1-based
	Size   int
}

// CharacterRepository определяет методы для работы с хранилищем персонажей.
type CharacterRepository interface {
	Create(ctx context.Context, character *models.Character) error
	GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Character, error)
	// GetByIDs возвращает персонажей пользователя по списку ID.
	// Отсутствующие и чужие ID просто не попадают в результат.
	GetByIDs(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) ([]*models.Character, error)
	List(ctx context.Context, userID uuid.UUID, filter CharacterFilter) ([]*models.Character, int64, error)
	Update(ctx context.Context, character *models.Character) error
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
}

// StoryFilter - параметры листинга историй.
type StoryFilter struct {
	Status *models.StoryStatus
	Page   int // 1-based
	Size   int
}

// StoryRepository определяет методы для работы с хранилищем историй.
type StoryRepository interface {
	Create(ctx context.Context, story *models.Story) error
	GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Story, error)
	List(ctx context.Context, userID uuid.UUID, filter StoryFilter) ([]*models.Story, int64, error)
	Update(ctx context.Context, story *models.Story) error
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
}

// CoverImageRepository определяет методы для работы с обложками историй.
type CoverImageRepository interface {
	// Create сохраняет обложку и проставляет cover_image_id истории одной транзакцией.
	Create(ctx context.Context, image *models.CoverImage) error
	GetByStoryID(ctx context.Context, storyID uuid.UUID, userID uuid.UUID) (*models.CoverImage, error)
}
