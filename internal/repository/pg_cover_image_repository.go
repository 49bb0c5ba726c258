package repository

import (
	"context"
	"errors"
	"fmt"

	"genstory-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Compile-time check
var _ CoverImageRepository = (*pgCoverImageRepository)(nil)

type pgCoverImageRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgCoverImageRepository создает репозиторий обложек поверх PostgreSQL.
// Принимает пул, а не DBTX: запись обложки транзакционная.
func NewPgCoverImageRepository(pool *pgxpool.Pool, logger *zap.Logger) CoverImageRepository {
	return &pgCoverImageRepository{
		pool:   pool,
		logger: logger.Named("PgCoverImageRepo"),
	}
}

// Create сохраняет обложку и проставляет ссылку в истории одной транзакцией.
// Частично записанной обложки (артефакт без ссылки) не бывает.
func (r *pgCoverImageRepository) Create(ctx context.Context, image *models.CoverImage) error {
	logFields := []zap.Field{
		zap.String("coverImageID", image.ID.String()),
		zap.String("storyID", image.StoryID.String()),
		zap.String("userID", image.UserID.String()),
	}
	r.logger.Debug("Creating cover image", logFields...)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error("Failed to begin transaction", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка открытия транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	insertQuery := `
        INSERT INTO cover_images (id, story_id, user_id, base64_data, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err = tx.Exec(ctx, insertQuery, image.ID, image.StoryID, image.UserID, image.Base64Data, image.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert cover image", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка сохранения обложки: %w", err)
	}

	// cover_image_id IS NULL защищает от гонки двух параллельных запросов
	updateQuery := `
        UPDATE stories SET cover_image_id = $3, updated_at = $4
        WHERE id = $1 AND user_id = $2 AND cover_image_id IS NULL
    `
	tag, err := tx.Exec(ctx, updateQuery, image.StoryID, image.UserID, image.ID, image.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to link cover image to story", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка привязки обложки к истории %s: %w", image.StoryID, err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn("Story already has a cover image or was not found", logFields...)
		return models.ErrCoverImageExists
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("Failed to commit cover image transaction", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка фиксации транзакции обложки: %w", err)
	}
	r.logger.Info("Cover image created successfully", logFields...)
	return nil
}

func (r *pgCoverImageRepository) GetByStoryID(ctx context.Context, storyID uuid.UUID, userID uuid.UUID) (*models.CoverImage, error) {
	query := `
        SELECT id, story_id, user_id, base64_data, created_at
        FROM cover_images
        WHERE story_id = $1 AND user_id = $2
    `
	logFields := []zap.Field{zap.String("storyID", storyID.String()), zap.String("userID", userID.String())}
	r.logger.Debug("Getting cover image by story ID", logFields...)

	var image models.CoverImage
	err := pgxscan.Get(ctx, r.pool, &image, query, storyID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("Cover image not found for story", logFields...)
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get cover image", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("ошибка получения обложки истории %s: %w", storyID, err)
	}
	return &image, nil
}
