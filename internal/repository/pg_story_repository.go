package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"genstory-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Compile-time check
var _ StoryRepository = (*pgStoryRepository)(nil)

type pgStoryRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgStoryRepository создает репозиторий историй поверх PostgreSQL.
func NewPgStoryRepository(db DBTX, logger *zap.Logger) StoryRepository {
	return &pgStoryRepository{
		db:     db,
		logger: logger.Named("PgStoryRepo"),
	}
}

const storyColumns = `
    id, user_id, title, optimized_title, description, optimized_description,
    character_ids, character_roles, content, cover_image_id,
    status, created_at, updated_at`

// scanStory читает строку истории, разворачивая jsonb-колонки.
func scanStory(row pgx.Row) (*models.Story, error) {
	s := &models.Story{}
	var characterIDsJSON, rolesJSON, contentJSON []byte
	err := row.Scan(
		&s.ID, &s.UserID, &s.Title, &s.OptimizedTitle, &s.Description, &s.OptimizedDescription,
		&characterIDsJSON, &rolesJSON, &contentJSON, &s.CoverImageID,
		&s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if characterIDsJSON != nil {
		if err := json.Unmarshal(characterIDsJSON, &s.CharacterIDs); err != nil {
			return nil, fmt.Errorf("ошибка декодирования character_ids истории %s: %w", s.ID, err)
		}
	}
	if rolesJSON != nil {
		if err := json.Unmarshal(rolesJSON, &s.CharacterRoles); err != nil {
			return nil, fmt.Errorf("ошибка декодирования character_roles истории %s: %w", s.ID, err)
		}
	}
	if contentJSON != nil {
		s.Content = &models.StoryContent{}
		if err := json.Unmarshal(contentJSON, s.Content); err != nil {
			return nil, fmt.Errorf("ошибка декодирования content истории %s: %w", s.ID, err)
		}
	}
	return s, nil
}

// storyJSONColumns кодирует jsonb-поля истории для записи.
func storyJSONColumns(story *models.Story) (characterIDs, roles, content []byte, err error) {
	characterIDs, err = json.Marshal(story.CharacterIDs)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("ошибка кодирования character_ids: %w", err)
	}
	if story.CharacterRoles != nil {
		roles, err = json.Marshal(story.CharacterRoles)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("ошибка кодирования character_roles: %w", err)
		}
	}
	if story.Content != nil {
		content, err = json.Marshal(story.Content)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("ошибка кодирования content: %w", err)
		}
	}
	return characterIDs, roles, content, nil
}

func (r *pgStoryRepository) Create(ctx context.Context, story *models.Story) error {
	query := `
        INSERT INTO stories
            (id, user_id, title, optimized_title, description, optimized_description,
             character_ids, character_roles, content, cover_image_id,
             status, created_at, updated_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `
	logFields := []zap.Field{zap.String("storyID", story.ID.String()), zap.String("userID", story.UserID.String())}
	r.logger.Debug("Creating story", logFields...)

	characterIDsJSON, rolesJSON, contentJSON, err := storyJSONColumns(story)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query,
		story.ID,
		story.UserID,
		story.Title,
		story.OptimizedTitle,
		story.Description,
		story.OptimizedDescription,
		characterIDsJSON,
		rolesJSON,
		contentJSON,
		story.CoverImageID,
		story.Status,
		story.CreatedAt,
		story.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create story", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка создания истории: %w", err)
	}
	r.logger.Info("Story created successfully", logFields...)
	return nil
}

func (r *pgStoryRepository) GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Story, error) {
	query := `SELECT` + storyColumns + `
        FROM stories
        WHERE id = $1 AND user_id = $2
    `
	logFields := []zap.Field{zap.String("storyID", id.String()), zap.String("userID", userID.String())}
	r.logger.Debug("Getting story by ID", logFields...)

	story, err := scanStory(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("Story not found by ID for user", logFields...)
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get story by ID", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("ошибка получения истории %s: %w", id, err)
	}
	return story, nil
}

func (r *pgStoryRepository) List(ctx context.Context, userID uuid.UUID, filter StoryFilter) ([]*models.Story, int64, error) {
	logFields := []zap.Field{zap.String("userID", userID.String()), zap.Int("page", filter.Page), zap.Int("size", filter.Size)}
	r.logger.Debug("Listing stories", logFields...)

	where := `WHERE user_id = $1`
	args := []interface{}{userID}
	if filter.Status != nil {
		where += ` AND status = $2`
		args = append(args, *filter.Status)
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM stories ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count stories", append(logFields, zap.Error(err))...)
		return nil, 0, fmt.Errorf("ошибка подсчета историй: %w", err)
	}

	// Стабильный порядок: created_at, затем id как tie-breaker
	query := fmt.Sprintf(`SELECT %s
        FROM stories %s
        ORDER BY created_at, id
        LIMIT $%d OFFSET $%d
    `, storyColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Size, (filter.Page-1)*filter.Size)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list stories", append(logFields, zap.Error(err))...)
		return nil, 0, fmt.Errorf("ошибка получения списка историй: %w", err)
	}
	defer rows.Close()

	stories := make([]*models.Story, 0, filter.Size)
	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка чтения строки истории: %w", err)
		}
		stories = append(stories, story)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка итерации по историям: %w", err)
	}
	return stories, total, nil
}

func (r *pgStoryRepository) Update(ctx context.Context, story *models.Story) error {
	query := `
        UPDATE stories SET
            title = $3, optimized_title = $4,
            description = $5, optimized_description = $6,
            character_ids = $7, character_roles = $8, content = $9,
            cover_image_id = $10, status = $11, updated_at = $12
        WHERE id = $1 AND user_id = $2
    `
	logFields := []zap.Field{zap.String("storyID", story.ID.String()), zap.String("userID", story.UserID.String())}
	r.logger.Debug("Updating story", logFields...)

	characterIDsJSON, rolesJSON, contentJSON, err := storyJSONColumns(story)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, query,
		story.ID,
		story.UserID,
		story.Title,
		story.OptimizedTitle,
		story.Description,
		story.OptimizedDescription,
		characterIDsJSON,
		rolesJSON,
		contentJSON,
		story.CoverImageID,
		story.Status,
		story.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update story", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка обновления истории %s: %w", story.ID, err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn("Story not found for update", logFields...)
		return models.ErrNotFound
	}
	r.logger.Info("Story updated successfully", logFields...)
	return nil
}

func (r *pgStoryRepository) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	query := `DELETE FROM stories WHERE id = $1 AND user_id = $2`
	logFields := []zap.Field{zap.String("storyID", id.String()), zap.String("userID", userID.String())}
	r.logger.Debug("Deleting story", logFields...)

	tag, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		r.logger.Error("Failed to delete story", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка удаления истории %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn("Story not found for delete", logFields...)
		return models.ErrNotFound
	}
	r.logger.Info("Story deleted successfully", logFields...)
	return nil
}
