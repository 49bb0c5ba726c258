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
var _ CharacterRepository = (*pgCharacterRepository)(nil)

type pgCharacterRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgCharacterRepository создает репозиторий персонажей поверх PostgreSQL.
func NewPgCharacterRepository(db DBTX, logger *zap.Logger) CharacterRepository {
	return &pgCharacterRepository{
		db:     db,
		logger: logger.Named("PgCharacterRepo"),
	}
}

const characterColumns = `
    id, user_id, name, optimized_name, description, optimized_description,
    traits, optimized_traits, story_context, optimized_story_context,
    status, created_at, updated_at`

// scanCharacter читает строку персонажа, разворачивая jsonb-колонки черт.
func scanCharacter(row pgx.Row) (*models.Character, error) {
	c := &models.Character{}
	var traitsJSON, optimizedTraitsJSON []byte
	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.OptimizedName, &c.Description, &c.OptimizedDescription,
		&traitsJSON, &optimizedTraitsJSON, &c.StoryContext, &c.OptimizedStoryContext,
		&c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if traitsJSON != nil {
		if err := json.Unmarshal(traitsJSON, &c.Traits); err != nil {
			return nil, fmt.Errorf("ошибка декодирования traits персонажа %s: %w", c.ID, err)
		}
	}
	if optimizedTraitsJSON != nil {
		if err := json.Unmarshal(optimizedTraitsJSON, &c.OptimizedTraits); err != nil {
			return nil, fmt.Errorf("ошибка декодирования optimized_traits персонажа %s: %w", c.ID, err)
		}
	}
	return c, nil
}

// marshalTraits кодирует черты в jsonb. nil остается NULL - это признак
// несгенерированного optimized-блока.
func marshalTraits(traits []models.Trait) ([]byte, error) {
	if traits == nil {
		return nil, nil
	}
	return json.Marshal(traits)
}

func (r *pgCharacterRepository) Create(ctx context.Context, character *models.Character) error {
	query := `
        INSERT INTO characters
            (id, user_id, name, optimized_name, description, optimized_description,
             traits, optimized_traits, story_context, optimized_story_context,
             status, created_at, updated_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `
	logFields := []zap.Field{zap.String("characterID", character.ID.String()), zap.String("userID", character.UserID.String())}
	r.logger.Debug("Creating character", logFields...)

	traitsJSON, err := marshalTraits(character.Traits)
	if err != nil {
		return fmt.Errorf("ошибка кодирования traits: %w", err)
	}
	optimizedTraitsJSON, err := marshalTraits(character.OptimizedTraits)
	if err != nil {
		return fmt.Errorf("ошибка кодирования optimized_traits: %w", err)
	}

	_, err = r.db.Exec(ctx, query,
		character.ID,
		character.UserID,
		character.Name,
		character.OptimizedName,
		character.Description,
		character.OptimizedDescription,
		traitsJSON,
		optimizedTraitsJSON,
		character.StoryContext,
		character.OptimizedStoryContext,
		character.Status,
		character.CreatedAt,
		character.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create character", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка создания персонажа: %w", err)
	}
	r.logger.Info("Character created successfully", logFields...)
	return nil
}

func (r *pgCharacterRepository) GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Character, error) {
	query := `SELECT` + characterColumns + `
        FROM characters
        WHERE id = $1 AND user_id = $2
    `
	logFields := []zap.Field{zap.String("characterID", id.String()), zap.String("userID", userID.String())}
	r.logger.Debug("Getting character by ID", logFields...)

	character, err := scanCharacter(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("Character not found by ID for user", logFields...)
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get character by ID", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("ошибка получения персонажа %s: %w", id, err)
	}
	return character, nil
}

func (r *pgCharacterRepository) GetByIDs(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) ([]*models.Character, error) {
	if len(ids) == 0 {
		return []*models.Character{}, nil
	}
	query := `SELECT` + characterColumns + `
        FROM characters
        WHERE id = ANY($1) AND user_id = $2
    `
	logFields := []zap.Field{zap.Int("idCount", len(ids)), zap.String("userID", userID.String())}
	r.logger.Debug("Getting characters by IDs", logFields...)

	rows, err := r.db.Query(ctx, query, ids, userID)
	if err != nil {
		r.logger.Error("Failed to query characters by IDs", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("ошибка получения персонажей по списку ID: %w", err)
	}
	defer rows.Close()

	characters := make([]*models.Character, 0, len(ids))
	for rows.Next() {
		character, err := scanCharacter(rows)
		if err != nil {
			r.logger.Error("Failed to scan character row", append(logFields, zap.Error(err))...)
			return nil, fmt.Errorf("ошибка чтения строки персонажа: %w", err)
		}
		characters = append(characters, character)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации по персонажам: %w", err)
	}
	return characters, nil
}

func (r *pgCharacterRepository) List(ctx context.Context, userID uuid.UUID, filter CharacterFilter) ([]*models.Character, int64, error) {
	logFields := []zap.Field{zap.String("userID", userID.String()), zap.Int("page", filter.Page), zap.Int("size", filter.Size)}
	r.logger.Debug("Listing characters", logFields...)

	where := `WHERE user_id = $1`
	args := []interface{}{userID}
	if filter.Status != nil {
		where += ` AND status = $2`
		args = append(args, *filter.Status)
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM characters ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count characters", append(logFields, zap.Error(err))...)
		return nil, 0, fmt.Errorf("ошибка подсчета персонажей: %w", err)
	}

	// Стабильный порядок: created_at, затем id как tie-breaker
	query := fmt.Sprintf(`SELECT %s
        FROM characters %s
        ORDER BY created_at, id
        LIMIT $%d OFFSET $%d
    `, characterColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Size, (filter.Page-1)*filter.Size)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list characters", append(logFields, zap.Error(err))...)
		return nil, 0, fmt.Errorf("ошибка получения списка персонажей: %w", err)
	}
	defer rows.Close()

	characters := make([]*models.Character, 0, filter.Size)
	for rows.Next() {
		character, err := scanCharacter(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка чтения строки персонажа: %w", err)
		}
		characters = append(characters, character)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка итерации по персонажам: %w", err)
	}
	return characters, total, nil
}

func (r *pgCharacterRepository) Update(ctx context.Context, character *models.Character) error {
	query := `
        UPDATE characters SET
            name = $3, optimized_name = $4,
            description = $5, optimized_description = $6,
            traits = $7, optimized_traits = $8,
            story_context = $9, optimized_story_context = $10,
            status = $11, updated_at = $12
        WHERE id = $1 AND user_id = $2
    `
	logFields := []zap.Field{zap.String("characterID", character.ID.String()), zap.String("userID", character.UserID.String())}
	r.logger.Debug("Updating character", logFields...)

	traitsJSON, err := marshalTraits(character.Traits)
	if err != nil {
		return fmt.Errorf("ошибка кодирования traits: %w", err)
	}
	optimizedTraitsJSON, err := marshalTraits(character.OptimizedTraits)
	if err != nil {
		return fmt.Errorf("ошибка кодирования optimized_traits: %w", err)
	}

	tag, err := r.db.Exec(ctx, query,
		character.ID,
		character.UserID,
		character.Name,
		character.OptimizedName,
		character.Description,
		character.OptimizedDescription,
		traitsJSON,
		optimizedTraitsJSON,
		character.StoryContext,
		character.OptimizedStoryContext,
		character.Status,
		character.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update character", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка обновления персонажа %s: %w", character.ID, err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn("Character not found for update", logFields...)
		return models.ErrNotFound
	}
	r.logger.Info("Character updated successfully", logFields...)
	return nil
}

func (r *pgCharacterRepository) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	query := `DELETE FROM characters WHERE id = $1 AND user_id = $2`
	logFields := []zap.Field{zap.String("characterID", id.String()), zap.String("userID", userID.String())}
	r.logger.Debug("Deleting character", logFields...)

	tag, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		r.logger.Error("Failed to delete character", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка удаления персонажа %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn("Character not found for delete", logFields...)
		return models.ErrNotFound
	}
	r.logger.Info("Character deleted successfully", logFields...)
	return nil
}
