package handler

import (
	"genstory-server/internal/models"

	"github.com/google/uuid"
)

// CreateCharacterRequest - тело запроса создания персонажа.
type CreateCharacterRequest struct {
	Name         *string        `json:"name"`
	Description  string         `json:"description" binding:"required"`
	Traits       []models.Trait `json:"traits"`
	StoryContext *string        `json:"story_context"`
}

// UpdateCharacterRequest - тело запроса правки персонажа.
// Базовые поля перезаписываются целиком.
type UpdateCharacterRequest struct {
	Name         *string        `json:"name"`
	Description  string         `json:"description" binding:"required"`
	Traits       []models.Trait `json:"traits"`
	StoryContext *string        `json:"story_context"`
}

// CreateStoryRequest - тело запроса создания истории.
type CreateStoryRequest struct {
	Title        string      `json:"title" binding:"required"`
	Description  string      `json:"description" binding:"required"`
	CharacterIDs []uuid.UUID `json:"character_ids" binding:"required"`
}

// UpdateStoryRequest - тело запроса частичной правки метаданных истории.
type UpdateStoryRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// ListResponse - страница списка с общим числом элементов.
type ListResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

// CoverImageResponse - обложка истории.
type CoverImageResponse struct {
	ID         uuid.UUID `json:"id"`
	StoryID    uuid.UUID `json:"story_id"`
	Base64Data string    `json:"base64_data"`
}

func newCoverImageResponse(image *models.CoverImage) CoverImageResponse {
	return CoverImageResponse{
		ID:         image.ID,
		StoryID:    image.StoryID,
		Base64Data: image.Base64Data,
	}
}
