package models

import (
	"time"

	"github.com/google/uuid"
)

// CoverImage - обложка истории. У истории не может быть больше одной.
type CoverImage struct {
	ID         uuid.UUID `json:"id" db:"id"`
	StoryID    uuid.UUID `json:"story_id" db:"story_id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	Base64Data string    `json:"base64_data" db:"base64_data"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
