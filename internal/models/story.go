package models

import (
	"time"

	"github.com/google/uuid"
)

// StoryStatus определяет статус истории в жизненном цикле.
type StoryStatus string

const (
	StoryStatusDraft     StoryStatus = "draft"
	StoryStatusGenerated StoryStatus = "generated"
	StoryStatusFinalized StoryStatus = "finalized"
)

// IsValid проверяет, что статус входит в множество допустимых значений.
func (s StoryStatus) IsValid() bool {
	switch s {
	case StoryStatusDraft, StoryStatusGenerated, StoryStatusFinalized:
		return true
	}
	return false
}

// CharacterRole - роль персонажа внутри конкретной истории.
// Заполняется генерацией на шаге refine.
type CharacterRole struct {
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	Description  string   `json:"description"`
	Skills       []string `json:"skills"`
	Motivations  []string `json:"motivations"`
	Flaws        []string `json:"flaws"`
	Interactions []string `json:"interactions"`
}

// StoryContent - полный текст истории, записывается единым блоком.
type StoryContent struct {
	Introduction string   `json:"introduction"`
	Middle       string   `json:"middle"`
	Climax       string   `json:"climax"`
	Conclusion   string   `json:"conclusion"`
	Lessons      []string `json:"lessons"`
	FullStory    string   `json:"full_story"`
}

// Story - история, собранная из персонажей пользователя.
// character_ids хранит порядок, заданный при создании.
type Story struct {
	ID                   uuid.UUID       `json:"id" db:"id"`
	UserID               uuid.UUID       `json:"user_id" db:"user_id"`
	Title                string          `json:"title" db:"title"`
	OptimizedTitle       *string         `json:"optimized_title" db:"optimized_title"`
	Description          string          `json:"description" db:"description"`
	OptimizedDescription *string         `json:"optimized_description" db:"optimized_description"`
	CharacterIDs         []uuid.UUID     `json:"character_ids" db:"-"`
	CharacterRoles       []CharacterRole `json:"character_roles" db:"-"`
	Content              *StoryContent   `json:"content" db:"-"`
	CoverImageID         *uuid.UUID      `json:"cover_image_id" db:"cover_image_id"`
	Status               StoryStatus     `json:"status" db:"status"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at" db:"updated_at"`
}

// HasRoles сообщает, прошла ли история шаг refine.
// Без ролей контент не генерируется.
func (s *Story) HasRoles() bool {
	return len(s.CharacterRoles) > 0
}

// ApplyEnhancement записывает результат refine единым блоком.
func (s *Story) ApplyEnhancement(e *StoryEnhancement) {
	title := e.OptimizedTitle
	desc := e.OptimizedDescription
	s.OptimizedTitle = &title
	s.OptimizedDescription = &desc
	s.CharacterRoles = e.CharacterRoles
}

// StoryEnhancement - валидированный результат задачи "enhance story".
type StoryEnhancement struct {
	OptimizedTitle       string          `json:"optimized_title"`
	OptimizedDescription string          `json:"optimized_description"`
	CharacterRoles       []CharacterRole `json:"character_roles"`
}
