package models

import (
	"time"

	"github.com/google/uuid"
)

// CharacterStatus определяет статус персонажа в жизненном цикле.
type CharacterStatus string

const (
	CharacterStatusDraft     CharacterStatus = "draft"
	CharacterStatusGenerated CharacterStatus = "generated"
	CharacterStatusFinalized CharacterStatus = "finalized"
)

// IsValid проверяет, что статус входит в множество допустимых значений.
func (s CharacterStatus) IsValid() bool {
	switch s {
	case CharacterStatusDraft, CharacterStatusGenerated, CharacterStatusFinalized:
		return true
	}
	return false
}

// Trait - пара имя/значение, описывающая черту персонажа.
type Trait struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Character - персонаж детской книги. Поля optimized_* заполняются
// только генерацией, всегда целиком (всё или ничего).
type Character struct {
	ID                    uuid.UUID       `json:"id" db:"id"`
	UserID                uuid.UUID       `json:"user_id" db:"user_id"`
	Name                  *string         `json:"name" db:"name"`
	OptimizedName         *string         `json:"optimized_name" db:"optimized_name"`
	Description           string          `json:"description" db:"description"`
	OptimizedDescription  *string         `json:"optimized_description" db:"optimized_description"`
	Traits                []Trait         `json:"traits" db:"-"`
	OptimizedTraits       []Trait         `json:"optimized_traits" db:"-"`
	StoryContext          *string         `json:"story_context" db:"story_context"`
	OptimizedStoryContext *string         `json:"optimized_story_context" db:"optimized_story_context"`
	Status                CharacterStatus `json:"status" db:"status"`
	CreatedAt             time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at" db:"updated_at"`
}

// NeedsGeneration возвращает true, если персонаж ещё не обогащён (или
// обогащение сброшено правкой). Признак "нужна генерация" определяется
// наличием optimized-полей, а не статусом: после правки базовых полей
// статус может остаться generated, но optimized-поля обнуляются.
func (c *Character) NeedsGeneration() bool {
	return c.OptimizedName == nil ||
		c.OptimizedDescription == nil ||
		c.OptimizedTraits == nil ||
		c.OptimizedStoryContext == nil
}

// IsStoryEligible сообщает, можно ли использовать персонажа как материал
// для истории: статус generated/finalized и обогащение актуально.
func (c *Character) IsStoryEligible() bool {
	if c.Status != CharacterStatusGenerated && c.Status != CharacterStatusFinalized {
		return false
	}
	return !c.NeedsGeneration()
}

// ClearOptimized сбрасывает все optimized-поля разом.
// Частичного сброса не бывает - инвариант "всё или ничего".
func (c *Character) ClearOptimized() {
	c.OptimizedName = nil
	c.OptimizedDescription = nil
	c.OptimizedTraits = nil
	c.OptimizedStoryContext = nil
}

// ApplyEnhancement записывает результат генерации единым блоком.
func (c *Character) ApplyEnhancement(e *CharacterEnhancement) {
	name := e.OptimizedName
	desc := e.OptimizedDescription
	storyCtx := e.OptimizedStoryContext
	c.OptimizedName = &name
	c.OptimizedDescription = &desc
	c.OptimizedTraits = e.OptimizedTraits
	c.OptimizedStoryContext = &storyCtx
}

// CharacterEnhancement - валидированный результат задачи "enhance character".
// Все четыре поля обязательны: шлюз генерации не пропускает частичный ответ.
type CharacterEnhancement struct {
	OptimizedName         string  `json:"optimized_name"`
	OptimizedDescription  string  `json:"optimized_description"`
	OptimizedTraits       []Trait `json:"optimized_traits"`
	OptimizedStoryContext string  `json:"optimized_story_context"`
}
