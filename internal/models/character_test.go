package models_test

import (
	"testing"

	"genstory-server/internal/models"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func fullyEnhanced() *models.Character {
	return &models.Character{
		Name:                  strPtr("Finn"),
		Description:           "A small fox",
		OptimizedName:         strPtr("Finn the Fearless Fox"),
		OptimizedDescription:  strPtr("A bright-eyed little fox"),
		Traits:                []models.Trait{{Name: "curious", Value: "always asks questions"}},
		OptimizedTraits:       []models.Trait{{Name: "curious", Value: "curiosity leads him far"}},
		OptimizedStoryContext: strPtr("A moonlit forest"),
		Status:                models.CharacterStatusGenerated,
	}
}

func TestCharacterNeedsGeneration(t *testing.T) {
	t.Run("Fresh character needs generation", func(t *testing.T) {
		c := &models.Character{Description: "A small fox", Status: models.CharacterStatusDraft}
		assert.True(t, c.NeedsGeneration())
	})

	t.Run("Fully enhanced character does not", func(t *testing.T) {
		assert.False(t, fullyEnhanced().NeedsGeneration())
	})

	t.Run("Any missing optimized field means generation is needed", func(t *testing.T) {
		c := fullyEnhanced()
		c.OptimizedTraits = nil
		assert.True(t, c.NeedsGeneration())

		c = fullyEnhanced()
		c.OptimizedStoryContext = nil
		assert.True(t, c.NeedsGeneration())
	})

	t.Run("ClearOptimized resets the whole block", func(t *testing.T) {
		c := fullyEnhanced()
		c.ClearOptimized()
		assert.Nil(t, c.OptimizedName)
		assert.Nil(t, c.OptimizedDescription)
		assert.Nil(t, c.OptimizedTraits)
		assert.Nil(t, c.OptimizedStoryContext)
		assert.True(t, c.NeedsGeneration())
	})
}

func TestCharacterIsStoryEligible(t *testing.T) {
	t.Run("Draft is never eligible", func(t *testing.T) {
		c := fullyEnhanced()
		c.Status = models.CharacterStatusDraft
		assert.False(t, c.IsStoryEligible())
	})

	t.Run("Generated with fresh enhancement is eligible", func(t *testing.T) {
		assert.True(t, fullyEnhanced().IsStoryEligible())
	})

	t.Run("Finalized with fresh enhancement is eligible", func(t *testing.T) {
		c := fullyEnhanced()
		c.Status = models.CharacterStatusFinalized
		assert.True(t, c.IsStoryEligible())
	})

	t.Run("Generated with stale enhancement is not eligible", func(t *testing.T) {
		c := fullyEnhanced()
		c.ClearOptimized()
		assert.False(t, c.IsStoryEligible())
	})
}

func TestCharacterApplyEnhancement(t *testing.T) {
	c := &models.Character{Description: "A small fox", Status: models.CharacterStatusDraft}
	c.ApplyEnhancement(&models.CharacterEnhancement{
		OptimizedName:         "Finn the Fearless Fox",
		OptimizedDescription:  "A bright-eyed little fox",
		OptimizedTraits:       []models.Trait{{Name: "brave", Value: "faces the dark"}},
		OptimizedStoryContext: "A moonlit forest",
	})

	assert.Equal(t, "Finn the Fearless Fox", *c.OptimizedName)
	assert.Equal(t, "A bright-eyed little fox", *c.OptimizedDescription)
	assert.Len(t, c.OptimizedTraits, 1)
	assert.Equal(t, "A moonlit forest", *c.OptimizedStoryContext)
	assert.False(t, c.NeedsGeneration())
}

func TestStatusIsValid(t *testing.T) {
	assert.True(t, models.CharacterStatusDraft.IsValid())
	assert.True(t, models.CharacterStatusGenerated.IsValid())
	assert.True(t, models.CharacterStatusFinalized.IsValid())
	assert.False(t, models.CharacterStatus("archived").IsValid())

	assert.True(t, models.StoryStatusDraft.IsValid())
	assert.False(t, models.StoryStatus("published").IsValid())
}

func TestStoryHasRoles(t *testing.T) {
	s := &models.Story{Title: "The Forest of Whispers"}
	assert.False(t, s.HasRoles())

	s.CharacterRoles = []models.CharacterRole{{Name: "Finn", Role: "protagonist"}}
	assert.True(t, s.HasRoles())
}
