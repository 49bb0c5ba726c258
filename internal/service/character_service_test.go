package service_test

import (
	"context"
	"errors"
	"testing"

	"genstory-server/internal/mocks"
	"genstory-server/internal/models"
	"genstory-server/internal/repository"
	"genstory-server/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

func newCharacterService(repo *mocks.MockCharacterRepository, gateway *mocks.MockGenerationGateway) service.CharacterService {
	return service.NewCharacterService(repo, gateway, zap.NewNop())
}

func draftCharacter(userID uuid.UUID) *models.Character {
	return &models.Character{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        strPtr("Finn"),
		Description: "A small fox who is afraid of the dark",
		Traits:      []models.Trait{{Name: "curious", Value: "always asks questions"}},
		Status:      models.CharacterStatusDraft,
	}
}

func enhancedCharacter(userID uuid.UUID) *models.Character {
	c := draftCharacter(userID)
	c.Status = models.CharacterStatusGenerated
	c.OptimizedName = strPtr("Finn the Fearless Fox")
	c.OptimizedDescription = strPtr("A bright-eyed little fox")
	c.OptimizedTraits = []models.Trait{{Name: "curious", Value: "curiosity leads him to magical places"}}
	c.OptimizedStoryContext = strPtr("A moonlit forest full of friendly shadows")
	return c
}

func TestCharacterCreate(t *testing.T) {
	userID := uuid.New()
	ctx := context.Background()

	t.Run("Successful creation starts as draft", func(t *testing.T) {
		mockRepo := mocks.NewMockCharacterRepository(t)
		mockGateway := mocks.NewMockGenerationGateway(t)
		svc := newCharacterService(mockRepo, mockGateway)

		mockRepo.On("Create", ctx, mock.MatchedBy(func(c *models.Character) bool {
			assert.Equal(t, userID, c.UserID)
			assert.Equal(t, models.CharacterStatusDraft, c.Status)
			assert.Nil(t, c.OptimizedName)
			assert.Nil(t, c.OptimizedDescription)
			assert.Nil(t, c.OptimizedTraits)
			assert.Nil(t, c.OptimizedStoryContext)
			assert.True(t, c.NeedsGeneration())
			return true
		})).Return(nil).Once()

		created, err := svc.Create(ctx, userID, service.CreateCharacterInput{
			Name:        strPtr("Finn"),
			Description: "A small fox who is afraid of the dark",
		})

		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, models.CharacterStatusDraft, created.Status)
		assert.NotEqual(t, uuid.Nil, created.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Empty description is rejected", func(t *testing.T) {
		mockRepo := mocks.NewMockCharacterRepository(t)
		mockGateway := mocks.NewMockGenerationGateway(t)
		svc := newCharacterService(mockRepo, mockGateway)

		_, err := svc.Create(ctx, userID, service.CreateCharacterInput{Description: "   "})

		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrInvalidInput)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestCharacterGenerate(t *testing.T) {
	userID := uuid.New()
	ctx := context.Background()

	t.Run("Successful generation writes all optimized fields as a unit", func(t *testing.T) {
		mockRepo := mocks.NewMockCharacterRepository(t)
		mockGateway := mocks.NewMockGenerationGateway(t)
		svc := newCharacterService(mockRepo, mockGateway)

		character := draftCharacter(userID)
		enhancement := &models.CharacterEnhancement{
			OptimizedName:         "Finn the Fearless Fox",
			OptimizedDescription:  "A bright-eyed little fox who learns that the dark can be friendly",
			OptimizedTraits:       []models.Trait{{Name: "curious", Value: "curiosity leads him to magical places"}},
			OptimizedStoryContext: "A moonlit forest full of friendly shadows",
		}

		mockRepo.On("GetByID", ctx, character.ID, userID).Return(character, nil).Once()
		mockGateway.On("EnhanceCharacter", ctx, character).Return(enhancement, nil).Once()
		mockRepo.On("Update", ctx, mock.MatchedBy(func(c *models.Character) bool {
			assert.Equal(t, models.CharacterStatusGenerated, c.Status)
			// Базовые поля не тронуты
			assert.Equal(t, "Finn", *c.Name)
			assert.Equal(t, "A small fox who is afraid of the dark", c.Description)
			// Optimized-блок записан целиком
			assert.Equal(t, "Finn the Fearless Fox", *c.OptimizedName)
			assert.NotNil(t, c.OptimizedDescription)
			assert.NotEmpty(t, c.OptimizedTraits)
			assert.NotNil(t, c.OptimizedStoryContext)
			assert.False(t, c.NeedsGeneration())
			return true
		})).Return(nil).Once()

		result, err := svc.Generate(ctx, userID, character.ID)

		require.NoError(t, err)
		assert.Equal(t, models.CharacterStatusGenerated, result.Status)
		mockRepo.AssertExpectations(t)
		mockGateway.AssertExpectations(t)
	})

	t.Run("Regeneration is allowed from generated", func(t *testing.T) {
		mockRepo := mocks.NewMockCharacterRepository(t)
		mockGateway := mocks.NewMockGenerationGateway(t)
		svc := newCharacterService(mockRepo, mockGateway)

		character := enhancedCharacter(userID)
		enhancement := &models.CharacterEnhancement{
			OptimizedName:         "Finn the Brave",
			OptimizedDescription:  "Braver than ever",
			OptimizedTraits:       []models.Trait{{Name: "brave", Value: "faces the dark with a smile"}},
			OptimizedStoryContext: "The same forest, a new adventure",
		}

		mockRepo.On("GetByID", ctx, character.ID, userID).Return(character, nil).Once()
		mockGateway.On("EnhanceCharacter", ctx, character).Return(enhancement, nil).Once()
		mockRepo.On("Update", ctx, mock.MatchedBy(func(c *models.Character) bool {
			return *c.OptimizedName == "Finn the Brave" && c.Status == models.CharacterStatusGenerated
		})).Return(nil).Once()

		_, err := svc.Generate(ctx, userID, character.ID)

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Generation from finalized is rejected", func(t *testing.T) {
		mockRepo := mocks.NewMockCharacterRepository(t)
		mockGateway := mocks.NewMockGenerationGateway(t)
		svc := newCharacterService(mockRepo, mockGateway)

		character := enhancedCharacter(userID)
		character.Status = models.CharacterStatusFinalized
		mockRepo.On("GetByID", ctx, character.ID, userID).Return(character, nil).Once()

		_, err := svc.Generate(ctx, userID, character.ID)

		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrInvalidStatus)
		mockGateway.AssertNotCalled(t, "EnhanceCharacter", mock.Anything, mock.Anything)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Gateway failure leaves character untouched", func(t *testing.T) {
		mockRepo := mocks.NewMockCharacterRepository(t)
		mockGateway := mocks.NewMockGenerationGateway(t)
		svc := newCharacterService(mockRepo, mockGateway)

		character := draftCharacter(userID)
		mockRepo.On("GetByID", ctx, character.ID, userID).Return(character, nil).Once()
		mockGateway.On("EnhanceCharacter", ctx, character).
			Return(nil, models.ErrGenerationFailed).Once()

		_, err := svc.Generate(ctx, userID, character.ID)

		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrGenerationFailed)
		// Ничего не сохраняется при ошибке генерации
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Unknown character", func(t *testing.T) {
		mockRepo := mocks.NewMockCharacterRepository(t)
		mockGateway := mocks.NewMockGenerationGateway(t)
		svc := newCharacterService(mockRepo, mockGateway)

		id := uuid.New()
		mockRepo.On("GetByID", ctx, id, userID).Return(nil, models.ErrNotFound).Once()

		_, err := svc.Generate(ctx, userID, id)

		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestCharacterUpdate(t *testing.T) {
	userID := uuid.New()
	ctx := context.Background()

	t.Run("Update clears the whole optimized block", func(t *testing.T) {
		mockRepo := mocks.NewMockCharacterRepository(t)
		mockGateway := mocks.NewMockGenerationGateway(t)
		svc := newCharacterService(mockRepo, mockGateway)

		character := enhancedCharacter(userID)
		mockRepo.On("GetByID", ctx, character.ID, userID).Return(character, nil).Once()
		mockRepo.On("Update", ctx, mock.MatchedBy(func(c *models.Character) bool {
			assert.Equal(t, "A slightly bigger fox", c.Description)
			assert.Nil(t, c.OptimizedName)
			assert.Nil(t, c.OptimizedDescription)
			assert.Nil(t, c.OptimizedTraits)
			assert.Nil(t, c.OptimizedStoryContext)
			assert.True(t, c.NeedsGeneration())
			// Статус не откатывается, устаревание видно по optimized-полям
			assert.Equal(t, models.CharacterStatusGenerated, c.Status)
			return true
		})).Return(nil).Once()

		updated, err := svc.Update(ctx, userID, character.ID, service.UpdateCharacterInput{
			Name:        strPtr("Finn"),
			Description: "A slightly bigger fox",
		})

		require.NoError(t, err)
		assert.True(t, updated.NeedsGeneration())
		mockRepo.AssertExpectations(t)
	})

	t.Run("Finalized character cannot be updated", func(t *testing.T) {
		mockRepo := mocks.NewMockCharacterRepository(t)
		mockGateway := mocks.NewMockGenerationGateway(t)
		svc := newCharacterService(mockRepo, mockGateway)

		character := enhancedCharacter(userID)
		character.Status = models.CharacterStatusFinalized
		mockRepo.On("GetByID", ctx, character.ID, userID).Return(character, nil).Once()

		_, err := svc.Update(ctx, userID, character.ID, service.UpdateCharacterInput{
			Description: "New description",
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrFinalized)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestCharacterFinalize(t *testing.T) {
	userID := uuid.New()
	ctx := context.Background()

	t.Run("Finalize from generated", func(t *testing.T) {
		mockRepo := mocks.NewMockCharacterRepository(t)
		mockGateway := mocks.NewMockGenerationGateway(t)
		svc := newCharacterService(mockRepo, mockGateway)

		character := enhancedCharacter(userID)
		mockRepo.On("GetByID", ctx, character.ID, userID).Return(character, nil).Once()
		mockRepo.On("Update", ctx, mock.MatchedBy(func(c *models.Character) bool {
			return c.Status == models.CharacterStatusFinalized
		})).Return(nil).Once()

		finalized, err := svc.Finalize(ctx, userID, character.ID)

		require.NoError(t, err)
		assert.Equal(t, models.CharacterStatusFinalized, finalized.Status)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Finalize from draft is rejected", func(t *testing.T) {
		mockRepo := mocks.NewMockCharacterRepository(t)
		mockGateway := mocks.NewMockGenerationGateway(t)
		svc := newCharacterService(mockRepo, mockGateway)

		character := draftCharacter(userID)
		mockRepo.On("GetByID", ctx, character.ID, userID).Return(character, nil).Once()

		_, err := svc.Finalize(ctx, userID, character.ID)

		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrInvalidStatus)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestCharacterList(t *testing.T) {
	userID := uuid.New()
	ctx := context.Background()

	t.Run("Pagination parameters are normalized", func(t *testing.T) {
		mockRepo := mocks.NewMockCharacterRepository(t)
		mockGateway := mocks.NewMockGenerationGateway(t)
		svc := newCharacterService(mockRepo, mockGateway)

		mockRepo.On("List", ctx, userID, repository.CharacterFilter{Page: 1, Size: 20}).
			Return([]*models.Character{}, int64(0), nil).Once()

		_, _, err := svc.List(ctx, userID, nil, 0, -5)

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Invalid status filter is rejected", func(t *testing.T) {
		mockRepo := mocks.NewMockCharacterRepository(t)
		mockGateway := mocks.NewMockGenerationGateway(t)
		svc := newCharacterService(mockRepo, mockGateway)

		status := models.CharacterStatus("archived")
		_, _, err := svc.List(ctx, userID, &status, 1, 20)

		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})
}

func TestCharacterDelete(t *testing.T) {
	userID := uuid.New()
	ctx := context.Background()

	t.Run("Delete unknown character", func(t *testing.T) {
		mockRepo := mocks.NewMockCharacterRepository(t)
		mockGateway := mocks.NewMockGenerationGateway(t)
		svc := newCharacterService(mockRepo, mockGateway)

		id := uuid.New()
		mockRepo.On("Delete", ctx, id, userID).Return(models.ErrNotFound).Once()

		err := svc.Delete(ctx, userID, id)

		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("Delete propagates storage errors", func(t *testing.T) {
		mockRepo := mocks.NewMockCharacterRepository(t)
		mockGateway := mocks.NewMockGenerationGateway(t)
		svc := newCharacterService(mockRepo, mockGateway)

		id := uuid.New()
		storageErr := errors.New("connection reset")
		mockRepo.On("Delete", ctx, id, userID).Return(storageErr).Once()

		err := svc.Delete(ctx, userID, id)

		assert.ErrorIs(t, err, storageErr)
	})
}
