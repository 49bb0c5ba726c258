package llm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"genstory-server/internal/config"
	"genstory-server/internal/llm"
	"genstory-server/internal/mocks"
	"genstory-server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

func newGateway(aiClient llm.AIClient, maxAttempts int) llm.GenerationGateway {
	cfg := &config.Config{
		AITimeout:        time.Second,
		AIMaxAttempts:    maxAttempts,
		AIBaseRetryDelay: time.Millisecond,
	}
	return llm.NewGenerationGateway(aiClient, cfg, zap.NewNop())
}

func testCharacter() *models.Character {
	return &models.Character{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Name:        strPtr("Finn"),
		Description: "A small fox who is afraid of the dark",
		Traits:      []models.Trait{{Name: "curious", Value: "always asks questions"}},
		Status:      models.CharacterStatusDraft,
	}
}

const validEnhancementJSON = `{
	"optimized_name": "Finn the Fearless Fox",
	"optimized_description": "A bright-eyed little fox",
	"optimized_traits": [{"name": "curious", "value": "curiosity leads him to magical places"}],
	"optimized_story_context": "A moonlit forest full of friendly shadows"
}`

func TestEnhanceCharacter(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful enhancement", func(t *testing.T) {
		mockClient := mocks.NewMockAIClient(t)
		gateway := newGateway(mockClient, 3)

		mockClient.On("GenerateJSON", mock.Anything, "enhance_character", mock.Anything, mock.Anything).
			Return(validEnhancementJSON, llm.UsageInfo{TotalTokens: 100}, nil).Once()

		enhancement, err := gateway.EnhanceCharacter(ctx, testCharacter())

		require.NoError(t, err)
		assert.Equal(t, "Finn the Fearless Fox", enhancement.OptimizedName)
		assert.Len(t, enhancement.OptimizedTraits, 1)
		mockClient.AssertExpectations(t)
	})

	t.Run("Markdown-fenced JSON is accepted", func(t *testing.T) {
		mockClient := mocks.NewMockAIClient(t)
		gateway := newGateway(mockClient, 1)

		fenced := "```json\n" + validEnhancementJSON + "\n```"
		mockClient.On("GenerateJSON", mock.Anything, "enhance_character", mock.Anything, mock.Anything).
			Return(fenced, llm.UsageInfo{}, nil).Once()

		enhancement, err := gateway.EnhanceCharacter(ctx, testCharacter())

		require.NoError(t, err)
		assert.Equal(t, "Finn the Fearless Fox", enhancement.OptimizedName)
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		mockClient := mocks.NewMockAIClient(t)
		gateway := newGateway(mockClient, 1)

		mockClient.On("GenerateJSON", mock.Anything, "enhance_character", mock.Anything, mock.Anything).
			Return("this is not json", llm.UsageInfo{}, nil).Once()

		_, err := gateway.EnhanceCharacter(ctx, testCharacter())

		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrGenerationFailed)
	})

	t.Run("Unknown fields are rejected", func(t *testing.T) {
		mockClient := mocks.NewMockAIClient(t)
		gateway := newGateway(mockClient, 1)

		mockClient.On("GenerateJSON", mock.Anything, "enhance_character", mock.Anything, mock.Anything).
			Return(`{"optimized_name": "Finn", "surprise": true}`, llm.UsageInfo{}, nil).Once()

		_, err := gateway.EnhanceCharacter(ctx, testCharacter())

		assert.ErrorIs(t, err, models.ErrGenerationFailed)
	})

	t.Run("Missing required fields", func(t *testing.T) {
		mockClient := mocks.NewMockAIClient(t)
		gateway := newGateway(mockClient, 1)

		mockClient.On("GenerateJSON", mock.Anything, "enhance_character", mock.Anything, mock.Anything).
			Return(`{"optimized_name": "Finn the Fearless Fox"}`, llm.UsageInfo{}, nil).Once()

		_, err := gateway.EnhanceCharacter(ctx, testCharacter())

		assert.ErrorIs(t, err, models.ErrGenerationFailed)
	})

	t.Run("Retry after transient failure", func(t *testing.T) {
		mockClient := mocks.NewMockAIClient(t)
		gateway := newGateway(mockClient, 3)

		mockClient.On("GenerateJSON", mock.Anything, "enhance_character", mock.Anything, mock.Anything).
			Return("", llm.UsageInfo{}, errors.New("upstream timeout")).Once()
		mockClient.On("GenerateJSON", mock.Anything, "enhance_character", mock.Anything, mock.Anything).
			Return(validEnhancementJSON, llm.UsageInfo{}, nil).Once()

		enhancement, err := gateway.EnhanceCharacter(ctx, testCharacter())

		require.NoError(t, err)
		assert.Equal(t, "Finn the Fearless Fox", enhancement.OptimizedName)
		mockClient.AssertExpectations(t)
	})

	t.Run("Attempts are exhausted", func(t *testing.T) {
		mockClient := mocks.NewMockAIClient(t)
		gateway := newGateway(mockClient, 2)

		mockClient.On("GenerateJSON", mock.Anything, "enhance_character", mock.Anything, mock.Anything).
			Return("", llm.UsageInfo{}, errors.New("upstream timeout")).Twice()

		_, err := gateway.EnhanceCharacter(ctx, testCharacter())

		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrGenerationFailed)
		mockClient.AssertExpectations(t)
	})

	t.Run("Canceled context stops retries", func(t *testing.T) {
		mockClient := mocks.NewMockAIClient(t)
		gateway := newGateway(mockClient, 5)

		canceledCtx, cancel := context.WithCancel(context.Background())
		mockClient.On("GenerateJSON", mock.Anything, "enhance_character", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { cancel() }).
			Return("", llm.UsageInfo{}, errors.New("upstream reset")).Once()

		_, err := gateway.EnhanceCharacter(canceledCtx, testCharacter())

		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrGenerationFailed)
		mockClient.AssertExpectations(t)
	})
}

func TestEnhanceStory(t *testing.T) {
	ctx := context.Background()

	story := &models.Story{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Title:       "The Forest of Whispers",
		Description: "Two friends discover the forest at night",
		Status:      models.StoryStatusDraft,
	}
	characters := []*models.Character{testCharacter(), testCharacter()}

	t.Run("Successful enhancement", func(t *testing.T) {
		mockClient := mocks.NewMockAIClient(t)
		gateway := newGateway(mockClient, 1)

		response := `{
			"optimized_title": "The Whispering Forest",
			"optimized_description": "A gentle night adventure",
			"character_roles": [
				{"name": "Finn", "role": "protagonist", "motivations": ["overcome fear"]},
				{"name": "Mila", "role": "guide"}
			]
		}`
		mockClient.On("GenerateJSON", mock.Anything, "enhance_story", mock.Anything, mock.Anything).
			Return(response, llm.UsageInfo{}, nil).Once()

		enhancement, err := gateway.EnhanceStory(ctx, story, characters)

		require.NoError(t, err)
		assert.Equal(t, "The Whispering Forest", enhancement.OptimizedTitle)
		assert.Len(t, enhancement.CharacterRoles, 2)
	})

	t.Run("Empty role list is rejected", func(t *testing.T) {
		mockClient := mocks.NewMockAIClient(t)
		gateway := newGateway(mockClient, 1)

		response := `{
			"optimized_title": "The Whispering Forest",
			"optimized_description": "A gentle night adventure",
			"character_roles": []
		}`
		mockClient.On("GenerateJSON", mock.Anything, "enhance_story", mock.Anything, mock.Anything).
			Return(response, llm.UsageInfo{}, nil).Once()

		_, err := gateway.EnhanceStory(ctx, story, characters)

		assert.ErrorIs(t, err, models.ErrGenerationFailed)
	})
}

func TestAuthorStoryContent(t *testing.T) {
	ctx := context.Background()

	story := &models.Story{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Title:       "The Forest of Whispers",
		Description: "Two friends discover the forest at night",
		CharacterRoles: []models.CharacterRole{
			{Name: "Finn", Role: "protagonist"},
			{Name: "Mila", Role: "guide"},
		},
		Status: models.StoryStatusGenerated,
	}

	t.Run("Successful content generation", func(t *testing.T) {
		mockClient := mocks.NewMockAIClient(t)
		gateway := newGateway(mockClient, 1)

		response := `{
			"introduction": "Once upon a time...",
			"middle": "The forest grew darker...",
			"climax": "A shadow turned out to be a friend...",
			"conclusion": "They walked home under the stars...",
			"lessons": ["The dark is not scary when shared"],
			"full_story": "Once upon a time... the end."
		}`
		mockClient.On("GenerateJSON", mock.Anything, "author_story_content", mock.Anything, mock.Anything).
			Return(response, llm.UsageInfo{}, nil).Once()

		content, err := gateway.AuthorStoryContent(ctx, story)

		require.NoError(t, err)
		assert.Equal(t, "Once upon a time...", content.Introduction)
		assert.NotEmpty(t, content.Lessons)
	})

	t.Run("Missing section fails the whole generation", func(t *testing.T) {
		mockClient := mocks.NewMockAIClient(t)
		gateway := newGateway(mockClient, 1)

		response := `{
			"introduction": "Once upon a time...",
			"middle": "The forest grew darker...",
			"climax": "",
			"conclusion": "They walked home...",
			"lessons": [],
			"full_story": "Once upon a time... the end."
		}`
		mockClient.On("GenerateJSON", mock.Anything, "author_story_content", mock.Anything, mock.Anything).
			Return(response, llm.UsageInfo{}, nil).Once()

		_, err := gateway.AuthorStoryContent(ctx, story)

		assert.ErrorIs(t, err, models.ErrGenerationFailed)
	})
}
