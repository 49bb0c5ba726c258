package mocks

import (
	"context"

	"genstory-server/internal/llm"
	"genstory-server/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockGenerationGateway is a mock type for the GenerationGateway type
type MockGenerationGateway struct {
	mock.Mock
}

func (_m *MockGenerationGateway) EnhanceCharacter(ctx context.Context, character *models.Character) (*models.CharacterEnhancement, error) {
	ret := _m.Called(ctx, character)

	var r0 *models.CharacterEnhancement
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.CharacterEnhancement)
	}
	return r0, ret.Error(1)
}

func (_m *MockGenerationGateway) EnhanceStory(ctx context.Context, story *models.Story, characters []*models.Character) (*models.StoryEnhancement, error) {
	ret := _m.Called(ctx, story, characters)

	var r0 *models.StoryEnhancement
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.StoryEnhancement)
	}
	return r0, ret.Error(1)
}

func (_m *MockGenerationGateway) AuthorStoryContent(ctx context.Context, story *models.Story) (*models.StoryContent, error) {
	ret := _m.Called(ctx, story)

	var r0 *models.StoryContent
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.StoryContent)
	}
	return r0, ret.Error(1)
}

// NewMockGenerationGateway creates a new instance of MockGenerationGateway.
func NewMockGenerationGateway(t interface {
	mock.TestingT
	Helper()
}) *MockGenerationGateway {
	m := &MockGenerationGateway{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ llm.GenerationGateway = (*MockGenerationGateway)(nil)
