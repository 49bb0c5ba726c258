package mocks

import (
	"context"

	"genstory-server/internal/models"
	"genstory-server/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCoverImageRepository is a mock type for the CoverImageRepository type
type MockCoverImageRepository struct {
	mock.Mock
}

func (_m *MockCoverImageRepository) Create(ctx context.Context, image *models.CoverImage) error {
	ret := _m.Called(ctx, image)
	return ret.Error(0)
}

func (_m *MockCoverImageRepository) GetByStoryID(ctx context.Context, storyID uuid.UUID, userID uuid.UUID) (*models.CoverImage, error) {
	ret := _m.Called(ctx, storyID, userID)

	var r0 *models.CoverImage
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.CoverImage)
	}
	return r0, ret.Error(1)
}

// NewMockCoverImageRepository creates a new instance of MockCoverImageRepository.
func NewMockCoverImageRepository(t interface {
	mock.TestingT
	Helper()
}) *MockCoverImageRepository {
	m := &MockCoverImageRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.CoverImageRepository = (*MockCoverImageRepository)(nil)
