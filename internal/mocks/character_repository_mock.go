package mocks

import (
	"context"

	"genstory-server/internal/models"
	"genstory-server/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCharacterRepository is a mock type for the CharacterRepository type
type MockCharacterRepository struct {
	mock.Mock
}

func (_m *MockCharacterRepository) Create(ctx context.Context, character *models.Character) error {
	ret := _m.Called(ctx, character)
	return ret.Error(0)
}

func (_m *MockCharacterRepository) GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Character, error) {
	ret := _m.Called(ctx, id, userID)

	var r0 *models.Character
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Character)
	}
	return r0, ret.Error(1)
}

func (_m *MockCharacterRepository) GetByIDs(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) ([]*models.Character, error) {
	ret := _m.Called(ctx, ids, userID)

	var r0 []*models.Character
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Character)
	}
	return r0, ret.Error(1)
}

func (_m *MockCharacterRepository) List(ctx context.Context, userID uuid.UUID, filter repository.CharacterFilter) ([]*models.Character, int64, error) {
	ret := _m.Called(ctx, userID, filter)

	var r0 []*models.Character
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Character)
	}
	return r0, ret.Get(1).(int64), ret.Error(2)
}

func (_m *MockCharacterRepository) Update(ctx context.Context, character *models.Character) error {
	ret := _m.Called(ctx, character)
	return ret.Error(0)
}

func (_m *MockCharacterRepository) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	ret := _m.Called(ctx, id, userID)
	return ret.Error(0)
}

// NewMockCharacterRepository creates a new instance of MockCharacterRepository.
func NewMockCharacterRepository(t interface {
	mock.TestingT
	Helper()
}) *MockCharacterRepository {
	m := &MockCharacterRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.CharacterRepository = (*MockCharacterRepository)(nil)
