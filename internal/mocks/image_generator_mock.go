package mocks

import (
	"context"

	"genstory-server/internal/llm"
	"genstory-server/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockImageGenerator is a mock type for the ImageGenerator type
type MockImageGenerator struct {
	mock.Mock
}

func (_m *MockImageGenerator) GenerateCoverImage(ctx context.Context, story *models.Story) (string, error) {
	ret := _m.Called(ctx, story)

	var r0 string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(string)
	}
	return r0, ret.Error(1)
}

// NewMockImageGenerator creates a new instance of MockImageGenerator.
func NewMockImageGenerator(t interface {
	mock.TestingT
	Helper()
}) *MockImageGenerator {
	m := &MockImageGenerator{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ llm.ImageGenerator = (*MockImageGenerator)(nil)
