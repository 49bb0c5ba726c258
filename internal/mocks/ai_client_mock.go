package mocks

import (
	"context"

	"genstory-server/internal/llm"

	"github.com/stretchr/testify/mock"
)

// MockAIClient is a mock type for the AIClient type
type MockAIClient struct {
	mock.Mock
}

func (_m *MockAIClient) GenerateJSON(ctx context.Context, task string, systemPrompt string, userPrompt string) (string, llm.UsageInfo, error) {
	ret := _m.Called(ctx, task, systemPrompt, userPrompt)

	var r0 string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(string)
	}
	var r1 llm.UsageInfo
	if ret.Get(1) != nil {
		r1 = ret.Get(1).(llm.UsageInfo)
	}
	return r0, r1, ret.Error(2)
}

// NewMockAIClient creates a new instance of MockAIClient.
func NewMockAIClient(t interface {
	mock.TestingT
	Helper()
}) *MockAIClient {
	m := &MockAIClient{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ llm.AIClient = (*MockAIClient)(nil)
