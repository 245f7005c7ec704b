package mocks

import (
	"github.com/stretchr/testify/mock"
)

type MockTool struct {
	mock.Mock
}

func (m *MockTool) Test(path string) bool {
	args := m.Called(path)
	return args.Bool(0)
}

func (m *MockTool) Extract(path, outDir string) error {
	args := m.Called(path, outDir)
	return args.Error(0)
}
