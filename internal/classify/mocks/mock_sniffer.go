package mocks

import (
	"github.com/stretchr/testify/mock"
)

type MockSniffer struct {
	mock.Mock
}

func (m *MockSniffer) Classify(data []byte) (string, error) {
	args := m.Called(data)
	return args.String(0), args.Error(1)
}
