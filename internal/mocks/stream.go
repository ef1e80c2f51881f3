package mocks

import (
	"github.com/stretchr/testify/mock"
)

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) ProduceMessage(topic, message string) error {
	args := m.Called(topic, message)
	return args.Error(0)
}
