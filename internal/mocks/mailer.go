package mocks

import (
	"github.com/cradoe/indigene/internal/smtp"
	"github.com/stretchr/testify/mock"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(recipient string, data any, patterns ...string) error {
	args := m.Called(recipient, data, patterns)
	return args.Error(0)
}

func (m *MockMailer) SendWithAttachment(recipient string, data any, attachment *smtp.Attachment, patterns ...string) error {
	args := m.Called(recipient, data, attachment, patterns)
	return args.Error(0)
}
