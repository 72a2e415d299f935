package services

import (
	"github.com/stretchr/testify/mock"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendResetLink(username, address, resetURL string) error {
	args := m.Called(username, address, resetURL)
	return args.Error(0)
}
