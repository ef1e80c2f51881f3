package mocks

import (
	"database/sql"

	"github.com/cradoe/indigene/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockAdminRepo struct {
	mock.Mock
}

func (m *MockAdminRepo) Insert(admin *models.Admin, tx *sql.Tx) (string, error) {
	args := m.Called(admin, tx)
	return args.String(0), args.Error(1)
}

func (m *MockAdminRepo) GetOne(id string) (*models.Admin, bool, error) {
	args := m.Called(id)
	return args.Get(0).(*models.Admin), args.Bool(1), args.Error(2)
}

func (m *MockAdminRepo) GetByEmail(email string) (*models.Admin, bool, error) {
	args := m.Called(email)
	return args.Get(0).(*models.Admin), args.Bool(1), args.Error(2)
}

func (m *MockAdminRepo) UpdatePassword(id, hashedPassword string) error {
	args := m.Called(id, hashedPassword)
	return args.Error(0)
}
