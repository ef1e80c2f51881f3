package mocks

import (
	"database/sql"

	"github.com/cradoe/indigene/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) Insert(transaction *models.Transaction, tx *sql.Tx) (string, error) {
	args := m.Called(transaction, tx)
	return args.String(0), args.Error(1)
}

func (m *MockTransactionRepo) FindByRefForUpdate(transactionRef string, tx *sql.Tx) (*models.Transaction, bool, error) {
	args := m.Called(transactionRef, tx)
	return args.Get(0).(*models.Transaction), args.Bool(1), args.Error(2)
}

func (m *MockTransactionRepo) UpdateStatus(id, status string, tx *sql.Tx) error {
	args := m.Called(id, status, tx)
	return args.Error(0)
}

func (m *MockTransactionRepo) RecordProviderTransactionID(id, providerTransactionID string, tx *sql.Tx) error {
	args := m.Called(id, providerTransactionID, tx)
	return args.Error(0)
}

func (m *MockTransactionRepo) MarkSuccessful(id, providerTransactionID, providerRef string, tx *sql.Tx) error {
	args := m.Called(id, providerTransactionID, providerRef, tx)
	return args.Error(0)
}
