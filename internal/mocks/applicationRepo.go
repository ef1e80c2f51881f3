package mocks

import (
	"database/sql"
	"time"

	"github.com/cradoe/indigene/internal/models"
	"github.com/cradoe/indigene/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockApplicationRepo struct {
	mock.Mock
}

func (m *MockApplicationRepo) Insert(application *models.Application, tx *sql.Tx) (string, error) {
	args := m.Called(application, tx)
	return args.String(0), args.Error(1)
}

func (m *MockApplicationRepo) GetOne(id string) (*models.Application, bool, error) {
	args := m.Called(id)
	return args.Get(0).(*models.Application), args.Bool(1), args.Error(2)
}

func (m *MockApplicationRepo) GetOneForUpdate(id string, tx *sql.Tx) (*models.Application, bool, error) {
	args := m.Called(id, tx)
	return args.Get(0).(*models.Application), args.Bool(1), args.Error(2)
}

func (m *MockApplicationRepo) ExistsNonTerminalWithNin(nin string, tx *sql.Tx) (bool, error) {
	args := m.Called(nin, tx)
	return args.Bool(0), args.Error(1)
}

func (m *MockApplicationRepo) MarkPaymentConfirmed(id string, tx *sql.Tx) (bool, error) {
	args := m.Called(id, tx)
	return args.Bool(0), args.Error(1)
}

func (m *MockApplicationRepo) Decide(id, status string, decidedAt time.Time, tx *sql.Tx) error {
	args := m.Called(id, status, decidedAt, tx)
	return args.Error(0)
}

func (m *MockApplicationRepo) List(filter *repository.ApplicationFilter) ([]models.Application, int, error) {
	args := m.Called(filter)
	return args.Get(0).([]models.Application), args.Int(1), args.Error(2)
}

func (m *MockApplicationRepo) SearchByName(name, lga string) ([]models.Application, error) {
	args := m.Called(name, lga)
	return args.Get(0).([]models.Application), args.Error(1)
}

func (m *MockApplicationRepo) StatusCounts(lga string) (*repository.StatusCounts, error) {
	args := m.Called(lga)
	return args.Get(0).(*repository.StatusCounts), args.Error(1)
}

func (m *MockApplicationRepo) DailyStatusCounts(lga string, dayStart, dayEnd time.Time) (*repository.StatusCounts, error) {
	args := m.Called(lga, dayStart, dayEnd)
	return args.Get(0).(*repository.StatusCounts), args.Error(1)
}
