package mocks

import (
	"database/sql"

	"github.com/cradoe/indigene/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockCertificateRepo struct {
	mock.Mock
}

func (m *MockCertificateRepo) Insert(certificate *models.Certificate, tx *sql.Tx) (string, error) {
	args := m.Called(certificate, tx)
	return args.String(0), args.Error(1)
}

func (m *MockCertificateRepo) GetOne(id string) (*models.Certificate, bool, error) {
	args := m.Called(id)
	return args.Get(0).(*models.Certificate), args.Bool(1), args.Error(2)
}

func (m *MockCertificateRepo) GetByRef(certificateRef string) (*models.Certificate, bool, error) {
	args := m.Called(certificateRef)
	return args.Get(0).(*models.Certificate), args.Bool(1), args.Error(2)
}

func (m *MockCertificateRepo) GetByRefForUpdate(certificateRef string, tx *sql.Tx) (*models.Certificate, bool, error) {
	args := m.Called(certificateRef, tx)
	return args.Get(0).(*models.Certificate), args.Bool(1), args.Error(2)
}

func (m *MockCertificateRepo) ExistsWithRef(certificateRef string) (bool, error) {
	args := m.Called(certificateRef)
	return args.Bool(0), args.Error(1)
}

func (m *MockCertificateRepo) SetVerificationPaymentPending(id, paymentLink string, tx *sql.Tx) error {
	args := m.Called(id, paymentLink, tx)
	return args.Error(0)
}

func (m *MockCertificateRepo) MintVerificationCode(id, verificationCode string, tx *sql.Tx) error {
	args := m.Called(id, verificationCode, tx)
	return args.Error(0)
}

func (m *MockCertificateRepo) NullifyVerificationCode(id string, tx *sql.Tx) error {
	args := m.Called(id, tx)
	return args.Error(0)
}
