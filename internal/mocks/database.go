package mocks

import (
	"context"
	"database/sql"

	"github.com/cradoe/indigene/internal/repository"
)

// MockDatabase wires the per-entity mock repositories behind the
// repository.Database interface. Transactions come from a sqlmock
// connection so handlers can Begin/Commit/Rollback against scripted
// expectations.
type MockDatabase struct {
	UserRepo        repository.UserRepository
	AdminRepo       repository.AdminRepository
	ApplicationRepo repository.ApplicationRepository
	TransactionRepo repository.TransactionRepository
	CertificateRepo repository.CertificateRepository

	SQL *sql.DB
}

func (m *MockDatabase) User() repository.UserRepository               { return m.UserRepo }
func (m *MockDatabase) Admin() repository.AdminRepository             { return m.AdminRepo }
func (m *MockDatabase) Application() repository.ApplicationRepository { return m.ApplicationRepo }
func (m *MockDatabase) Transaction() repository.TransactionRepository { return m.TransactionRepo }
func (m *MockDatabase) Certificate() repository.CertificateRepository { return m.CertificateRepo }

func (m *MockDatabase) Close() error {
	if m.SQL != nil {
		return m.SQL.Close()
	}
	return nil
}

func (m *MockDatabase) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return m.SQL.BeginTx(ctx, opts)
}
