package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cradoe/indigene/internal/models"
)

type TransactionRepository interface {
	Insert(transaction *models.Transaction, tx *sql.Tx) (string, error)
	FindByRefForUpdate(transactionRef string, tx *sql.Tx) (*models.Transaction, bool, error)
	UpdateStatus(id, status string, tx *sql.Tx) error
	RecordProviderTransactionID(id, providerTransactionID string, tx *sql.Tx) error
	MarkSuccessful(id, providerTransactionID, providerRef string, tx *sql.Tx) error
}

type TransactionRepositoryImpl struct {
	db *DB
}

func NewTransactionRepository(db *DB) TransactionRepository {
	return &TransactionRepositoryImpl{db: db}
}

func (repo *TransactionRepositoryImpl) Insert(transaction *models.Transaction, tx *sql.Tx) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO transactions (transaction_ref, amount, transaction_type, user_id, application_id, certificate_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	args := []any{
		transaction.TransactionRef,
		transaction.Amount,
		transaction.Type,
		transaction.UserID,
		transaction.ApplicationID,
		transaction.CertificateID,
	}

	if tx != nil {
		err := tx.QueryRowContext(ctx, query, args...).Scan(&id)
		if err != nil {
			return "", err
		}
	} else {
		err := repo.db.GetContext(ctx, &id, query, args...)
		if err != nil {
			return "", err
		}
	}

	return id, nil
}

// FindByRefForUpdate locks the transaction row until tx ends. The row
// keyed by transaction_ref is the serialization point for payment
// confirmation: concurrent callbacks for the same reference queue up
// here, so only the first one can observe a non-successful status.
func (repo *TransactionRepositoryImpl) FindByRefForUpdate(transactionRef string, tx *sql.Tx) (*models.Transaction, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		SELECT id, transaction_ref, amount, transaction_id, provider_ref, status, transaction_type, user_id, application_id, certificate_id, created_at, updated_at
		FROM transactions
		WHERE transaction_ref = $1
		FOR UPDATE`

	var transaction models.Transaction
	err := tx.QueryRowContext(ctx, query, transactionRef).Scan(
		&transaction.ID,
		&transaction.TransactionRef,
		&transaction.Amount,
		&transaction.TransactionID,
		&transaction.ProviderRef,
		&transaction.Status,
		&transaction.Type,
		&transaction.UserID,
		&transaction.ApplicationID,
		&transaction.CertificateID,
		&transaction.CreatedAt,
		&transaction.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &transaction, true, nil
}

func (repo *TransactionRepositoryImpl) UpdateStatus(id, status string, tx *sql.Tx) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE transactions SET status = $1, updated_at = now() WHERE id = $2`

	if tx != nil {
		_, err := tx.ExecContext(ctx, query, status, id)
		return err
	}

	_, err := repo.db.ExecContext(ctx, query, status, id)
	return err
}

// RecordProviderTransactionID persists the provider's id while the
// charge is still pending on their side, so a later confirmation
// attempt can re-verify without the callback parameters.
func (repo *TransactionRepositoryImpl) RecordProviderTransactionID(id, providerTransactionID string, tx *sql.Tx) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE transactions SET transaction_id = $1, updated_at = now() WHERE id = $2`

	if tx != nil {
		_, err := tx.ExecContext(ctx, query, providerTransactionID, id)
		return err
	}

	_, err := repo.db.ExecContext(ctx, query, providerTransactionID, id)
	return err
}

func (repo *TransactionRepositoryImpl) MarkSuccessful(id, providerTransactionID, providerRef string, tx *sql.Tx) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE transactions
		SET status = $1, transaction_id = $2, provider_ref = $3, updated_at = now()
		WHERE id = $4`

	args := []any{models.TransactionStatusSuccessful, providerTransactionID, providerRef, id}

	if tx != nil {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	}

	_, err := repo.db.ExecContext(ctx, query, args...)
	return err
}
