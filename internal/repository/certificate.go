package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cradoe/indigene/internal/models"
)

type CertificateRepository interface {
	Insert(certificate *models.Certificate, tx *sql.Tx) (string, error)
	GetOne(id string) (*models.Certificate, bool, error)
	GetByRef(certificateRef string) (*models.Certificate, bool, error)
	GetByRefForUpdate(certificateRef string, tx *sql.Tx) (*models.Certificate, bool, error)
	ExistsWithRef(certificateRef string) (bool, error)
	SetVerificationPaymentPending(id, paymentLink string, tx *sql.Tx) error
	MintVerificationCode(id, verificationCode string, tx *sql.Tx) error
	NullifyVerificationCode(id string, tx *sql.Tx) error
}

type CertificateRepositoryImpl struct {
	db *DB
}

func NewCertificateRepository(db *DB) CertificateRepository {
	return &CertificateRepositoryImpl{db: db}
}

func (repo *CertificateRepositoryImpl) Insert(certificate *models.Certificate, tx *sql.Tx) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO certificates (certificate_ref, user_id, application_id)
		VALUES ($1, $2, $3)
		RETURNING id`

	args := []any{certificate.CertificateRef, certificate.UserID, certificate.ApplicationID}

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

func (repo *CertificateRepositoryImpl) GetOne(id string) (*models.Certificate, bool, error) {
	return repo.getWhere(`id = $1`, id)
}

func (repo *CertificateRepositoryImpl) GetByRef(certificateRef string) (*models.Certificate, bool, error) {
	return repo.getWhere(`certificate_ref = $1`, certificateRef)
}

func (repo *CertificateRepositoryImpl) getWhere(clause string, arg any) (*models.Certificate, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var certificate models.Certificate

	query := `SELECT * FROM certificates WHERE ` + clause

	err := repo.db.GetContext(ctx, &certificate, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &certificate, true, nil
}

// GetByRefForUpdate locks the certificate row so nullification and
// code minting cannot interleave.
func (repo *CertificateRepositoryImpl) GetByRefForUpdate(certificateRef string, tx *sql.Tx) (*models.Certificate, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		SELECT id, certificate_ref, verification_code, is_verification_code_generated, is_verification_payment_pending, pending_payment_link, user_id, application_id, created_at, updated_at
		FROM certificates
		WHERE certificate_ref = $1
		FOR UPDATE`

	var certificate models.Certificate
	err := tx.QueryRowContext(ctx, query, certificateRef).Scan(
		&certificate.ID,
		&certificate.CertificateRef,
		&certificate.VerificationCode,
		&certificate.IsVerificationCodeGenerated,
		&certificate.IsVerificationPaymentPending,
		&certificate.PendingPaymentLink,
		&certificate.UserID,
		&certificate.ApplicationID,
		&certificate.CreatedAt,
		&certificate.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &certificate, true, nil
}

// ExistsWithRef backs the collision check when generating new
// certificate references.
func (repo *CertificateRepositoryImpl) ExistsWithRef(certificateRef string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var exists bool

	query := `SELECT EXISTS(SELECT 1 FROM certificates WHERE certificate_ref = $1)`

	err := repo.db.GetContext(ctx, &exists, query, certificateRef)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (repo *CertificateRepositoryImpl) SetVerificationPaymentPending(id, paymentLink string, tx *sql.Tx) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE certificates
		SET is_verification_payment_pending = TRUE, pending_payment_link = $1, updated_at = now()
		WHERE id = $2`

	if tx != nil {
		_, err := tx.ExecContext(ctx, query, paymentLink, id)
		return err
	}

	_, err := repo.db.ExecContext(ctx, query, paymentLink, id)
	return err
}

func (repo *CertificateRepositoryImpl) MintVerificationCode(id, verificationCode string, tx *sql.Tx) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE certificates
		SET verification_code = $1,
			is_verification_code_generated = TRUE,
			is_verification_payment_pending = FALSE,
			pending_payment_link = NULL,
			updated_at = now()
		WHERE id = $2`

	if tx != nil {
		_, err := tx.ExecContext(ctx, query, verificationCode, id)
		return err
	}

	_, err := repo.db.ExecContext(ctx, query, verificationCode, id)
	return err
}

func (repo *CertificateRepositoryImpl) NullifyVerificationCode(id string, tx *sql.Tx) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE certificates
		SET verification_code = NULL,
			is_verification_code_generated = FALSE,
			updated_at = now()
		WHERE id = $1`

	if tx != nil {
		_, err := tx.ExecContext(ctx, query, id)
		return err
	}

	_, err := repo.db.ExecContext(ctx, query, id)
	return err
}
