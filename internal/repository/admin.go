package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cradoe/indigene/internal/models"
)

type AdminRepository interface {
	Insert(admin *models.Admin, tx *sql.Tx) (string, error)
	GetOne(id string) (*models.Admin, bool, error)
	GetByEmail(email string) (*models.Admin, bool, error)
	UpdatePassword(id, hashedPassword string) error
}

type AdminRepositoryImpl struct {
	db *DB
}

func NewAdminRepository(db *DB) AdminRepository {
	return &AdminRepositoryImpl{db: db}
}

func (repo *AdminRepositoryImpl) Insert(admin *models.Admin, tx *sql.Tx) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO admins (first_name, last_name, email, phone_number, position, staff_id, role, state_of_origin, lga, hashed_password)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	args := []any{
		admin.FirstName,
		admin.LastName,
		admin.Email,
		admin.PhoneNumber,
		admin.Position,
		admin.StaffID,
		admin.Role,
		admin.StateOfOrigin,
		admin.Lga,
		admin.HashedPassword,
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

func (repo *AdminRepositoryImpl) GetOne(id string) (*models.Admin, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var admin models.Admin

	query := `SELECT * FROM admins WHERE id = $1`

	err := repo.db.GetContext(ctx, &admin, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &admin, true, nil
}

func (repo *AdminRepositoryImpl) GetByEmail(email string) (*models.Admin, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var admin models.Admin

	query := `SELECT * FROM admins WHERE email = $1`

	err := repo.db.GetContext(ctx, &admin, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &admin, true, nil
}

func (repo *AdminRepositoryImpl) UpdatePassword(id, hashedPassword string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE admins SET hashed_password = $1, updated_at = now() WHERE id = $2`

	_, err := repo.db.ExecContext(ctx, query, hashedPassword, id)
	return err
}
