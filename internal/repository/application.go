package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cradoe/indigene/internal/models"
)

type ApplicationRepository interface {
	Insert(application *models.Application, tx *sql.Tx) (string, error)
	GetOne(id string) (*models.Application, bool, error)
	GetOneForUpdate(id string, tx *sql.Tx) (*models.Application, bool, error)
	ExistsNonTerminalWithNin(nin string, tx *sql.Tx) (bool, error)
	MarkPaymentConfirmed(id string, tx *sql.Tx) (bool, error)
	Decide(id, status string, decidedAt time.Time, tx *sql.Tx) error
	List(filter *ApplicationFilter) ([]models.Application, int, error)
	SearchByName(name, lga string) ([]models.Application, error)
	StatusCounts(lga string) (*StatusCounts, error)
	DailyStatusCounts(lga string, dayStart, dayEnd time.Time) (*StatusCounts, error)
}

// ApplicationFilter scopes listing and export queries. An empty Lga
// means unrestricted (super admin); otherwise rows match when either
// the application's LGA or its resident LGA equals it.
type ApplicationFilter struct {
	Lga       string
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

type StatusCounts struct {
	Total    int `db:"total"`
	Approved int `db:"approved"`
	Rejected int `db:"rejected"`
	Pending  int `db:"pending"`
}

type ApplicationRepositoryImpl struct {
	db *DB
}

func NewApplicationRepository(db *DB) ApplicationRepository {
	return &ApplicationRepositoryImpl{db: db}
}

func (repo *ApplicationRepositoryImpl) Insert(application *models.Application, tx *sql.Tx) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO applications (
			user_id, full_names, nin, father_names, mother_names, native_town,
			native_political_ward, village, community_head, community_head_contact,
			passport, passport_public_id, doc_from_community_head, doc_from_community_head_public_id,
			current_address, state_of_origin, lga, is_resident, lga_of_resident,
			status, pending_payment_link
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING id`

	args := []any{
		application.UserID,
		application.FullNames,
		application.Nin,
		application.FatherNames,
		application.MotherNames,
		application.NativeTown,
		application.NativePoliticalWard,
		application.Village,
		application.CommunityHead,
		application.CommunityHeadContact,
		application.Passport,
		application.PassportPublicID,
		application.DocFromCommunityHead,
		application.DocFromCommunityHeadPublicID,
		application.CurrentAddress,
		application.StateOfOrigin,
		application.Lga,
		application.IsResident,
		application.LgaOfResident,
		application.Status,
		application.PendingPaymentLink,
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

func (repo *ApplicationRepositoryImpl) GetOne(id string) (*models.Application, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var application models.Application

	query := `SELECT * FROM applications WHERE id = $1`

	err := repo.db.GetContext(ctx, &application, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &application, true, nil
}

// GetOneForUpdate locks the application row for the duration of tx.
// Admin decisions go through here so that two concurrent decisions on
// the same application serialize instead of both passing the
// already-decided check.
func (repo *ApplicationRepositoryImpl) GetOneForUpdate(id string, tx *sql.Tx) (*models.Application, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		SELECT id, user_id, full_names, nin, lga, lga_of_resident, state_of_origin, status, pending_approval_rejection_date
		FROM applications
		WHERE id = $1
		FOR UPDATE`

	var application models.Application
	err := tx.QueryRowContext(ctx, query, id).Scan(
		&application.ID,
		&application.UserID,
		&application.FullNames,
		&application.Nin,
		&application.Lga,
		&application.LgaOfResident,
		&application.StateOfOrigin,
		&application.Status,
		&application.PendingApprovalRejectionDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &application, true, nil
}

// ExistsNonTerminalWithNin is the duplicate-submission guard: at most
// one application per NIN may sit in pending_payment or pending.
func (repo *ApplicationRepositoryImpl) ExistsNonTerminalWithNin(nin string, tx *sql.Tx) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var exists bool

	query := `
		SELECT EXISTS(
			SELECT 1 FROM applications
			WHERE nin = $1 AND status IN ($2, $3)
		)`

	args := []any{nin, models.ApplicationStatusPendingPayment, models.ApplicationStatusPending}

	if tx != nil {
		err := tx.QueryRowContext(ctx, query, args...).Scan(&exists)
		if err != nil {
			return false, err
		}
	} else {
		err := repo.db.GetContext(ctx, &exists, query, args...)
		if err != nil {
			return false, err
		}
	}

	return exists, nil
}

// MarkPaymentConfirmed moves an application from pending_payment to
// pending and drops the payment link. The status guard in the WHERE
// clause means a second confirmation attempt affects zero rows.
func (repo *ApplicationRepositoryImpl) MarkPaymentConfirmed(id string, tx *sql.Tx) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE applications
		SET status = $1, pending_payment_link = NULL, updated_at = now()
		WHERE id = $2 AND status = $3`

	args := []any{models.ApplicationStatusPending, id, models.ApplicationStatusPendingPayment}

	var result sql.Result
	var err error
	if tx != nil {
		result, err = tx.ExecContext(ctx, query, args...)
	} else {
		result, err = repo.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (repo *ApplicationRepositoryImpl) Decide(id, status string, decidedAt time.Time, tx *sql.Tx) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE applications
		SET status = $1, pending_approval_rejection_date = $2, updated_at = now()
		WHERE id = $3`

	if tx != nil {
		_, err := tx.ExecContext(ctx, query, status, decidedAt, id)
		return err
	}

	_, err := repo.db.ExecContext(ctx, query, status, decidedAt, id)
	return err
}

// jurisdictionClause matches applications visible to an admin scoped to
// lga, by origin LGA or by resident LGA.
func jurisdictionClause(lga string, args *[]any) string {
	if lga == "" {
		return "TRUE"
	}

	*args = append(*args, lga)
	n := len(*args)
	return fmt.Sprintf("(lga = $%d OR lga_of_resident = $%d)", n, n)
}

func (repo *ApplicationRepositoryImpl) List(filter *ApplicationFilter) ([]models.Application, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var args []any
	conditions := []string{jurisdictionClause(filter.Lga, &args)}

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		conditions = append(conditions, fmt.Sprintf("pending_approval_rejection_date >= $%d", len(args)))
	}

	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		conditions = append(conditions, fmt.Sprintf("pending_approval_rejection_date <= $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM applications WHERE ` + where
	if err := repo.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := `SELECT * FROM applications WHERE ` + where + ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))

		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	var applications []models.Application
	if err := repo.db.SelectContext(ctx, &applications, query, args...); err != nil {
		return nil, 0, err
	}

	return applications, total, nil
}

func (repo *ApplicationRepositoryImpl) SearchByName(name, lga string) ([]models.Application, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	args := []any{"%" + name + "%"}
	where := `full_names ILIKE $1 AND ` + jurisdictionClause(lga, &args)

	query := `SELECT * FROM applications WHERE ` + where + ` ORDER BY created_at DESC`

	var applications []models.Application
	if err := repo.db.SelectContext(ctx, &applications, query, args...); err != nil {
		return nil, err
	}

	return applications, nil
}

func (repo *ApplicationRepositoryImpl) StatusCounts(lga string) (*StatusCounts, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var args []any
	where := jurisdictionClause(lga, &args)

	query := `
		SELECT
			COUNT(*) FILTER (WHERE status IN ('pending', 'approved', 'rejected')) AS total,
			COUNT(*) FILTER (WHERE status = 'approved') AS approved,
			COUNT(*) FILTER (WHERE status = 'rejected') AS rejected,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending
		FROM applications
		WHERE ` + where

	var counts StatusCounts
	if err := repo.db.GetContext(ctx, &counts, query, args...); err != nil {
		return nil, err
	}

	return &counts, nil
}

// DailyStatusCounts restricts the summary to one calendar day. Decided
// applications are bucketed by decision date, still-pending ones by
// creation date since they carry no decision stamp yet.
func (repo *ApplicationRepositoryImpl) DailyStatusCounts(lga string, dayStart, dayEnd time.Time) (*StatusCounts, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	args := []any{dayStart, dayEnd}
	where := jurisdictionClause(lga, &args)

	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'approved' AND pending_approval_rejection_date BETWEEN $1 AND $2) AS approved,
			COUNT(*) FILTER (WHERE status = 'rejected' AND pending_approval_rejection_date BETWEEN $1 AND $2) AS rejected,
			COUNT(*) FILTER (WHERE status = 'pending' AND created_at BETWEEN $1 AND $2) AS pending,
			0 AS total
		FROM applications
		WHERE ` + where

	var counts StatusCounts
	if err := repo.db.GetContext(ctx, &counts, query, args...); err != nil {
		return nil, err
	}

	counts.Total = counts.Approved + counts.Rejected + counts.Pending
	return &counts, nil
}
