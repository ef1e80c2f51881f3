package models

import (
	"database/sql"
	"time"
)

const (
	// AdminRoleAdmin can only act on applications within its own LGA,
	// either by origin or by residency.
	AdminRoleAdmin = "admin"

	// AdminRoleSuperAdmin is unrestricted and is the only role allowed
	// to invite other officials.
	AdminRoleSuperAdmin = "super_admin"
)

type Admin struct {
	ID             string         `db:"id"`
	FirstName      string         `db:"first_name"`
	LastName       string         `db:"last_name"`
	Email          string         `db:"email"`
	PhoneNumber    sql.NullString `db:"phone_number"`
	Position       sql.NullString `db:"position"`
	StaffID        sql.NullString `db:"staff_id"`
	Role           string         `db:"role"`
	StateOfOrigin  sql.NullString `db:"state_of_origin"`
	Lga            sql.NullString `db:"lga"`
	HashedPassword string         `db:"hashed_password"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      sql.NullTime   `db:"updated_at"`
}

// CanAccessLga reports whether the admin's jurisdiction covers an
// application filed for lga, or filed by a resident of lgaOfResident.
func (a *Admin) CanAccessLga(lga string, lgaOfResident sql.NullString) bool {
	if a.Role == AdminRoleSuperAdmin {
		return true
	}

	if !a.Lga.Valid {
		return false
	}

	if a.Lga.String == lga {
		return true
	}

	return lgaOfResident.Valid && a.Lga.String == lgaOfResident.String
}
