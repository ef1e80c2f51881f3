package models

import (
	"database/sql"
	"time"
)

// User is an applicant account. Applications are owned by exactly one
// user and only that user can create or pay for them.
type User struct {
	ID             string       `db:"id"`
	FirstName      string       `db:"first_name"`
	LastName       string       `db:"last_name"`
	Email          string       `db:"email"`
	PhoneNumber    string       `db:"phone_number"`
	HashedPassword string       `db:"hashed_password"`
	CreatedAt      time.Time    `db:"created_at"`
	UpdatedAt      sql.NullTime `db:"updated_at"`
}
