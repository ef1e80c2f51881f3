package models

import (
	"database/sql"
	"time"
)

// Application lifecycle. An application starts at pending_payment and
// only ever moves forward:
//
//	pending_payment --payment confirmed--> pending --admin decision--> approved | rejected
const (
	ApplicationStatusPendingPayment = "pending_payment"
	ApplicationStatusPending        = "pending"
	ApplicationStatusApproved       = "approved"
	ApplicationStatusRejected       = "rejected"
)

func IsApplicationStatus(status string) bool {
	switch status {
	case ApplicationStatusPendingPayment, ApplicationStatusPending,
		ApplicationStatusApproved, ApplicationStatusRejected:
		return true
	}
	return false
}

// IsTerminalApplicationStatus reports whether status admits no further
// transition. Terminal applications reject admin decisions and don't
// count toward the one-pending-application-per-NIN rule.
func IsTerminalApplicationStatus(status string) bool {
	return status == ApplicationStatusApproved || status == ApplicationStatusRejected
}

type Application struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	FullNames string `db:"full_names"`
	Nin       string `db:"nin"`

	// Origin-specific fields, populated only when the applicant's state
	// of origin is the home state.
	FatherNames          sql.NullString `db:"father_names"`
	MotherNames          sql.NullString `db:"mother_names"`
	NativeTown           sql.NullString `db:"native_town"`
	NativePoliticalWard  sql.NullString `db:"native_political_ward"`
	Village              sql.NullString `db:"village"`
	CommunityHead        sql.NullString `db:"community_head"`
	CommunityHeadContact sql.NullString `db:"community_head_contact"`

	Passport                     string         `db:"passport"`
	PassportPublicID             string         `db:"passport_public_id"`
	DocFromCommunityHead         sql.NullString `db:"doc_from_community_head"`
	DocFromCommunityHeadPublicID sql.NullString `db:"doc_from_community_head_public_id"`

	CurrentAddress string `db:"current_address"`
	StateOfOrigin  string `db:"state_of_origin"`
	Lga            string `db:"lga"`

	// Residency fields, required instead of the origin-specific set
	// when the applicant originates from another state.
	IsResident    sql.NullBool   `db:"is_resident"`
	LgaOfResident sql.NullString `db:"lga_of_resident"`

	Status                       string         `db:"status"`
	PendingPaymentLink           sql.NullString `db:"pending_payment_link"`
	PendingApprovalRejectionDate sql.NullTime   `db:"pending_approval_rejection_date"`

	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
}
