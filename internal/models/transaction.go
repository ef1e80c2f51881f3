package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionStatusPending    = "pending"
	TransactionStatusSuccessful = "successful"
	TransactionStatusFailed     = "failed"
)

const (
	// TransactionTypeApplication pays the certificate application fee.
	TransactionTypeApplication = "application"

	// TransactionTypeCertificate pays for minting a certificate
	// verification code.
	TransactionTypeCertificate = "certificate"
)

// Transaction is one payment attempt. TransactionRef is generated by us
// before the provider is contacted and is the idempotency key for the
// whole confirmation flow; TransactionID and ProviderRef are assigned
// by the provider and arrive with the callback / verify response.
//
// Exactly one of ApplicationID and CertificateID is set, matching
// TransactionType.
type Transaction struct {
	ID             string          `db:"id"`
	TransactionRef string          `db:"transaction_ref"`
	Amount         decimal.Decimal `db:"amount"`
	TransactionID  sql.NullString  `db:"transaction_id"`
	ProviderRef    sql.NullString  `db:"provider_ref"`
	Status         string          `db:"status"`
	Type           string          `db:"transaction_type"`
	UserID         string          `db:"user_id"`
	ApplicationID  sql.NullString  `db:"application_id"`
	CertificateID  sql.NullString  `db:"certificate_id"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      sql.NullTime    `db:"updated_at"`
}
