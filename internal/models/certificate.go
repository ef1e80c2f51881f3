package models

import (
	"database/sql"
	"strings"
	"time"
)

// Certificate is created exactly once, from the approval transition of
// its application. The verification code is sold separately: requesting
// one starts a payment, confirming the payment mints
// "{certificate_ref}-{7 alphanumeric chars}", and the code stays fixed
// until an operator nullifies it.
type Certificate struct {
	ID                           string         `db:"id"`
	CertificateRef               string         `db:"certificate_ref"`
	VerificationCode             sql.NullString `db:"verification_code"`
	IsVerificationCodeGenerated  bool           `db:"is_verification_code_generated"`
	IsVerificationPaymentPending bool           `db:"is_verification_payment_pending"`
	PendingPaymentLink           sql.NullString `db:"pending_payment_link"`
	UserID                       string         `db:"user_id"`
	ApplicationID                string         `db:"application_id"`
	CreatedAt                    time.Time      `db:"created_at"`
	UpdatedAt                    sql.NullTime   `db:"updated_at"`
}

// SplitVerificationCode parses a full verification reference of the
// form "{certificateRef}-{code}". The ref itself never contains a
// hyphen, but splitting on the last one keeps the parse stable either
// way. Returns ok=false when no hyphen is present.
func SplitVerificationCode(full string) (ref, code string, ok bool) {
	full = strings.TrimSpace(full)

	i := strings.LastIndex(full, "-")
	if i <= 0 || i == len(full)-1 {
		return "", "", false
	}

	return full[:i], full[i+1:], true
}
