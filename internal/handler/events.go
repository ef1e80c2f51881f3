package handler

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event payloads published to the stream. Workers in internal/worker
// consume these; the event id exists so a consumer replaying a
// partition can deduplicate deliveries.

type ApplicationLifecycleEvent struct {
	EventID        string          `json:"event_id"`
	ApplicationID  string          `json:"application_id"`
	FullNames      string          `json:"full_names"`
	Email          string          `json:"email"`
	Lga            string          `json:"lga"`
	Amount         decimal.Decimal `json:"amount"`
	CertificateRef string          `json:"certificate_ref,omitempty"`
	DecisionDate   time.Time       `json:"decision_date,omitempty"`
}

type CertificateVerificationEvent struct {
	EventID          string          `json:"event_id"`
	Email            string          `json:"email"`
	FullNames        string          `json:"full_names"`
	VerificationCode string          `json:"verification_code"`
	Amount           decimal.Decimal `json:"amount"`
}

type AdminInvitationEvent struct {
	EventID  string `json:"event_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type ForgotPasswordEvent struct {
	EventID string `json:"event_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Otp     string `json:"otp"`
}

// ReportRequestEvent carries the filters of an export request; the
// report worker re-runs the query and emails the CSV.
type ReportRequestEvent struct {
	EventID     string    `json:"event_id"`
	Email       string    `json:"email"`
	Lga         string    `json:"lga"`
	Status      string    `json:"status,omitempty"`
	StartDate   string    `json:"start_date,omitempty"`
	EndDate     string    `json:"end_date,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}
