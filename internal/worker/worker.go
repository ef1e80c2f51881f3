package worker

import (
	"context"

	"github.com/cradoe/indigene/internal/helper"
	"github.com/cradoe/indigene/internal/repository"
	"github.com/cradoe/indigene/internal/smtp"
	"github.com/cradoe/indigene/internal/stream"
)

type Worker struct {
	KafkaStream *stream.KafkaStream
	DB          repository.Database
	Ctx         context.Context
	Helper      *helper.HelperRepository
	Mailer      smtp.MailerInterface
}

const (
	// applicationAwaitingApprovalGroupID notifies applicants whose payment
	// has been confirmed and whose application is now in the review queue
	applicationAwaitingApprovalGroupID = "application-awaiting-approval-group"

	// applicationDecisionGroupID handles both approval and rejection
	// notifications; each consumer still subscribes to its own topic
	applicationApprovedGroupID = "application-approved-group"
	applicationRejectedGroupID = "application-rejected-group"

	// certificateVerificationGroupID delivers freshly minted verification codes
	certificateVerificationGroupID = "certificate-verification-group"

	// adminAccountGroupID handles admin invitations and password reset codes
	adminInvitationGroupID = "admin-invitation-group"
	forgotPasswordGroupID  = "forgot-password-group"

	// applicationReportGroupID builds and emails CSV exports
	applicationReportGroupID = "application-report-group"
)

// Our workers typically need access to the database, the event stream
// and the mailer; worker-specific dependencies are fields on the struct.
func New(wk *Worker) *Worker {
	return &Worker{
		KafkaStream: wk.KafkaStream,
		DB:          wk.DB,
		Ctx:         wk.Ctx,
		Helper:      wk.Helper,
		Mailer:      wk.Mailer,
	}
}
