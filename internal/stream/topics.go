package stream

// Lifecycle topics. Producers are the request handlers; each topic has
// a single consumer group in the worker package.
const (
	// ApplicationAwaitingApprovalTopic fires once per confirmed
	// application payment.
	ApplicationAwaitingApprovalTopic = "application.awaiting-approval"

	// ApplicationApprovedTopic and ApplicationRejectedTopic fire once
	// per admin decision.
	ApplicationApprovedTopic = "application.approved"
	ApplicationRejectedTopic = "application.rejected"

	// CertificateVerificationTopic fires when a verification code has
	// been minted after a confirmed verification payment.
	CertificateVerificationTopic = "certificate.verification-code"

	// AdminInvitationTopic delivers a new admin's temporary password.
	AdminInvitationTopic = "admin.invitation"

	// ForgotPasswordTopic delivers password-reset OTPs.
	ForgotPasswordTopic = "auth.forgot-password"

	// ApplicationReportTopic requests an emailed CSV export of
	// applications.
	ApplicationReportTopic = "application.report"
)
