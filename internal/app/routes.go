package app

import (
	"net/http"

	"github.com/cradoe/indigene/internal/handler"
	"github.com/cradoe/indigene/internal/middleware"
)

func (app *Application) routes() http.Handler {
	mux := http.NewServeMux()

	mid := middleware.New(app.ErrHandler, app.Logger, app.DB.User(), app.DB.Admin(), &app.Config)

	healthHandler := handler.NewHealthCheckHandler(app.ErrHandler)
	utilityHandler := handler.NewUtilityHandler(app.ErrHandler)
	authHandler := handler.NewAuthHandler(app.DB, app.ErrHandler, &app.Config)
	applicationHandler := handler.NewApplicationHandler(app.DB, app.ErrHandler, app.Helper, app.FileUploader, app.Gateway, app.Kafka, &app.Config)
	certificateHandler := handler.NewCertificateHandler(app.DB, app.ErrHandler, app.Helper, app.Gateway, app.Kafka, &app.Config)
	adminHandler := handler.NewAdminHandler(app.DB, app.ErrHandler, app.Helper, app.Cache, app.Kafka, &app.Config)
	reportHandler := handler.NewReportHandler(app.DB, app.ErrHandler, app.Helper, app.Kafka)

	mux.HandleFunc("GET /status", healthHandler.HandleHealthCheck)

	mux.HandleFunc("GET /api/v1/states", utilityHandler.HandleListStates)
	mux.HandleFunc("GET /api/v1/states/{state}/lgas", utilityHandler.HandleListLgas)

	mux.HandleFunc("POST /api/v1/auth/register", authHandler.HandleAuthRegister)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.HandleAuthLogin)

	mux.Handle("POST /api/v1/applications", mid.RequireAuthenticatedUser(http.HandlerFunc(applicationHandler.HandleCreateApplication)))

	// payment callbacks come from the provider redirect, not from an
	// authenticated session
	mux.HandleFunc("GET /api/v1/applications/payments/verify", applicationHandler.HandleVerifyApplicationPayment)
	mux.HandleFunc("GET /api/v1/certificates/payments/verify", certificateHandler.HandleVerifyCertificatePayment)

	mux.Handle("POST /api/v1/certificates/verification-code/request", mid.RequireAuthenticatedUser(http.HandlerFunc(certificateHandler.HandleRequestVerificationCode)))
	mux.HandleFunc("POST /api/v1/certificates/verify", certificateHandler.HandleConfirmVerificationCode)

	mux.HandleFunc("POST /api/v1/admin/auth/login", adminHandler.HandleAdminLogin)
	mux.HandleFunc("POST /api/v1/admin/auth/forgot-password", adminHandler.HandleAdminForgotPassword)
	mux.HandleFunc("POST /api/v1/admin/auth/resend-otp", adminHandler.HandleAdminResendOtp)
	mux.HandleFunc("POST /api/v1/admin/auth/reset-password", adminHandler.HandleAdminResetPassword)

	mux.Handle("POST /api/v1/admin/auth/change-password", mid.RequireAdmin(http.HandlerFunc(adminHandler.HandleAdminChangePassword)))
	mux.Handle("POST /api/v1/admin/signup", mid.RequireSuperAdmin(http.HandlerFunc(adminHandler.HandleAdminSignup)))

	mux.Handle("PATCH /api/v1/admin/applications/{id}/decision", mid.RequireAdmin(http.HandlerFunc(adminHandler.HandleDecideApplication)))
	mux.Handle("POST /api/v1/admin/certificates/{ref}/nullify", mid.RequireAdmin(http.HandlerFunc(certificateHandler.HandleNullifyVerificationCode)))

	mux.Handle("GET /api/v1/admin/applications/summary", mid.RequireAdmin(http.HandlerFunc(reportHandler.HandleSummary)))
	mux.Handle("GET /api/v1/admin/applications/report", mid.RequireAdmin(http.HandlerFunc(reportHandler.HandleDownloadReport)))
	mux.Handle("GET /api/v1/admin/applications", mid.RequireAdmin(http.HandlerFunc(reportHandler.HandleListApplications)))

	return mid.LogAccess(mid.RecoverPanic(mid.Authenticate(mux)))
}
