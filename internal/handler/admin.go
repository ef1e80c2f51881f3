package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cradoe/indigene/internal/cache"
	"github.com/cradoe/indigene/internal/config"
	"github.com/cradoe/indigene/internal/context"
	"github.com/cradoe/indigene/internal/errHandler"
	"github.com/cradoe/indigene/internal/helper"
	"github.com/cradoe/indigene/internal/jurisdiction"
	"github.com/cradoe/indigene/internal/middleware"
	"github.com/cradoe/indigene/internal/models"
	"github.com/cradoe/indigene/internal/repository"
	"github.com/cradoe/indigene/internal/request"
	"github.com/cradoe/indigene/internal/response"
	"github.com/cradoe/indigene/internal/stream"
	"github.com/cradoe/indigene/internal/validator"

	"github.com/cradoe/gopass"
	"github.com/google/uuid"
)

const (
	otpKeyPrefix         = "admin:otp:"
	otpCooldownKeyPrefix = "admin:otp:cooldown:"

	otpValidity       = 10 * time.Minute
	otpResendCooldown = 1 * time.Minute

	// refs are random; a collision is nearly impossible but the unique
	// index makes it fatal, so retry a few times before giving up
	certificateRefMaxAttempts = 5
)

var (
	ErrApplicationAlreadyDecided  = errors.New("application has already been decided")
	ErrApplicationAwaitingPayment = errors.New("application payment has not been confirmed")
	ErrOtpRequestTooSoon          = errors.New("please wait before requesting another code")
	ErrInvalidOrExpiredOtp        = errors.New("invalid or expired code")
)

const (
	actionApprove = "approve"
	actionReject  = "reject"
)

type adminHandler struct {
	db         repository.Database
	errHandler *errHandler.ErrorHandler
	helper     *helper.HelperRepository
	cache      cache.Store
	producer   stream.Producer
	config     *config.Config
}

func NewAdminHandler(db repository.Database, errHandler *errHandler.ErrorHandler, helper *helper.HelperRepository, cache cache.Store, producer stream.Producer, config *config.Config) *adminHandler {
	return &adminHandler{
		db:         db,
		errHandler: errHandler,
		helper:     helper,
		cache:      cache,
		producer:   producer,
		config:     config,
	}
}

// HandleAdminSignup invites a new official. Only a super admin can call
// it; the invitee gets a generated password by email and is expected to
// change it on first login.
func (h *adminHandler) HandleAdminSignup(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email       string              `json:"email"`
		FirstName   string              `json:"first_name"`
		LastName    string              `json:"last_name"`
		PhoneNumber string              `json:"phone_number"`
		Position    string              `json:"position"`
		StaffID     string              `json:"staff_id"`
		Lga         string              `json:"lga"`
		Validator   validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	_, found, err := h.db.Admin().GetByEmail(input.Email)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.IsEmail(input.Email), "Must be a valid email address")
	input.Validator.Check(!found, "Email is already in use")

	input.Validator.Check(validator.NotBlank(input.FirstName), "First name is required")
	input.Validator.Check(validator.NotBlank(input.LastName), "Last name is required")

	input.Validator.Check(jurisdiction.IsLgaOf(h.config.HomeState, input.Lga), "LGA must be a valid "+h.config.HomeState+" state LGA")

	if input.PhoneNumber != "" {
		input.Validator.Check(validator.Matches(input.PhoneNumber, validator.RgxPhoneNumber), "Phone number must be in international format")
	}

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	password := helper.GenerateRandomPassword()
	hashedPassword, err := gopass.Hash(password)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	admin := &models.Admin{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          input.Email,
		Role:           models.AdminRoleAdmin,
		Lga:            sql.NullString{String: input.Lga, Valid: true},
		HashedPassword: hashedPassword,
	}
	if input.PhoneNumber != "" {
		admin.PhoneNumber = sql.NullString{String: input.PhoneNumber, Valid: true}
	}
	if input.Position != "" {
		admin.Position = sql.NullString{String: input.Position, Valid: true}
	}
	if input.StaffID != "" {
		admin.StaffID = sql.NullString{String: input.StaffID, Valid: true}
	}

	adminID, err := h.db.Admin().Insert(admin, nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	h.helper.BackgroundTask(r, func() error {
		event := AdminInvitationEvent{
			EventID:  uuid.NewString(),
			Email:    input.Email,
			Name:     input.FirstName + " " + input.LastName,
			Password: password,
		}

		message, err := json.Marshal(event)
		if err != nil {
			return err
		}

		return h.producer.ProduceMessage(stream.AdminInvitationTopic, string(message))
	})

	data := map[string]string{
		"id": adminID,
	}
	message := "Admin invited successfully"
	err = response.JSONCreatedResponse(w, data, message)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *adminHandler) HandleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email     string              `json:"email"`
		Password  string              `json:"password"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	admin, found, err := h.db.Admin().GetByEmail(input.Email)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.IsEmail(input.Email), "Must be a valid email address")
	input.Validator.Check(validator.NotBlank(input.Password), "Password is required")
	input.Validator.Check(found, "Incorrect email/password")

	if found {
		passwordMatches, err := gopass.ComparePasswordAndHash(input.Password, admin.HashedPassword)
		if err != nil {
			h.errHandler.ServerError(w, r, err)
			return
		}

		input.Validator.Check(passwordMatches, "Incorrect email/password")
	}

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	token, expiry, err := issueToken(admin.ID, middleware.ScopeAdmin, h.config)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	data := map[string]string{
		"auth_token":   token,
		"token_expiry": expiry.Format(time.RFC3339),
		"role":         admin.Role,
	}
	message := "Login successful"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

// sendOtp generates, stores and emails a reset code. Only the hash is
// kept, and only until the TTL runs out.
func (h *adminHandler) sendOtp(r *http.Request, admin *models.Admin) error {
	otp := helper.RandomDigits(6)

	hashedOtp, err := gopass.Hash(otp)
	if err != nil {
		return err
	}

	if err := h.cache.Set(otpKeyPrefix+admin.Email, hashedOtp, otpValidity); err != nil {
		return err
	}
	if err := h.cache.Set(otpCooldownKeyPrefix+admin.Email, "1", otpResendCooldown); err != nil {
		return err
	}

	h.helper.BackgroundTask(r, func() error {
		event := ForgotPasswordEvent{
			EventID: uuid.NewString(),
			Email:   admin.Email,
			Name:    admin.FirstName,
			Otp:     otp,
		}

		message, err := json.Marshal(event)
		if err != nil {
			return err
		}

		return h.producer.ProduceMessage(stream.ForgotPasswordTopic, string(message))
	})

	return nil
}

func (h *adminHandler) HandleAdminForgotPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email     string              `json:"email"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.IsEmail(input.Email), "Must be a valid email address")

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	admin, found, err := h.db.Admin().GetByEmail(input.Email)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	// the response is identical whether or not the account exists, so
	// the endpoint cannot be used to probe for admin emails
	message := "If the account exists, a reset code has been sent"

	if found {
		onCooldown, err := h.cache.Exists(otpCooldownKeyPrefix + admin.Email)
		if err != nil {
			h.errHandler.ServerError(w, r, err)
			return
		}
		if onCooldown {
			err = response.JSONErrorResponse(w, nil, ErrOtpRequestTooSoon.Error(), http.StatusTooManyRequests, nil)
			if err != nil {
				h.errHandler.ServerError(w, r, err)
			}
			return
		}

		if err := h.sendOtp(r, admin); err != nil {
			h.errHandler.ServerError(w, r, err)
			return
		}
	}

	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *adminHandler) HandleAdminResendOtp(w http.ResponseWriter, r *http.Request) {
	h.HandleAdminForgotPassword(w, r)
}

func (h *adminHandler) HandleAdminResetPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email     string              `json:"email"`
		Otp       string              `json:"otp"`
		Password  string              `json:"password"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	_, errs := gopass.Validate(input.Password)
	if errs != nil {
		h.errHandler.FailedValidation(w, r, errs)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.IsEmail(input.Email), "Must be a valid email address")
	input.Validator.Check(validator.NotBlank(input.Otp), "Code is required")

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	admin, found, err := h.db.Admin().GetByEmail(input.Email)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.errHandler.BadRequest(w, r, ErrInvalidOrExpiredOtp)
		return
	}

	hashedOtp, err := h.cache.Get(otpKeyPrefix + admin.Email)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			h.errHandler.BadRequest(w, r, ErrInvalidOrExpiredOtp)
			return
		}
		h.errHandler.ServerError(w, r, err)
		return
	}

	// single use either way: a wrong guess burns the code
	if err := h.cache.Delete(otpKeyPrefix + admin.Email); err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	otpMatches, err := gopass.ComparePasswordAndHash(input.Otp, hashedOtp)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	if !otpMatches {
		h.errHandler.BadRequest(w, r, ErrInvalidOrExpiredOtp)
		return
	}

	hashedPassword, err := gopass.Hash(input.Password)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if err := h.db.Admin().UpdatePassword(admin.ID, hashedPassword); err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	message := "Password reset successfully"
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *adminHandler) HandleAdminChangePassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		CurrentPassword string              `json:"current_password"`
		NewPassword     string              `json:"new_password"`
		Validator       validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	admin := context.ContextGetAuthenticatedAdmin(r)

	_, errs := gopass.Validate(input.NewPassword)
	if errs != nil {
		h.errHandler.FailedValidation(w, r, errs)
		return
	}

	passwordMatches, err := gopass.ComparePasswordAndHash(input.CurrentPassword, admin.HashedPassword)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.CurrentPassword), "Current password is required")
	input.Validator.Check(passwordMatches, "Current password is incorrect")

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	hashedPassword, err := gopass.Hash(input.NewPassword)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if err := h.db.Admin().UpdatePassword(admin.ID, hashedPassword); err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	message := "Password changed successfully"
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

// HandleDecideApplication approves or rejects a paid application.
// Approval also creates the certificate, in the same DB transaction, so
// an approved application can never exist without one.
func (h *adminHandler) HandleDecideApplication(w http.ResponseWriter, r *http.Request) {
	applicationID := r.PathValue("id")

	var input struct {
		Action    string              `json:"action"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.In(input.Action, actionApprove, actionReject), "Action must be approve or reject")

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	admin := context.ContextGetAuthenticatedAdmin(r)

	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	// row lock: two concurrent decisions serialize here
	application, found, err := h.db.Application().GetOneForUpdate(applicationID, tx)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.errHandler.NotFound(w, r)
		return
	}

	if !admin.CanAccessLga(application.Lga, application.LgaOfResident) {
		h.errHandler.Forbidden(w, r)
		return
	}

	if models.IsTerminalApplicationStatus(application.Status) {
		h.errHandler.Conflict(w, r, ErrApplicationAlreadyDecided.Error())
		return
	}
	if application.Status == models.ApplicationStatusPendingPayment {
		h.errHandler.Conflict(w, r, ErrApplicationAwaitingPayment.Error())
		return
	}

	decidedAt := time.Now()

	newStatus := models.ApplicationStatusRejected
	if input.Action == actionApprove {
		newStatus = models.ApplicationStatusApproved
	}

	err = h.db.Application().Decide(application.ID, newStatus, decidedAt, tx)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	var certificateRef string
	if newStatus == models.ApplicationStatusApproved {
		certificateRef, err = h.generateUniqueCertificateRef()
		if err != nil {
			h.errHandler.ServerError(w, r, err)
			return
		}

		certificate := &models.Certificate{
			CertificateRef: certificateRef,
			UserID:         application.UserID,
			ApplicationID:  application.ID,
		}

		_, err = h.db.Certificate().Insert(certificate, tx)
		if err != nil {
			h.errHandler.ServerError(w, r, err)
			return
		}
	}

	if err = tx.Commit(); err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	committed = true

	topic := stream.ApplicationRejectedTopic
	if newStatus == models.ApplicationStatusApproved {
		topic = stream.ApplicationApprovedTopic
	}

	h.helper.BackgroundTask(r, func() error {
		applicant, found, err := h.db.User().GetOne(application.UserID)
		if err != nil {
			return err
		}
		if !found {
			return errors.New("applicant not found for decided application")
		}

		event := ApplicationLifecycleEvent{
			EventID:        uuid.NewString(),
			ApplicationID:  application.ID,
			FullNames:      application.FullNames,
			Email:          applicant.Email,
			Lga:            application.Lga,
			CertificateRef: certificateRef,
			DecisionDate:   decidedAt,
		}

		message, err := json.Marshal(event)
		if err != nil {
			return err
		}

		return h.producer.ProduceMessage(topic, string(message))
	})

	data := map[string]string{
		"id":     application.ID,
		"status": newStatus,
	}
	if certificateRef != "" {
		data["certificate_ref"] = certificateRef
	}

	message := "Application " + newStatus
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *adminHandler) generateUniqueCertificateRef() (string, error) {
	for i := 0; i < certificateRefMaxAttempts; i++ {
		ref := helper.GenerateCertificateRef()

		exists, err := h.db.Certificate().ExistsWithRef(ref)
		if err != nil {
			return "", err
		}
		if !exists {
			return ref, nil
		}
	}

	return "", errors.New("could not generate a unique certificate reference")
}
