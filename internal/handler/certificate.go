package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cradoe/indigene/internal/config"
	"github.com/cradoe/indigene/internal/context"
	"github.com/cradoe/indigene/internal/errHandler"
	"github.com/cradoe/indigene/internal/gateway"
	"github.com/cradoe/indigene/internal/helper"
	"github.com/cradoe/indigene/internal/models"
	"github.com/cradoe/indigene/internal/repository"
	"github.com/cradoe/indigene/internal/request"
	"github.com/cradoe/indigene/internal/response"
	"github.com/cradoe/indigene/internal/stream"
	"github.com/cradoe/indigene/internal/validator"

	"github.com/google/uuid"
)

const verificationCodeLength = 7

var (
	ErrVerificationCodeGenerated = errors.New("verification code has already been generated")
	ErrInvalidVerificationCode   = errors.New("invalid verification code")
)

type certificateHandler struct {
	db         repository.Database
	errHandler *errHandler.ErrorHandler
	helper     *helper.HelperRepository
	gateway    gateway.Gateway
	producer   stream.Producer
	config     *config.Config
}

func NewCertificateHandler(db repository.Database, errHandler *errHandler.ErrorHandler, helper *helper.HelperRepository, gateway gateway.Gateway, producer stream.Producer, config *config.Config) *certificateHandler {
	return &certificateHandler{
		db:         db,
		errHandler: errHandler,
		helper:     helper,
		gateway:    gateway,
		producer:   producer,
		config:     config,
	}
}

// HandleRequestVerificationCode starts the paid half of certificate
// verification. The code itself is only minted once the payment is
// confirmed; until then the certificate carries a pending flag and the
// payment link.
func (h *certificateHandler) HandleRequestVerificationCode(w http.ResponseWriter, r *http.Request) {
	var input struct {
		CertificateRef string              `json:"certificate_ref"`
		Validator      validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.CertificateRef), "Certificate reference is required")

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	holder := context.ContextGetAuthenticatedUser(r)

	certificate, found, err := h.db.Certificate().GetByRef(input.CertificateRef)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	if !found || certificate.UserID != holder.ID {
		// a foreign ref and an unknown ref look the same to the caller
		h.errHandler.NotFound(w, r)
		return
	}

	if certificate.IsVerificationCodeGenerated {
		h.errHandler.Conflict(w, r, ErrVerificationCodeGenerated.Error())
		return
	}

	// an unfinished earlier request still has a usable payment link
	if certificate.IsVerificationPaymentPending && certificate.PendingPaymentLink.Valid {
		data := map[string]any{
			"payment_link": certificate.PendingPaymentLink.String,
		}
		err = response.JSONOkResponse(w, data, "Redirect to payment link", nil)
		if err != nil {
			h.errHandler.ServerError(w, r, err)
		}
		return
	}

	transactionRef := helper.GenerateTransactionRef()

	charge, err := h.gateway.Initiate(r.Context(), &gateway.ChargeRequest{
		TxRef:       transactionRef,
		Amount:      h.config.Payments.VerificationFee,
		Currency:    h.config.Payments.Currency,
		RedirectURL: h.config.BaseURL + "/api/v1/certificates/payments/verify",
		Customer: gateway.Customer{
			Email:       holder.Email,
			Name:        holder.FirstName + " " + holder.LastName,
			PhoneNumber: holder.PhoneNumber,
		},
		Title: "Certificate Verification Code",
	})
	if err != nil {
		h.errHandler.GatewayError(w, r, err)
		return
	}

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

	err = h.db.Certificate().SetVerificationPaymentPending(certificate.ID, charge.PaymentLink, tx)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	transaction := &models.Transaction{
		TransactionRef: transactionRef,
		Amount:         h.config.Payments.VerificationFee,
		Type:           models.TransactionTypeCertificate,
		UserID:         holder.ID,
		CertificateID:  sql.NullString{String: certificate.ID, Valid: true},
	}

	_, err = h.db.Transaction().Insert(transaction, tx)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if err = tx.Commit(); err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	committed = true

	data := map[string]any{
		"tx_ref":       transactionRef,
		"payment_link": charge.PaymentLink,
	}
	err = response.JSONCreatedResponse(w, data, "Redirect to payment link")
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

// HandleVerifyCertificatePayment reconciles a verification-code payment
// callback. Same replay rules as the application flow; on success the
// code is minted, once, inside the same DB transaction that marks the
// payment successful.
func (h *certificateHandler) HandleVerifyCertificatePayment(w http.ResponseWriter, r *http.Request) {
	transactionRef := r.URL.Query().Get("tx_ref")
	callbackStatus := r.URL.Query().Get("status")
	providerTransactionID := r.URL.Query().Get("transaction_id")

	if transactionRef == "" || callbackStatus == "" || providerTransactionID == "" {
		h.errHandler.BadRequest(w, r, errors.New("missing required query parameters"))
		return
	}

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

	transaction, found, err := h.db.Transaction().FindByRefForUpdate(transactionRef, tx)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	if !found || transaction.Type != models.TransactionTypeCertificate {
		h.errHandler.BadRequest(w, r, ErrWrongTransactionReference)
		return
	}

	if callbackStatus == "failed" {
		if err = h.db.Transaction().UpdateStatus(transaction.ID, models.TransactionStatusFailed, tx); err != nil {
			h.errHandler.ServerError(w, r, err)
			return
		}
		if err = tx.Commit(); err != nil {
			h.errHandler.ServerError(w, r, err)
			return
		}
		committed = true

		h.errHandler.BadRequest(w, r, ErrTransactionFailed)
		return
	}

	if transaction.Status == models.TransactionStatusSuccessful {
		err = response.JSONOkResponse(w, map[string]any{"tx_ref": transaction.TransactionRef, "status": transaction.Status}, "Transaction successful", nil)
		if err != nil {
			h.errHandler.ServerError(w, r, err)
		}
		return
	}

	verification, err := h.gateway.Verify(r.Context(), providerTransactionID)
	if err != nil {
		h.errHandler.GatewayError(w, r, err)
		return
	}

	switch verification.Status {
	case gateway.ChargeStatusPending:
		if err = h.db.Transaction().RecordProviderTransactionID(transaction.ID, providerTransactionID, tx); err != nil {
			h.errHandler.ServerError(w, r, err)
			return
		}
		if err = tx.Commit(); err != nil {
			h.errHandler.ServerError(w, r, err)
			return
		}
		committed = true

		h.errHandler.BadRequest(w, r, ErrTransactionStillPending)
		return

	case gateway.ChargeStatusSuccessful:
		// fall through below

	default:
		if err = h.db.Transaction().RecordProviderTransactionID(transaction.ID, providerTransactionID, tx); err != nil {
			h.errHandler.ServerError(w, r, err)
			return
		}
		if err = h.db.Transaction().UpdateStatus(transaction.ID, models.TransactionStatusFailed, tx); err != nil {
			h.errHandler.ServerError(w, r, err)
			return
		}
		if err = tx.Commit(); err != nil {
			h.errHandler.ServerError(w, r, err)
			return
		}
		committed = true

		h.errHandler.BadRequest(w, r, ErrTransactionFailed)
		return
	}

	err = h.db.Transaction().MarkSuccessful(transaction.ID, providerTransactionID, verification.ProviderRef, tx)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	certificate, found, err := h.db.Certificate().GetOne(transaction.CertificateID.String)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.errHandler.ServerError(w, r, errors.New("certificate missing for verification transaction"))
		return
	}

	// lock the certificate row so minting cannot interleave with a
	// concurrent nullify
	certificate, found, err = h.db.Certificate().GetByRefForUpdate(certificate.CertificateRef, tx)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.errHandler.ServerError(w, r, errors.New("certificate missing for verification transaction"))
		return
	}

	var verificationCode string
	minted := false
	if !certificate.IsVerificationCodeGenerated {
		verificationCode = certificate.CertificateRef + "-" + helper.RandomAlphanumeric(verificationCodeLength)

		err = h.db.Certificate().MintVerificationCode(certificate.ID, verificationCode, tx)
		if err != nil {
			h.errHandler.ServerError(w, r, err)
			return
		}
		minted = true
	}

	if err = tx.Commit(); err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	committed = true

	if minted {
		h.helper.BackgroundTask(r, func() error {
			holder, found, err := h.db.User().GetOne(certificate.UserID)
			if err != nil {
				return err
			}
			if !found {
				return errors.New("holder not found for certificate")
			}

			event := CertificateVerificationEvent{
				EventID:          uuid.NewString(),
				Email:            holder.Email,
				FullNames:        holder.FirstName + " " + holder.LastName,
				VerificationCode: verificationCode,
				Amount:           transaction.Amount,
			}

			message, err := json.Marshal(event)
			if err != nil {
				return err
			}

			return h.producer.ProduceMessage(stream.CertificateVerificationTopic, string(message))
		})
	}

	http.Redirect(w, r, h.config.FrontendURL+"/payments/status?tx_ref="+transactionRef, http.StatusSeeOther)
}

// HandleConfirmVerificationCode is the public check: anyone holding a
// full code can ask whether it is genuine.
func (h *certificateHandler) HandleConfirmVerificationCode(w http.ResponseWriter, r *http.Request) {
	var input struct {
		VerificationCode string              `json:"verification_code"`
		Validator        validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.VerificationCode), "Verification code is required")

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	certificateRef, code, ok := models.SplitVerificationCode(input.VerificationCode)
	if !ok {
		h.errHandler.BadRequest(w, r, ErrInvalidVerificationCode)
		return
	}

	certificate, found, err := h.db.Certificate().GetByRef(certificateRef)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.errHandler.NotFoundMessage(w, r, "Certificate not found")
		return
	}

	// exact match against the stored code, ignoring surrounding
	// whitespace on the input; a code that was never minted or has been
	// nullified can never match
	if !certificate.IsVerificationCodeGenerated ||
		!certificate.VerificationCode.Valid ||
		certificate.VerificationCode.String != certificateRef+"-"+code {
		h.errHandler.BadRequest(w, r, ErrInvalidVerificationCode)
		return
	}

	data := map[string]any{
		"certificate_ref": certificate.CertificateRef,
		"issued_at":       certificate.CreatedAt,
	}
	err = response.JSONOkResponse(w, data, "Certificate is valid", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

// HandleNullifyVerificationCode revokes a minted code so the holder has
// to pay for a fresh one. Row-locked against a concurrent mint.
func (h *certificateHandler) HandleNullifyVerificationCode(w http.ResponseWriter, r *http.Request) {
	certificateRef := r.PathValue("ref")

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

	certificate, found, err := h.db.Certificate().GetByRefForUpdate(certificateRef, tx)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.errHandler.NotFoundMessage(w, r, "Certificate not found")
		return
	}

	err = h.db.Certificate().NullifyVerificationCode(certificate.ID, tx)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if err = tx.Commit(); err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	committed = true

	data := map[string]any{
		"certificate_ref": certificate.CertificateRef,
	}
	err = response.JSONOkResponse(w, data, "Verification code nullified", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}
