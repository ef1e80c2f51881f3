package handler

import (
	dctx "context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/cradoe/indigene/internal/config"
	"github.com/cradoe/indigene/internal/context"
	"github.com/cradoe/indigene/internal/errHandler"
	"github.com/cradoe/indigene/internal/file"
	"github.com/cradoe/indigene/internal/gateway"
	"github.com/cradoe/indigene/internal/helper"
	"github.com/cradoe/indigene/internal/jurisdiction"
	"github.com/cradoe/indigene/internal/models"
	"github.com/cradoe/indigene/internal/repository"
	"github.com/cradoe/indigene/internal/request"
	"github.com/cradoe/indigene/internal/response"
	"github.com/cradoe/indigene/internal/stream"
	"github.com/cradoe/indigene/internal/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrExistingPendingApplication = errors.New("existing application pending")
	ErrWrongTransactionReference  = errors.New("wrong transaction reference")
	ErrTransactionFailed          = errors.New("transaction failed")
	ErrTransactionStillPending    = errors.New("transaction still pending")
)

const evidenceFolder = "indigene_applications"

type applicationHandler struct {
	db         repository.Database
	errHandler *errHandler.ErrorHandler
	helper     *helper.HelperRepository
	uploader   file.Uploader
	gateway    gateway.Gateway
	producer   stream.Producer
	config     *config.Config
}

func NewApplicationHandler(db repository.Database, errHandler *errHandler.ErrorHandler, helper *helper.HelperRepository, uploader file.Uploader, gateway gateway.Gateway, producer stream.Producer, config *config.Config) *applicationHandler {
	return &applicationHandler{
		db:         db,
		errHandler: errHandler,
		helper:     helper,
		uploader:   uploader,
		gateway:    gateway,
		producer:   producer,
		config:     config,
	}
}

// Creating an application is one atomic unit:
// Step 1: validate all input, including the conditional origin/residency field sets
// Step 2: check no other live application exists for this NIN
// Step 3: upload evidence files
// Step 4: initiate the provider charge
// Step 5: persist the application and its pending transaction together
// A failure at any step leaves no application and no transaction behind;
// already-uploaded evidence is deleted best-effort.
func (h *applicationHandler) HandleCreateApplication(w http.ResponseWriter, r *http.Request) {
	type createApplicationInput struct {
		FullNames            string              `json:"full_names"`
		Nin                  string              `json:"nin"`
		FatherNames          string              `json:"father_names"`
		MotherNames          string              `json:"mother_names"`
		NativeTown           string              `json:"native_town"`
		NativePoliticalWard  string              `json:"native_political_ward"`
		Village              string              `json:"village"`
		CommunityHead        string              `json:"community_head"`
		CommunityHeadContact string              `json:"community_head_contact"`
		CurrentAddress       string              `json:"current_address"`
		StateOfOrigin        string              `json:"state_of_origin"`
		Lga                  string              `json:"lga"`
		IsResident           *bool               `json:"is_resident"`
		LgaOfResident        string              `json:"lga_of_resident"`
		Passport             string              `json:"passport"`
		DocFromCommunityHead string              `json:"doc_from_community_head"`
		Validator            validator.Validator `json:"-"`
	}

	var input createApplicationInput

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	applicant := context.ContextGetAuthenticatedUser(r)
	homeState := h.config.HomeState

	// Step 1: validations
	input.Validator.Check(validator.NotBlank(input.FullNames), "Full names is required")
	input.Validator.Check(validator.Matches(input.Nin, validator.RgxNIN), "NIN must be an 11-digit number")
	input.Validator.Check(validator.NotBlank(input.CurrentAddress), "Current address is required")

	input.Validator.Check(jurisdiction.IsState(input.StateOfOrigin), "State of origin is not a known state")
	input.Validator.Check(jurisdiction.IsLgaOf(homeState, input.Lga), "LGA must be a valid "+homeState+" state LGA")

	input.Validator.Check(validator.NotBlank(input.Passport), "Passport photograph is required")
	if input.Passport != "" {
		input.Validator.Check(validator.Matches(input.Passport, validator.RgxBase64Image), "Passport must be a png or jpeg image")
	}
	if input.DocFromCommunityHead != "" {
		input.Validator.Check(validator.Matches(input.DocFromCommunityHead, validator.RgxBase64Document), "Community head document must be an image or a PDF")
	}

	if input.StateOfOrigin == homeState {
		// indigenes must supply the full origin record
		input.Validator.Check(validator.NotBlank(input.FatherNames), "Father's names is required")
		input.Validator.Check(validator.NotBlank(input.MotherNames), "Mother's names is required")
		input.Validator.Check(validator.NotBlank(input.NativeTown), "Native town is required")
		input.Validator.Check(validator.NotBlank(input.NativePoliticalWard), "Native political ward is required")
		input.Validator.Check(validator.NotBlank(input.Village), "Village is required")
		input.Validator.Check(validator.NotBlank(input.CommunityHead), "Community head is required")
		input.Validator.Check(validator.NotBlank(input.CommunityHeadContact), "Community head contact is required")
	} else {
		// non-indigenes apply as residents instead
		input.Validator.Check(input.IsResident != nil, "Residency status is required for non-"+homeState+" applicants")
		input.Validator.Check(validator.NotBlank(input.LgaOfResident), "LGA of residence is required for non-"+homeState+" applicants")
		if input.LgaOfResident != "" {
			input.Validator.Check(jurisdiction.IsLgaOf(homeState, input.LgaOfResident), "LGA of residence must be a valid "+homeState+" state LGA")
		}
	}

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	defer func() {
		// rollback is a no-op once the transaction has been committed
		if err != nil {
			tx.Rollback()
		}
	}()

	// Step 2: one live application per NIN
	exists, err := h.db.Application().ExistsNonTerminalWithNin(input.Nin, tx)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	if exists {
		err = ErrExistingPendingApplication
		h.errHandler.Conflict(w, r, ErrExistingPendingApplication.Error())
		return
	}

	// Step 3: evidence uploads
	var uploaded []*file.UploadedFile
	cleanup := func() {
		for _, f := range uploaded {
			f := f
			h.helper.BackgroundTask(r, func() error {
				return h.uploader.Delete(dctx.Background(), f.PublicID)
			})
		}
	}

	passport, err := h.uploader.UploadBase64(r.Context(), input.Passport, evidenceFolder)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	uploaded = append(uploaded, passport)

	var communityHeadDoc *file.UploadedFile
	if input.DocFromCommunityHead != "" {
		communityHeadDoc, err = h.uploader.UploadBase64(r.Context(), input.DocFromCommunityHead, evidenceFolder)
		if err != nil {
			cleanup()
			h.errHandler.ServerError(w, r, err)
			return
		}
		uploaded = append(uploaded, communityHeadDoc)
	}

	// Step 4: initiate the charge
	transactionRef := helper.GenerateTransactionRef()

	charge, err := h.gateway.Initiate(r.Context(), &gateway.ChargeRequest{
		TxRef:       transactionRef,
		Amount:      h.config.Payments.ApplicationFee,
		Currency:    h.config.Payments.Currency,
		RedirectURL: h.config.BaseURL + "/api/v1/applications/payments/verify",
		Customer: gateway.Customer{
			Email:       applicant.Email,
			Name:        input.FullNames,
			PhoneNumber: applicant.PhoneNumber,
		},
		Title: "Certificate of Origin Application",
	})
	if err != nil {
		cleanup()
		h.errHandler.GatewayError(w, r, err)
		return
	}

	// Step 5: persist application + transaction together
	application := &models.Application{
		UserID:           applicant.ID,
		FullNames:        input.FullNames,
		Nin:              input.Nin,
		Passport:         passport.SecureURL,
		PassportPublicID: passport.PublicID,
		CurrentAddress:   input.CurrentAddress,
		StateOfOrigin:    input.StateOfOrigin,
		Lga:              input.Lga,
		Status:           models.ApplicationStatusPendingPayment,
		PendingPaymentLink: sql.NullString{
			String: charge.PaymentLink,
			Valid:  true,
		},
	}

	if communityHeadDoc != nil {
		application.DocFromCommunityHead = sql.NullString{String: communityHeadDoc.SecureURL, Valid: true}
		application.DocFromCommunityHeadPublicID = sql.NullString{String: communityHeadDoc.PublicID, Valid: true}
	}

	if input.StateOfOrigin == homeState {
		application.FatherNames = sql.NullString{String: input.FatherNames, Valid: true}
		application.MotherNames = sql.NullString{String: input.MotherNames, Valid: true}
		application.NativeTown = sql.NullString{String: input.NativeTown, Valid: true}
		application.NativePoliticalWard = sql.NullString{String: input.NativePoliticalWard, Valid: true}
		application.Village = sql.NullString{String: input.Village, Valid: true}
		application.CommunityHead = sql.NullString{String: input.CommunityHead, Valid: true}
		application.CommunityHeadContact = sql.NullString{String: input.CommunityHeadContact, Valid: true}
	} else {
		application.IsResident = sql.NullBool{Bool: *input.IsResident, Valid: true}
		application.LgaOfResident = sql.NullString{String: input.LgaOfResident, Valid: true}
	}

	applicationID, err := h.db.Application().Insert(application, tx)
	if err != nil {
		cleanup()
		h.errHandler.ServerError(w, r, err)
		return
	}

	transaction := &models.Transaction{
		TransactionRef: transactionRef,
		Amount:         h.config.Payments.ApplicationFee,
		Type:           models.TransactionTypeApplication,
		UserID:         applicant.ID,
		ApplicationID:  sql.NullString{String: applicationID, Valid: true},
	}

	_, err = h.db.Transaction().Insert(transaction, tx)
	if err != nil {
		cleanup()
		h.errHandler.ServerError(w, r, err)
		return
	}

	if err = tx.Commit(); err != nil {
		cleanup()
		h.errHandler.ServerError(w, r, err)
		return
	}

	message := "Redirect to payment link"

	data := map[string]any{
		"tx_ref":       transactionRef,
		"payment_link": charge.PaymentLink,
	}

	err = response.JSONCreatedResponse(w, data, message)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

// HandleVerifyApplicationPayment is the provider redirect/webhook
// target. It is called at least once, possibly many times, possibly
// concurrently, and possibly with a forged status parameter; the row
// lock on the transaction reference plus the provider verify call keep
// it safe to replay.
func (h *applicationHandler) HandleVerifyApplicationPayment(w http.ResponseWriter, r *http.Request) {
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

	// The row lock serializes concurrent callbacks for the same
	// reference: whoever gets here second blocks until the first
	// commits, then sees the updated status.
	transaction, found, err := h.db.Transaction().FindByRefForUpdate(transactionRef, tx)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.errHandler.BadRequest(w, r, ErrWrongTransactionReference)
		return
	}

	if transaction.Type != models.TransactionTypeApplication {
		h.errHandler.BadRequest(w, r, ErrWrongTransactionReference)
		return
	}

	// A failed callback is terminal on its own; the provider is not
	// consulted again.
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

	// Idempotence guard: a transaction that has already been confirmed
	// is acknowledged as-is. No provider call, no state change, no
	// second notification.
	if transaction.Status == models.TransactionStatusSuccessful {
		message := "Transaction successful"
		err = response.JSONOkResponse(w, map[string]any{"tx_ref": transaction.TransactionRef, "status": transaction.Status}, message, nil)
		if err != nil {
			h.errHandler.ServerError(w, r, err)
		}
		return
	}

	// The callback's status parameter is only a hint. The provider's
	// verify endpoint is the authority on the success path.
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

	applied, err := h.db.Application().MarkPaymentConfirmed(transaction.ApplicationID.String, tx)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if err = tx.Commit(); err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	committed = true

	// Notification only on the attempt that actually applied the
	// transition, and only after commit. A delivery failure must never
	// undo a confirmed payment.
	if applied {
		h.helper.BackgroundTask(r, func() error {
			return h.publishAwaitingApproval(transaction.ApplicationID.String, transaction.Amount)
		})
	}

	http.Redirect(w, r, h.config.FrontendURL+"/payments/status?tx_ref="+transactionRef, http.StatusSeeOther)
}

func (h *applicationHandler) publishAwaitingApproval(applicationID string, amount decimal.Decimal) error {
	application, found, err := h.db.Application().GetOne(applicationID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("application %s not found", applicationID)
	}

	applicant, found, err := h.db.User().GetOne(application.UserID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("user %s not found", application.UserID)
	}

	event := ApplicationLifecycleEvent{
		EventID:       uuid.NewString(),
		ApplicationID: application.ID,
		FullNames:     application.FullNames,
		Email:         applicant.Email,
		Lga:           application.Lga,
		Amount:        amount,
	}

	message, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return h.producer.ProduceMessage(stream.ApplicationAwaitingApprovalTopic, string(message))
}
