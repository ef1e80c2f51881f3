package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cradoe/indigene/internal/context"
	"github.com/cradoe/indigene/internal/errHandler"
	"github.com/cradoe/indigene/internal/file"
	"github.com/cradoe/indigene/internal/gateway"
	"github.com/cradoe/indigene/internal/helper"
	"github.com/cradoe/indigene/internal/mocks"
	"github.com/cradoe/indigene/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testPassportURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUg=="

func validOgunApplicationBody() map[string]any {
	return map[string]any{
		"full_names":             "Adewale Johnson",
		"nin":                    "12345678901",
		"father_names":           "Babatunde Johnson",
		"mother_names":           "Folake Johnson",
		"native_town":            "Ake",
		"native_political_ward":  "Ward 4",
		"village":                "Itoko",
		"community_head":         "Chief Adebayo",
		"community_head_contact": "+2348012345678",
		"current_address":        "12 Ibara Road, Abeokuta",
		"state_of_origin":        "Ogun",
		"lga":                    "Abeokuta South",
		"passport":               testPassportURI,
	}
}

func applicantRequest(t *testing.T, body map[string]any) *http.Request {
	t.Helper()

	js, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/applications", bytes.NewBuffer(js))
	req.Header.Set("Content-Type", "application/json")

	return context.ContextSetAuthenticatedUser(req, &models.User{
		ID:          "user-1",
		FirstName:   "Adewale",
		LastName:    "Johnson",
		Email:       "wale@example.com",
		PhoneNumber: "+2348012345678",
	})
}

func TestHandleCreateApplication_Success(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()

	applicationRepo := new(mocks.MockApplicationRepo)
	applicationRepo.On("ExistsNonTerminalWithNin", "12345678901", mock.Anything).Return(false, nil)
	applicationRepo.On("Insert", mock.Anything, mock.Anything).Return("app-1", nil)

	transactionRepo := new(mocks.MockTransactionRepo)
	transactionRepo.On("Insert", mock.Anything, mock.Anything).Return("txn-1", nil)

	uploader := new(mocks.MockUploader)
	uploader.On("UploadBase64", mock.Anything, testPassportURI, mock.Anything).Return(&file.UploadedFile{
		SecureURL: "https://cdn.example.com/passport.png",
		PublicID:  "passport-1",
	}, nil)

	mockGateway := new(mocks.MockGateway)
	mockGateway.On("Initiate", mock.Anything, mock.Anything).Return(&gateway.Charge{
		PaymentLink: "https://pay.example.com/abc",
	}, nil)

	cfg := mocks.NewMockConfig()
	errorHandler := errHandler.New("", nil, newTestLogger())
	var wg sync.WaitGroup
	helperRepo := helper.New(&cfg.BaseURL, &wg, errorHandler)

	h := &applicationHandler{
		db: &mocks.MockDatabase{
			ApplicationRepo: applicationRepo,
			TransactionRepo: transactionRepo,
			SQL:             db,
		},
		errHandler: errorHandler,
		helper:     helperRepo,
		uploader:   uploader,
		gateway:    mockGateway,
		producer:   new(mocks.MockProducer),
		config:     cfg,
	}

	rr := httptest.NewRecorder()
	h.HandleCreateApplication(rr, applicantRequest(t, validOgunApplicationBody()))

	require.Equal(t, http.StatusCreated, rr.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))

	data, ok := response["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "https://pay.example.com/abc", data["payment_link"])
	require.NotEmpty(t, data["tx_ref"])

	applicationRepo.AssertExpectations(t)
	transactionRepo.AssertExpectations(t)
	require.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestHandleCreateApplication_MissingOriginFieldForIndigene(t *testing.T) {
	body := validOgunApplicationBody()
	delete(body, "community_head_contact")

	uploader := new(mocks.MockUploader)
	mockGateway := new(mocks.MockGateway)
	transactionRepo := new(mocks.MockTransactionRepo)

	cfg := mocks.NewMockConfig()
	errorHandler := errHandler.New("", nil, newTestLogger())
	var wg sync.WaitGroup
	helperRepo := helper.New(&cfg.BaseURL, &wg, errorHandler)

	h := &applicationHandler{
		db: &mocks.MockDatabase{
			TransactionRepo: transactionRepo,
		},
		errHandler: errorHandler,
		helper:     helperRepo,
		uploader:   uploader,
		gateway:    mockGateway,
		producer:   new(mocks.MockProducer),
		config:     cfg,
	}

	rr := httptest.NewRecorder()
	h.HandleCreateApplication(rr, applicantRequest(t, body))

	// validation fails before any upload, charge or insert happens
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	uploader.AssertNotCalled(t, "UploadBase64", mock.Anything, mock.Anything, mock.Anything)
	mockGateway.AssertNotCalled(t, "Initiate", mock.Anything, mock.Anything)
	transactionRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestHandleCreateApplication_NonIndigeneRequiresResidency(t *testing.T) {
	body := validOgunApplicationBody()
	body["state_of_origin"] = "Lagos"
	delete(body, "is_resident")
	delete(body, "lga_of_resident")

	cfg := mocks.NewMockConfig()
	errorHandler := errHandler.New("", nil, newTestLogger())
	var wg sync.WaitGroup
	helperRepo := helper.New(&cfg.BaseURL, &wg, errorHandler)

	h := &applicationHandler{
		db:         &mocks.MockDatabase{},
		errHandler: errorHandler,
		helper:     helperRepo,
		uploader:   new(mocks.MockUploader),
		gateway:    new(mocks.MockGateway),
		producer:   new(mocks.MockProducer),
		config:     cfg,
	}

	rr := httptest.NewRecorder()
	h.HandleCreateApplication(rr, applicantRequest(t, body))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestHandleCreateApplication_DuplicateNinConflict(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlMock.ExpectBegin()
	sqlMock.ExpectRollback()

	applicationRepo := new(mocks.MockApplicationRepo)
	applicationRepo.On("ExistsNonTerminalWithNin", "12345678901", mock.Anything).Return(true, nil)

	uploader := new(mocks.MockUploader)

	cfg := mocks.NewMockConfig()
	errorHandler := errHandler.New("", nil, newTestLogger())
	var wg sync.WaitGroup
	helperRepo := helper.New(&cfg.BaseURL, &wg, errorHandler)

	h := &applicationHandler{
		db: &mocks.MockDatabase{
			ApplicationRepo: applicationRepo,
			SQL:             db,
		},
		errHandler: errorHandler,
		helper:     helperRepo,
		uploader:   uploader,
		gateway:    new(mocks.MockGateway),
		producer:   new(mocks.MockProducer),
		config:     cfg,
	}

	rr := httptest.NewRecorder()
	h.HandleCreateApplication(rr, applicantRequest(t, validOgunApplicationBody()))

	require.Equal(t, http.StatusConflict, rr.Code)
	uploader.AssertNotCalled(t, "UploadBase64", mock.Anything, mock.Anything, mock.Anything)
	require.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestHandleCreateApplication_GatewayFailureRollsBack(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlMock.ExpectBegin()
	sqlMock.ExpectRollback()

	applicationRepo := new(mocks.MockApplicationRepo)
	applicationRepo.On("ExistsNonTerminalWithNin", "12345678901", mock.Anything).Return(false, nil)

	uploader := new(mocks.MockUploader)
	uploader.On("UploadBase64", mock.Anything, testPassportURI, mock.Anything).Return(&file.UploadedFile{
		SecureURL: "https://cdn.example.com/passport.png",
		PublicID:  "passport-1",
	}, nil)
	uploader.On("Delete", mock.Anything, "passport-1").Return(nil)

	mockGateway := new(mocks.MockGateway)
	mockGateway.On("Initiate", mock.Anything, mock.Anything).Return(nil, gateway.ErrGateway)

	transactionRepo := new(mocks.MockTransactionRepo)

	cfg := mocks.NewMockConfig()
	errorHandler := errHandler.New("", nil, newTestLogger())
	var wg sync.WaitGroup
	helperRepo := helper.New(&cfg.BaseURL, &wg, errorHandler)

	h := &applicationHandler{
		db: &mocks.MockDatabase{
			ApplicationRepo: applicationRepo,
			TransactionRepo: transactionRepo,
			SQL:             db,
		},
		errHandler: errorHandler,
		helper:     helperRepo,
		uploader:   uploader,
		gateway:    mockGateway,
		producer:   new(mocks.MockProducer),
		config:     cfg,
	}

	rr := httptest.NewRecorder()
	h.HandleCreateApplication(rr, applicantRequest(t, validOgunApplicationBody()))

	wg.Wait()

	// a generic 500; nothing persisted, uploaded evidence cleaned up
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	applicationRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	transactionRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	uploader.AssertCalled(t, "Delete", mock.Anything, "passport-1")
	require.NoError(t, sqlMock.ExpectationsWereMet())
}
