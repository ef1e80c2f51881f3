package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cradoe/indigene/internal/context"
	"github.com/cradoe/indigene/internal/errHandler"
	"github.com/cradoe/indigene/internal/helper"
	"github.com/cradoe/indigene/internal/mocks"
	"github.com/cradoe/indigene/internal/models"
	"github.com/cradoe/indigene/internal/stream"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func pendingApplication() *models.Application {
	return &models.Application{
		ID:        "app-1",
		UserID:    "user-1",
		FullNames: "Adewale Johnson",
		Nin:       "12345678901",
		Lga:       "Abeokuta South",
		Status:    models.ApplicationStatusPending,
	}
}

func decisionRequest(t *testing.T, admin *models.Admin, action string) *http.Request {
	t.Helper()

	js, err := json.Marshal(map[string]string{"action": action})
	require.NoError(t, err)

	req := httptest.NewRequest("PATCH", "/admin/applications/app-1/decision", bytes.NewBuffer(js))
	req.SetPathValue("id", "app-1")
	req.Header.Set("Content-Type", "application/json")

	return context.ContextSetAuthenticatedAdmin(req, admin)
}

func lgaAdmin(lga string) *models.Admin {
	return &models.Admin{
		ID:   "admin-1",
		Role: models.AdminRoleAdmin,
		Lga:  sql.NullString{String: lga, Valid: true},
	}
}

func TestHandleDecideApplication_ApproveCreatesCertificate(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()

	application := pendingApplication()

	applicationRepo := new(mocks.MockApplicationRepo)
	applicationRepo.On("GetOneForUpdate", "app-1", mock.Anything).Return(application, true, nil)
	applicationRepo.On("Decide", "app-1", models.ApplicationStatusApproved, mock.Anything, mock.Anything).Return(nil)

	certificateRepo := new(mocks.MockCertificateRepo)
	certificateRepo.On("ExistsWithRef", mock.Anything).Return(false, nil)
	certificateRepo.On("Insert", mock.MatchedBy(func(c *models.Certificate) bool {
		return c.ApplicationID == "app-1" && c.UserID == "user-1" && c.CertificateRef != ""
	}), mock.Anything).Return("cert-1", nil)

	userRepo := new(mocks.MockUserRepo)
	userRepo.On("GetOne", "user-1").Return(&models.User{ID: "user-1", Email: "wale@example.com"}, true, nil)

	producer := new(mocks.MockProducer)
	producer.On("ProduceMessage", stream.ApplicationApprovedTopic, mock.Anything).Return(nil)

	cfg := mocks.NewMockConfig()
	errorHandler := errHandler.New("", nil, newTestLogger())
	var wg sync.WaitGroup
	helperRepo := helper.New(&cfg.BaseURL, &wg, errorHandler)

	h := &adminHandler{
		db: &mocks.MockDatabase{
			ApplicationRepo: applicationRepo,
			CertificateRepo: certificateRepo,
			UserRepo:        userRepo,
			SQL:             db,
		},
		errHandler: errorHandler,
		helper:     helperRepo,
		producer:   producer,
		config:     cfg,
	}

	rr := httptest.NewRecorder()
	h.HandleDecideApplication(rr, decisionRequest(t, lgaAdmin("Abeokuta South"), "approve"))

	wg.Wait()

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	data, ok := response["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, models.ApplicationStatusApproved, data["status"])
	require.NotEmpty(t, data["certificate_ref"])

	applicationRepo.AssertExpectations(t)
	certificateRepo.AssertExpectations(t)
	producer.AssertExpectations(t)
	require.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestHandleDecideApplication_RejectEmitsRejectedEvent(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()

	application := pendingApplication()

	applicationRepo := new(mocks.MockApplicationRepo)
	applicationRepo.On("GetOneForUpdate", "app-1", mock.Anything).Return(application, true, nil)
	applicationRepo.On("Decide", "app-1", models.ApplicationStatusRejected, mock.Anything, mock.Anything).Return(nil)

	certificateRepo := new(mocks.MockCertificateRepo)

	userRepo := new(mocks.MockUserRepo)
	userRepo.On("GetOne", "user-1").Return(&models.User{ID: "user-1", Email: "wale@example.com"}, true, nil)

	producer := new(mocks.MockProducer)
	producer.On("ProduceMessage", stream.ApplicationRejectedTopic, mock.Anything).Return(nil)

	cfg := mocks.NewMockConfig()
	errorHandler := errHandler.New("", nil, newTestLogger())
	var wg sync.WaitGroup
	helperRepo := helper.New(&cfg.BaseURL, &wg, errorHandler)

	h := &adminHandler{
		db: &mocks.MockDatabase{
			ApplicationRepo: applicationRepo,
			CertificateRepo: certificateRepo,
			UserRepo:        userRepo,
			SQL:             db,
		},
		errHandler: errorHandler,
		helper:     helperRepo,
		producer:   producer,
		config:     cfg,
	}

	rr := httptest.NewRecorder()
	h.HandleDecideApplication(rr, decisionRequest(t, lgaAdmin("Abeokuta South"), "reject"))

	wg.Wait()

	require.Equal(t, http.StatusOK, rr.Code)
	certificateRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	producer.AssertExpectations(t)
	require.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestHandleDecideApplication_OutsideJurisdiction(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlMock.ExpectBegin()
	sqlMock.ExpectRollback()

	applicationRepo := new(mocks.MockApplicationRepo)
	applicationRepo.On("GetOneForUpdate", "app-1", mock.Anything).Return(pendingApplication(), true, nil)

	cfg := mocks.NewMockConfig()
	errorHandler := errHandler.New("", nil, newTestLogger())
	var wg sync.WaitGroup
	helperRepo := helper.New(&cfg.BaseURL, &wg, errorHandler)

	h := &adminHandler{
		db: &mocks.MockDatabase{
			ApplicationRepo: applicationRepo,
			SQL:             db,
		},
		errHandler: errorHandler,
		helper:     helperRepo,
		producer:   new(mocks.MockProducer),
		config:     cfg,
	}

	rr := httptest.NewRecorder()
	h.HandleDecideApplication(rr, decisionRequest(t, lgaAdmin("Ijebu Ode"), "approve"))

	require.Equal(t, http.StatusForbidden, rr.Code)
	applicationRepo.AssertNotCalled(t, "Decide", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	require.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestHandleDecideApplication_AlreadyDecidedConflict(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlMock.ExpectBegin()
	sqlMock.ExpectRollback()

	application := pendingApplication()
	application.Status = models.ApplicationStatusApproved

	applicationRepo := new(mocks.MockApplicationRepo)
	applicationRepo.On("GetOneForUpdate", "app-1", mock.Anything).Return(application, true, nil)

	cfg := mocks.NewMockConfig()
	errorHandler := errHandler.New("", nil, newTestLogger())
	var wg sync.WaitGroup
	helperRepo := helper.New(&cfg.BaseURL, &wg, errorHandler)

	h := &adminHandler{
		db: &mocks.MockDatabase{
			ApplicationRepo: applicationRepo,
			SQL:             db,
		},
		errHandler: errorHandler,
		helper:     helperRepo,
		producer:   new(mocks.MockProducer),
		config:     cfg,
	}

	rr := httptest.NewRecorder()
	h.HandleDecideApplication(rr, decisionRequest(t, lgaAdmin("Abeokuta South"), "reject"))

	require.Equal(t, http.StatusConflict, rr.Code)
	applicationRepo.AssertNotCalled(t, "Decide", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	require.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestHandleDecideApplication_UnpaidApplicationConflict(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlMock.ExpectBegin()
	sqlMock.ExpectRollback()

	application := pendingApplication()
	application.Status = models.ApplicationStatusPendingPayment

	applicationRepo := new(mocks.MockApplicationRepo)
	applicationRepo.On("GetOneForUpdate", "app-1", mock.Anything).Return(application, true, nil)

	cfg := mocks.NewMockConfig()
	errorHandler := errHandler.New("", nil, newTestLogger())
	var wg sync.WaitGroup
	helperRepo := helper.New(&cfg.BaseURL, &wg, errorHandler)

	h := &adminHandler{
		db: &mocks.MockDatabase{
			ApplicationRepo: applicationRepo,
			SQL:             db,
		},
		errHandler: errorHandler,
		helper:     helperRepo,
		producer:   new(mocks.MockProducer),
		config:     cfg,
	}

	rr := httptest.NewRecorder()
	h.HandleDecideApplication(rr, decisionRequest(t, lgaAdmin("Abeokuta South"), "approve"))

	require.Equal(t, http.StatusConflict, rr.Code)
	require.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestHandleDecideApplication_SuperAdminUnrestricted(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()

	application := pendingApplication()

	applicationRepo := new(mocks.MockApplicationRepo)
	applicationRepo.On("GetOneForUpdate", "app-1", mock.Anything).Return(application, true, nil)
	applicationRepo.On("Decide", "app-1", models.ApplicationStatusRejected, mock.Anything, mock.Anything).Return(nil)

	userRepo := new(mocks.MockUserRepo)
	userRepo.On("GetOne", "user-1").Return(&models.User{ID: "user-1", Email: "wale@example.com"}, true, nil)

	producer := new(mocks.MockProducer)
	producer.On("ProduceMessage", stream.ApplicationRejectedTopic, mock.Anything).Return(nil)

	cfg := mocks.NewMockConfig()
	errorHandler := errHandler.New("", nil, newTestLogger())
	var wg sync.WaitGroup
	helperRepo := helper.New(&cfg.BaseURL, &wg, errorHandler)

	superAdmin := &models.Admin{ID: "admin-0", Role: models.AdminRoleSuperAdmin}

	h := &adminHandler{
		db: &mocks.MockDatabase{
			ApplicationRepo: applicationRepo,
			UserRepo:        userRepo,
			SQL:             db,
		},
		errHandler: errorHandler,
		helper:     helperRepo,
		producer:   producer,
		config:     cfg,
	}

	rr := httptest.NewRecorder()
	h.HandleDecideApplication(rr, decisionRequest(t, superAdmin, "reject"))

	wg.Wait()

	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, sqlMock.ExpectationsWereMet())
}
