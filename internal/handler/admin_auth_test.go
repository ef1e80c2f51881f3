package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cradoe/indigene/internal/errHandler"
	"github.com/cradoe/indigene/internal/helper"
	"github.com/cradoe/indigene/internal/mocks"
	"github.com/cradoe/indigene/internal/models"
	"github.com/cradoe/indigene/internal/stream"

	"github.com/cradoe/gopass"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func knownAdmin(t *testing.T) *models.Admin {
	t.Helper()

	hashedPassword, err := gopass.Hash(testPassword)
	require.NoError(t, err)

	return &models.Admin{
		ID:             "admin-1",
		FirstName:      "Funke",
		LastName:       "Adeyemi",
		Email:          "funke@lga.gov.ng",
		Role:           models.AdminRoleAdmin,
		HashedPassword: hashedPassword,
	}
}

func newAdminAuthTestHandler(adminRepo *mocks.MockAdminRepo, cache *mocks.MockCache, producer *mocks.MockProducer, wg *sync.WaitGroup) *adminHandler {
	cfg := mocks.NewMockConfig()
	errorHandler := errHandler.New("", nil, newTestLogger())

	return &adminHandler{
		db: &mocks.MockDatabase{
			AdminRepo: adminRepo,
		},
		errHandler: errorHandler,
		helper:     helper.New(&cfg.BaseURL, wg, errorHandler),
		cache:      cache,
		producer:   producer,
		config:     cfg,
	}
}

func TestHandleAdminLogin_ReturnsRole(t *testing.T) {
	admin := knownAdmin(t)

	adminRepo := new(mocks.MockAdminRepo)
	adminRepo.On("GetByEmail", admin.Email).Return(admin, true, nil)

	var wg sync.WaitGroup
	h := newAdminAuthTestHandler(adminRepo, mocks.NewMockCache(), new(mocks.MockProducer), &wg)

	rr := httptest.NewRecorder()
	h.HandleAdminLogin(rr, jsonRequest(t, "/admin/auth/login", map[string]string{
		"email":    admin.Email,
		"password": testPassword,
	}))

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	data, ok := response["data"].(map[string]any)
	require.True(t, ok)
	require.NotEmpty(t, data["auth_token"])
	require.Equal(t, models.AdminRoleAdmin, data["role"])
}

func TestHandleAdminForgotPassword_SendsOtpOnce(t *testing.T) {
	admin := knownAdmin(t)

	adminRepo := new(mocks.MockAdminRepo)
	adminRepo.On("GetByEmail", admin.Email).Return(admin, true, nil)

	producer := new(mocks.MockProducer)
	producer.On("ProduceMessage", stream.ForgotPasswordTopic, mock.Anything).Return(nil)

	mockCache := mocks.NewMockCache()

	var wg sync.WaitGroup
	h := newAdminAuthTestHandler(adminRepo, mockCache, producer, &wg)

	rr := httptest.NewRecorder()
	h.HandleAdminForgotPassword(rr, jsonRequest(t, "/admin/auth/forgot-password", map[string]string{
		"email": admin.Email,
	}))

	wg.Wait()

	require.Equal(t, http.StatusOK, rr.Code)
	producer.AssertNumberOfCalls(t, "ProduceMessage", 1)

	// a stored hash, never the raw six-digit code
	hashedOtp, err := mockCache.Get("admin:otp:" + admin.Email)
	require.NoError(t, err)
	require.NotEmpty(t, hashedOtp)
	require.NotRegexp(t, `^\d{6}$`, hashedOtp)

	// an immediate resend is throttled
	rr = httptest.NewRecorder()
	h.HandleAdminResendOtp(rr, jsonRequest(t, "/admin/auth/resend-otp", map[string]string{
		"email": admin.Email,
	}))

	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	producer.AssertNumberOfCalls(t, "ProduceMessage", 1)
}

func TestHandleAdminForgotPassword_UnknownEmailIndistinguishable(t *testing.T) {
	adminRepo := new(mocks.MockAdminRepo)
	adminRepo.On("GetByEmail", "nobody@lga.gov.ng").Return((*models.Admin)(nil), false, nil)

	producer := new(mocks.MockProducer)

	var wg sync.WaitGroup
	h := newAdminAuthTestHandler(adminRepo, mocks.NewMockCache(), producer, &wg)

	rr := httptest.NewRecorder()
	h.HandleAdminForgotPassword(rr, jsonRequest(t, "/admin/auth/forgot-password", map[string]string{
		"email": "nobody@lga.gov.ng",
	}))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "If the account exists")
	producer.AssertNotCalled(t, "ProduceMessage", mock.Anything, mock.Anything)
}

func TestHandleAdminResetPassword_Success(t *testing.T) {
	admin := knownAdmin(t)

	adminRepo := new(mocks.MockAdminRepo)
	adminRepo.On("GetByEmail", admin.Email).Return(admin, true, nil)
	adminRepo.On("UpdatePassword", admin.ID, mock.MatchedBy(func(hash string) bool {
		return hash != "" && hash != testPassword
	})).Return(nil)

	mockCache := mocks.NewMockCache()
	hashedOtp, err := gopass.Hash("123456")
	require.NoError(t, err)
	require.NoError(t, mockCache.Set("admin:otp:"+admin.Email, hashedOtp, otpValidity))

	var wg sync.WaitGroup
	h := newAdminAuthTestHandler(adminRepo, mockCache, new(mocks.MockProducer), &wg)

	rr := httptest.NewRecorder()
	h.HandleAdminResetPassword(rr, jsonRequest(t, "/admin/auth/reset-password", map[string]string{
		"email":    admin.Email,
		"otp":      "123456",
		"password": "N3w-S3cure@Pass",
	}))

	require.Equal(t, http.StatusOK, rr.Code)
	adminRepo.AssertExpectations(t)

	// the code is single use
	_, err = mockCache.Get("admin:otp:" + admin.Email)
	require.Error(t, err)
}

func TestHandleAdminResetPassword_WrongOtpBurnsCode(t *testing.T) {
	admin := knownAdmin(t)

	adminRepo := new(mocks.MockAdminRepo)
	adminRepo.On("GetByEmail", admin.Email).Return(admin, true, nil)

	mockCache := mocks.NewMockCache()
	hashedOtp, err := gopass.Hash("123456")
	require.NoError(t, err)
	require.NoError(t, mockCache.Set("admin:otp:"+admin.Email, hashedOtp, otpValidity))

	var wg sync.WaitGroup
	h := newAdminAuthTestHandler(adminRepo, mockCache, new(mocks.MockProducer), &wg)

	rr := httptest.NewRecorder()
	h.HandleAdminResetPassword(rr, jsonRequest(t, "/admin/auth/reset-password", map[string]string{
		"email":    admin.Email,
		"otp":      "000000",
		"password": "N3w-S3cure@Pass",
	}))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	adminRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything)

	// the failed attempt consumed the code, so even the right one is
	// rejected now
	rr = httptest.NewRecorder()
	h.HandleAdminResetPassword(rr, jsonRequest(t, "/admin/auth/reset-password", map[string]string{
		"email":    admin.Email,
		"otp":      "123456",
		"password": "N3w-S3cure@Pass",
	}))

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleAdminSignup_InvalidLgaRejected(t *testing.T) {
	adminRepo := new(mocks.MockAdminRepo)
	adminRepo.On("GetByEmail", "new@lga.gov.ng").Return((*models.Admin)(nil), false, nil)

	var wg sync.WaitGroup
	h := newAdminAuthTestHandler(adminRepo, mocks.NewMockCache(), new(mocks.MockProducer), &wg)

	rr := httptest.NewRecorder()
	h.HandleAdminSignup(rr, jsonRequest(t, "/admin/signup", map[string]string{
		"email":      "new@lga.gov.ng",
		"first_name": "Tunde",
		"last_name":  "Bakare",
		"lga":        "Ikeja",
	}))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	adminRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestHandleAdminSignup_InvitesWithGeneratedPassword(t *testing.T) {
	adminRepo := new(mocks.MockAdminRepo)
	adminRepo.On("GetByEmail", "new@lga.gov.ng").Return((*models.Admin)(nil), false, nil)
	adminRepo.On("Insert", mock.MatchedBy(func(a *models.Admin) bool {
		return a.Role == models.AdminRoleAdmin && a.Lga.String == "Abeokuta South" && a.HashedPassword != ""
	}), mock.Anything).Return("admin-2", nil)

	producer := new(mocks.MockProducer)
	producer.On("ProduceMessage", stream.AdminInvitationTopic, mock.Anything).Return(nil)

	var wg sync.WaitGroup
	h := newAdminAuthTestHandler(adminRepo, mocks.NewMockCache(), producer, &wg)

	rr := httptest.NewRecorder()
	h.HandleAdminSignup(rr, jsonRequest(t, "/admin/signup", map[string]string{
		"email":      "new@lga.gov.ng",
		"first_name": "Tunde",
		"last_name":  "Bakare",
		"lga":        "Abeokuta South",
	}))

	wg.Wait()

	require.Equal(t, http.StatusCreated, rr.Code)
	adminRepo.AssertExpectations(t)
	producer.AssertExpectations(t)
}
