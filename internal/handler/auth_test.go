package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cradoe/indigene/internal/errHandler"
	"github.com/cradoe/indigene/internal/mocks"
	"github.com/cradoe/indigene/internal/models"

	"github.com/cradoe/gopass"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testPassword = "S3cure@Passw0rd"

func jsonRequest(t *testing.T, target string, body map[string]string) *http.Request {
	t.Helper()

	js, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", target, bytes.NewBuffer(js))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func newAuthTestHandler(userRepo *mocks.MockUserRepo) *authHandler {
	return &authHandler{
		db: &mocks.MockDatabase{
			UserRepo: userRepo,
		},
		errHandler: errHandler.New("", nil, newTestLogger()),
		config:     mocks.NewMockConfig(),
	}
}

func TestHandleAuthRegister_Success(t *testing.T) {
	userRepo := new(mocks.MockUserRepo)
	userRepo.On("GetByEmail", "wale@example.com").Return((*models.User)(nil), false, nil)
	userRepo.On("CheckIfPhoneNumberExist", "+2348012345678").Return(false, nil)
	userRepo.On("Insert", mock.MatchedBy(func(u *models.User) bool {
		// the password must never be stored as given
		return u.Email == "wale@example.com" && u.HashedPassword != testPassword && u.HashedPassword != ""
	}), mock.Anything).Return("user-1", nil)

	h := newAuthTestHandler(userRepo)

	rr := httptest.NewRecorder()
	h.HandleAuthRegister(rr, jsonRequest(t, "/auth/register", map[string]string{
		"email":        "wale@example.com",
		"password":     testPassword,
		"first_name":   "Adewale",
		"last_name":    "Johnson",
		"phone_number": "+2348012345678",
	}))

	require.Equal(t, http.StatusCreated, rr.Code)
	userRepo.AssertExpectations(t)
}

func TestHandleAuthRegister_WeakPassword(t *testing.T) {
	userRepo := new(mocks.MockUserRepo)

	h := newAuthTestHandler(userRepo)

	rr := httptest.NewRecorder()
	h.HandleAuthRegister(rr, jsonRequest(t, "/auth/register", map[string]string{
		"email":        "wale@example.com",
		"password":     "abc",
		"first_name":   "Adewale",
		"last_name":    "Johnson",
		"phone_number": "+2348012345678",
	}))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	userRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestHandleAuthRegister_DuplicateEmail(t *testing.T) {
	userRepo := new(mocks.MockUserRepo)
	userRepo.On("GetByEmail", "wale@example.com").Return(&models.User{ID: "user-1"}, true, nil)
	userRepo.On("CheckIfPhoneNumberExist", "+2348012345678").Return(false, nil)

	h := newAuthTestHandler(userRepo)

	rr := httptest.NewRecorder()
	h.HandleAuthRegister(rr, jsonRequest(t, "/auth/register", map[string]string{
		"email":        "wale@example.com",
		"password":     testPassword,
		"first_name":   "Adewale",
		"last_name":    "Johnson",
		"phone_number": "+2348012345678",
	}))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Contains(t, rr.Body.String(), "Email is already in use")
	userRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestHandleAuthLogin_Success(t *testing.T) {
	hashedPassword, err := gopass.Hash(testPassword)
	require.NoError(t, err)

	userRepo := new(mocks.MockUserRepo)
	userRepo.On("GetByEmail", "wale@example.com").Return(&models.User{
		ID:             "user-1",
		Email:          "wale@example.com",
		HashedPassword: hashedPassword,
	}, true, nil)

	h := newAuthTestHandler(userRepo)

	rr := httptest.NewRecorder()
	h.HandleAuthLogin(rr, jsonRequest(t, "/auth/login", map[string]string{
		"email":    "wale@example.com",
		"password": testPassword,
	}))

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	data, ok := response["data"].(map[string]any)
	require.True(t, ok)
	require.NotEmpty(t, data["auth_token"])
	require.NotEmpty(t, data["token_expiry"])
}

func TestHandleAuthLogin_WrongPassword(t *testing.T) {
	hashedPassword, err := gopass.Hash(testPassword)
	require.NoError(t, err)

	userRepo := new(mocks.MockUserRepo)
	userRepo.On("GetByEmail", "wale@example.com").Return(&models.User{
		ID:             "user-1",
		Email:          "wale@example.com",
		HashedPassword: hashedPassword,
	}, true, nil)

	h := newAuthTestHandler(userRepo)

	rr := httptest.NewRecorder()
	h.HandleAuthLogin(rr, jsonRequest(t, "/auth/login", map[string]string{
		"email":    "wale@example.com",
		"password": "N0t-the-password!",
	}))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Contains(t, rr.Body.String(), "Incorrect email/password")
}

func TestHandleAuthLogin_UnknownEmail(t *testing.T) {
	userRepo := new(mocks.MockUserRepo)
	userRepo.On("GetByEmail", "nobody@example.com").Return((*models.User)(nil), false, nil)

	h := newAuthTestHandler(userRepo)

	rr := httptest.NewRecorder()
	h.HandleAuthLogin(rr, jsonRequest(t, "/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": testPassword,
	}))

	// the same message as a wrong password, so the two cases are
	// indistinguishable to a caller
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Contains(t, rr.Body.String(), "Incorrect email/password")
}
