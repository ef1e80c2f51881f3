package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cradoe/indigene/internal/errHandler"

	"github.com/stretchr/testify/require"
)

func newUtilityTestHandler() *utilityHandler {
	return NewUtilityHandler(errHandler.New("", nil, newTestLogger()))
}

func TestHandleListStates(t *testing.T) {
	h := newUtilityTestHandler()

	rr := httptest.NewRecorder()
	h.HandleListStates(rr, httptest.NewRequest("GET", "/states", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "Ogun")
	require.Contains(t, rr.Body.String(), "FCT")
}

func TestHandleListLgas(t *testing.T) {
	h := newUtilityTestHandler()

	req := httptest.NewRequest("GET", "/states/Ogun/lgas", nil)
	req.SetPathValue("state", "Ogun")

	rr := httptest.NewRecorder()
	h.HandleListLgas(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "Abeokuta South")
	require.Contains(t, rr.Body.String(), "Ijebu North")
}

func TestHandleListLgas_UnknownState(t *testing.T) {
	h := newUtilityTestHandler()

	req := httptest.NewRequest("GET", "/states/Atlantis/lgas", nil)
	req.SetPathValue("state", "Atlantis")

	rr := httptest.NewRecorder()
	h.HandleListLgas(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
}
