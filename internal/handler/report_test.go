package handler

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cradoe/indigene/internal/context"
	"github.com/cradoe/indigene/internal/errHandler"
	"github.com/cradoe/indigene/internal/helper"
	"github.com/cradoe/indigene/internal/mocks"
	"github.com/cradoe/indigene/internal/models"
	"github.com/cradoe/indigene/internal/repository"
	"github.com/cradoe/indigene/internal/stream"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func adminListRequest(t *testing.T, admin *models.Admin, query string) *http.Request {
	t.Helper()

	req := httptest.NewRequest("GET", "/admin/applications"+query, nil)
	return context.ContextSetAuthenticatedAdmin(req, admin)
}

func newReportTestHandler(applicationRepo *mocks.MockApplicationRepo, producer *mocks.MockProducer, wg *sync.WaitGroup) *reportHandler {
	cfg := mocks.NewMockConfig()
	errorHandler := errHandler.New("", nil, newTestLogger())

	return &reportHandler{
		db: &mocks.MockDatabase{
			ApplicationRepo: applicationRepo,
		},
		errHandler: errorHandler,
		helper:     helper.New(&cfg.BaseURL, wg, errorHandler),
		producer:   producer,
	}
}

func TestHandleListApplications_NameShortCircuitsFilters(t *testing.T) {
	applicationRepo := new(mocks.MockApplicationRepo)
	applicationRepo.On("SearchByName", "Adewale", "Abeokuta South").Return([]models.Application{
		*pendingApplication(),
	}, nil)

	var wg sync.WaitGroup
	h := newReportTestHandler(applicationRepo, new(mocks.MockProducer), &wg)

	// status and pagination are present but the name filter wins
	req := adminListRequest(t, lgaAdmin("Abeokuta South"), "?name=Adewale&status=approved&page=3&limit=5")
	rr := httptest.NewRecorder()

	h.HandleListApplications(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	applicationRepo.AssertNotCalled(t, "List", mock.Anything)
}

func TestHandleListApplications_UnknownStatusRejected(t *testing.T) {
	applicationRepo := new(mocks.MockApplicationRepo)

	var wg sync.WaitGroup
	h := newReportTestHandler(applicationRepo, new(mocks.MockProducer), &wg)

	req := adminListRequest(t, lgaAdmin("Abeokuta South"), "?status=archived")
	rr := httptest.NewRecorder()

	h.HandleListApplications(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	applicationRepo.AssertNotCalled(t, "List", mock.Anything)
}

func TestHandleListApplications_MalformedDateRejected(t *testing.T) {
	applicationRepo := new(mocks.MockApplicationRepo)

	var wg sync.WaitGroup
	h := newReportTestHandler(applicationRepo, new(mocks.MockProducer), &wg)

	req := adminListRequest(t, lgaAdmin("Abeokuta South"), "?start_date=01-01-2026")
	rr := httptest.NewRecorder()

	h.HandleListApplications(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	applicationRepo.AssertNotCalled(t, "List", mock.Anything)
}

func TestHandleListApplications_ScopedAndPaginated(t *testing.T) {
	applicationRepo := new(mocks.MockApplicationRepo)
	applicationRepo.On("List", mock.MatchedBy(func(f *repository.ApplicationFilter) bool {
		endOk := f.EndDate != nil && f.EndDate.Hour() == 23 && f.EndDate.Minute() == 59
		return f.Lga == "Abeokuta South" &&
			f.Status == models.ApplicationStatusApproved &&
			f.StartDate != nil && endOk &&
			f.Limit == 5 && f.Offset == 10
	})).Return([]models.Application{*pendingApplication()}, 37, nil)

	var wg sync.WaitGroup
	h := newReportTestHandler(applicationRepo, new(mocks.MockProducer), &wg)

	req := adminListRequest(t, lgaAdmin("Abeokuta South"), "?status=approved&start_date=2026-01-01&end_date=2026-01-31&page=3&limit=5")
	rr := httptest.NewRecorder()

	h.HandleListApplications(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"total": 37`)
	applicationRepo.AssertExpectations(t)
}

func TestHandleListApplications_SuperAdminSeesEverything(t *testing.T) {
	applicationRepo := new(mocks.MockApplicationRepo)
	applicationRepo.On("List", mock.MatchedBy(func(f *repository.ApplicationFilter) bool {
		return f.Lga == ""
	})).Return([]models.Application{}, 0, nil)

	var wg sync.WaitGroup
	h := newReportTestHandler(applicationRepo, new(mocks.MockProducer), &wg)

	superAdmin := &models.Admin{ID: "admin-0", Role: models.AdminRoleSuperAdmin}
	req := adminListRequest(t, superAdmin, "")
	rr := httptest.NewRecorder()

	h.HandleListApplications(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	applicationRepo.AssertExpectations(t)
}

func TestHandleDownloadReport_RequiresEmail(t *testing.T) {
	producer := new(mocks.MockProducer)

	var wg sync.WaitGroup
	h := newReportTestHandler(new(mocks.MockApplicationRepo), producer, &wg)

	req := adminListRequest(t, lgaAdmin("Abeokuta South"), "?status=approved")
	rr := httptest.NewRecorder()

	h.HandleDownloadReport(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	producer.AssertNotCalled(t, "ProduceMessage", mock.Anything, mock.Anything)
}

func TestHandleDownloadReport_EmitsReportEvent(t *testing.T) {
	producer := new(mocks.MockProducer)
	producer.On("ProduceMessage", stream.ApplicationReportTopic, mock.Anything).Return(nil)

	var wg sync.WaitGroup
	h := newReportTestHandler(new(mocks.MockApplicationRepo), producer, &wg)

	req := adminListRequest(t, lgaAdmin("Abeokuta South"), "?email=officer@example.com&status=approved")
	rr := httptest.NewRecorder()

	h.HandleDownloadReport(rr, req)

	wg.Wait()

	require.Equal(t, http.StatusOK, rr.Code)
	producer.AssertExpectations(t)
}

func TestHandleSummary(t *testing.T) {
	applicationRepo := new(mocks.MockApplicationRepo)
	applicationRepo.On("StatusCounts", "Abeokuta South").Return(&repository.StatusCounts{
		Total: 10, Approved: 4, Rejected: 2, Pending: 4,
	}, nil)
	applicationRepo.On("DailyStatusCounts", "Abeokuta South", mock.MatchedBy(func(ts time.Time) bool {
		return ts.Hour() == 0 && ts.Minute() == 0 && ts.Second() == 0
	}), mock.Anything).Return(&repository.StatusCounts{
		Total: 3, Approved: 1, Rejected: 1, Pending: 1,
	}, nil)

	var wg sync.WaitGroup
	h := newReportTestHandler(applicationRepo, new(mocks.MockProducer), &wg)

	req := adminListRequest(t, lgaAdmin("Abeokuta South"), "/summary")
	rr := httptest.NewRecorder()

	h.HandleSummary(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"lifetime"`)
	require.Contains(t, rr.Body.String(), `"today"`)
	applicationRepo.AssertExpectations(t)
}
