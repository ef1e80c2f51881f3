package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cradoe/indigene/internal/context"
	"github.com/cradoe/indigene/internal/errHandler"
	"github.com/cradoe/indigene/internal/helper"
	"github.com/cradoe/indigene/internal/models"
	"github.com/cradoe/indigene/internal/repository"
	"github.com/cradoe/indigene/internal/response"
	"github.com/cradoe/indigene/internal/stream"
	"github.com/cradoe/indigene/internal/validator"

	"github.com/google/uuid"
)

var (
	ErrUnknownStatusFilter = errors.New("unknown status filter")
	ErrMalformedDateFilter = errors.New("dates must be in YYYY-MM-DD format")
	ErrEmailRequired       = errors.New("a valid email address is required")
)

type reportHandler struct {
	db         repository.Database
	errHandler *errHandler.ErrorHandler
	helper     *helper.HelperRepository
	producer   stream.Producer
}

func NewReportHandler(db repository.Database, errHandler *errHandler.ErrorHandler, helper *helper.HelperRepository, producer stream.Producer) *reportHandler {
	return &reportHandler{
		db:         db,
		errHandler: errHandler,
		helper:     helper,
		producer:   producer,
	}
}

// adminScopeLga translates the caller's role into a listing scope. An
// empty string means unrestricted.
func adminScopeLga(admin *models.Admin) string {
	if admin.Role == models.AdminRoleSuperAdmin {
		return ""
	}
	return admin.Lga.String
}

// HandleSummary returns lifetime counts plus the counts for decisions
// stamped today, both scoped to the caller's jurisdiction.
func (h *reportHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	admin := context.ContextGetAuthenticatedAdmin(r)
	lga := adminScopeLga(admin)

	lifetime, err := h.db.Application().StatusCounts(lga)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24*time.Hour - time.Millisecond)

	today, err := h.db.Application().DailyStatusCounts(lga, dayStart, dayEnd)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	data := map[string]any{
		"lifetime": lifetime,
		"today":    today,
	}
	err = response.JSONOkResponse(w, data, "Applications summary", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

// parseDateFilters validates and parses strict YYYY-MM-DD start/end
// filters. The end date is pushed to the last instant of its day so a
// single-day range still matches decisions made during that day.
func parseDateFilters(startDate, endDate string) (start, end *time.Time, err error) {
	if startDate != "" {
		if !validator.Matches(startDate, validator.RgxDate) {
			return nil, nil, ErrMalformedDateFilter
		}
		parsed, perr := time.Parse("2006-01-02", startDate)
		if perr != nil {
			return nil, nil, ErrMalformedDateFilter
		}
		start = &parsed
	}

	if endDate != "" {
		if !validator.Matches(endDate, validator.RgxDate) {
			return nil, nil, ErrMalformedDateFilter
		}
		parsed, perr := time.Parse("2006-01-02", endDate)
		if perr != nil {
			return nil, nil, ErrMalformedDateFilter
		}
		parsed = parsed.Add(24*time.Hour - time.Millisecond)
		end = &parsed
	}

	return start, end, nil
}

// HandleListApplications serves the admin dashboard listing. A name
// filter short-circuits everything else, pagination included; that is
// long-standing dashboard behavior the frontend depends on.
func (h *reportHandler) HandleListApplications(w http.ResponseWriter, r *http.Request) {
	admin := context.ContextGetAuthenticatedAdmin(r)
	lga := adminScopeLga(admin)

	queryValues := retrieveUrlQueryValues(r)

	if queryValues.Name != "" {
		applications, err := h.db.Application().SearchByName(queryValues.Name, lga)
		if err != nil {
			h.errHandler.ServerError(w, r, err)
			return
		}

		data := make([]*ApplicationResponseData, 0, len(applications))
		for i := range applications {
			data = append(data, newApplicationResponseData(&applications[i]))
		}

		payload := map[string]any{
			"total": len(applications),
			"data":  data,
		}
		err = response.JSONOkResponse(w, payload, "Applications retrieved", nil)
		if err != nil {
			h.errHandler.ServerError(w, r, err)
		}
		return
	}

	if queryValues.Status != "" && !models.IsApplicationStatus(queryValues.Status) {
		h.errHandler.BadRequest(w, r, ErrUnknownStatusFilter)
		return
	}

	startDate, endDate, err := parseDateFilters(r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	filter := &repository.ApplicationFilter{
		Lga:       lga,
		Status:    queryValues.Status,
		StartDate: startDate,
		EndDate:   endDate,
		Limit:     queryValues.Limit,
		Offset:    queryValues.Offset,
	}

	applications, total, err := h.db.Application().List(filter)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	data := make([]*ApplicationResponseData, 0, len(applications))
	for i := range applications {
		data = append(data, newApplicationResponseData(&applications[i]))
	}

	// an email in the query doubles as an async export request
	if queryValues.Email != "" && validator.IsEmail(queryValues.Email) {
		h.emitReportRequest(r, queryValues.Email, lga, queryValues.Status,
			r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	}

	payload := map[string]any{
		"total": total,
		"page":  queryValues.Page,
		"limit": queryValues.Limit,
		"data":  data,
	}
	err = response.JSONOkResponse(w, payload, "Applications retrieved", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

// HandleDownloadReport queues a CSV export. The worker re-runs the
// filtered query and emails the file, so large exports never hold an
// HTTP connection open.
func (h *reportHandler) HandleDownloadReport(w http.ResponseWriter, r *http.Request) {
	admin := context.ContextGetAuthenticatedAdmin(r)
	lga := adminScopeLga(admin)

	queryValues := retrieveUrlQueryValues(r)

	if queryValues.Email == "" || !validator.IsEmail(queryValues.Email) {
		h.errHandler.BadRequest(w, r, ErrEmailRequired)
		return
	}

	if queryValues.Status != "" && !models.IsApplicationStatus(queryValues.Status) {
		h.errHandler.BadRequest(w, r, ErrUnknownStatusFilter)
		return
	}

	startDate := r.URL.Query().Get("start_date")
	endDate := r.URL.Query().Get("end_date")
	if _, _, err := parseDateFilters(startDate, endDate); err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	h.emitReportRequest(r, queryValues.Email, lga, queryValues.Status, startDate, endDate)

	message := "Report will be sent to " + queryValues.Email
	err := response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *reportHandler) emitReportRequest(r *http.Request, email, lga, status, startDate, endDate string) {
	h.helper.BackgroundTask(r, func() error {
		event := ReportRequestEvent{
			EventID:     uuid.NewString(),
			Email:       email,
			Lga:         lga,
			Status:      status,
			StartDate:   startDate,
			EndDate:     endDate,
			RequestedAt: time.Now(),
		}

		message, err := json.Marshal(event)
		if err != nil {
			return err
		}

		return h.producer.ProduceMessage(stream.ApplicationReportTopic, string(message))
	})
}
