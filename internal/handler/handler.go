package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cradoe/indigene/internal/models"
)

type queryStringValues struct {
	Name      string
	Status    string
	Email     string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
	Offset    int
}

func retrieveUrlQueryValues(r *http.Request) *queryStringValues {
	queryValues := &queryStringValues{
		Name:   r.URL.Query().Get("name"),
		Status: r.URL.Query().Get("status"),
		Email:  r.URL.Query().Get("email"),
	}

	// Default pagination values
	page := 1
	limit := 10

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if parsedPage, err := strconv.Atoi(pageStr); err == nil && parsedPage >= 1 {
			page = parsedPage
		}
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
			limit = parsedLimit
		}
	}

	queryValues.Page = page
	queryValues.Limit = limit
	queryValues.Offset = (page - 1) * limit

	return queryValues
}

// ApplicationResponseData is the listing/detail shape for applications.
type ApplicationResponseData struct {
	ID                   string  `json:"id"`
	FullNames            string  `json:"full_names"`
	Nin                  string  `json:"nin"`
	FatherNames          *string `json:"father_names"`
	MotherNames          *string `json:"mother_names"`
	NativeTown           *string `json:"native_town"`
	NativePoliticalWard  *string `json:"native_political_ward"`
	Village              *string `json:"village"`
	CommunityHead        *string `json:"community_head"`
	CommunityHeadContact *string `json:"community_head_contact"`
	Passport             string  `json:"passport"`
	DocFromCommunityHead *string `json:"doc_from_community_head"`
	CurrentAddress       string  `json:"current_address"`
	StateOfOrigin        string  `json:"state_of_origin"`
	Lga                  string  `json:"lga"`
	IsResident           *bool   `json:"is_resident"`
	LgaOfResident        *string `json:"lga_of_resident"`
	Status               string  `json:"status"`
	PendingPaymentLink   *string `json:"pending_payment_link"`
	DecisionDate         *string `json:"decision_date"`
	CreatedAt            string  `json:"created_at"`
}

func newApplicationResponseData(application *models.Application) *ApplicationResponseData {
	data := &ApplicationResponseData{
		ID:             application.ID,
		FullNames:      application.FullNames,
		Nin:            application.Nin,
		Passport:       application.Passport,
		CurrentAddress: application.CurrentAddress,
		StateOfOrigin:  application.StateOfOrigin,
		Lga:            application.Lga,
		Status:         application.Status,
		CreatedAt:      application.CreatedAt.Format(time.RFC3339),
	}

	if application.FatherNames.Valid {
		data.FatherNames = &application.FatherNames.String
	}
	if application.MotherNames.Valid {
		data.MotherNames = &application.MotherNames.String
	}
	if application.NativeTown.Valid {
		data.NativeTown = &application.NativeTown.String
	}
	if application.NativePoliticalWard.Valid {
		data.NativePoliticalWard = &application.NativePoliticalWard.String
	}
	if application.Village.Valid {
		data.Village = &application.Village.String
	}
	if application.CommunityHead.Valid {
		data.CommunityHead = &application.CommunityHead.String
	}
	if application.CommunityHeadContact.Valid {
		data.CommunityHeadContact = &application.CommunityHeadContact.String
	}
	if application.DocFromCommunityHead.Valid {
		data.DocFromCommunityHead = &application.DocFromCommunityHead.String
	}
	if application.IsResident.Valid {
		data.IsResident = &application.IsResident.Bool
	}
	if application.LgaOfResident.Valid {
		data.LgaOfResident = &application.LgaOfResident.String
	}
	if application.PendingPaymentLink.Valid {
		data.PendingPaymentLink = &application.PendingPaymentLink.String
	}
	if application.PendingApprovalRejectionDate.Valid {
		formatted := application.PendingApprovalRejectionDate.Time.Format(time.RFC3339)
		data.DecisionDate = &formatted
	}

	return data
}
