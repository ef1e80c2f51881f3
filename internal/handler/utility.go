package handler

import (
	"net/http"

	"github.com/cradoe/indigene/internal/errHandler"
	"github.com/cradoe/indigene/internal/jurisdiction"
	"github.com/cradoe/indigene/internal/response"
)

// utilityHandler serves the reference data the application form needs:
// the list of states and the LGAs of any one state.
type utilityHandler struct {
	errHandler *errHandler.ErrorHandler
}

func NewUtilityHandler(errHandler *errHandler.ErrorHandler) *utilityHandler {
	return &utilityHandler{
		errHandler: errHandler,
	}
}

func (h *utilityHandler) HandleListStates(w http.ResponseWriter, r *http.Request) {
	err := response.JSONOkResponse(w, jurisdiction.States(), "States retrieved", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *utilityHandler) HandleListLgas(w http.ResponseWriter, r *http.Request) {
	state := r.PathValue("state")

	if !jurisdiction.IsState(state) {
		h.errHandler.NotFoundMessage(w, r, "State not found")
		return
	}

	lgas, _ := jurisdiction.LGAs(state)

	err := response.JSONOkResponse(w, lgas, "LGAs retrieved", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}
