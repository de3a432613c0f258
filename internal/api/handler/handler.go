package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"hrtime.service/internal/core"
	"hrtime.service/internal/core/model"
)

type userKey struct{}

// WithUser stores the id of the requesting user in ctx.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserFromContext returns the id stored by WithUser.
func UserFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userKey{}).(string)
	return userID
}

// CheckInHandler serves the check-in dialog and dashboard calls.
type CheckInHandler struct {
	Employees *core.EmployeeService
	Checkins  *core.CheckInService
	Worklogs  *core.WorklogService
	Reports   *core.ReportService
}

type SubmitRequest struct {
	EmployeeID string              `json:"employeeId"`
	Action     model.CheckinAction `json:"action"`
}

type CreateWorklogRequest struct {
	EmployeeID string  `json:"employeeId"`
	Text       string  `json:"text"`
	Task       *string `json:"task,omitempty"`
}

// CurrentEmployee answers get_current_employee_id. A user without employee gets null.
func (h *CheckInHandler) CurrentEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := h.Employees.CurrentEmployeeID(r.Context(), UserFromContext(r.Context()))
	if errors.Is(err, core.ErrEmployeeNotFound) {
		writeMessage(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, id)
}

// Options answers get_easy_checkin_options.
func (h *CheckInHandler) Options(w http.ResponseWriter, r *http.Request) {
	options, err := h.Checkins.Options(r.Context(), UserFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, options)
}

// Submit answers submit_easy_checkin. A refused check-in is still a 200 with
// an error result.
func (h *CheckInHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.Checkins.Submit(r.Context(), UserFromContext(r.Context()), req.EmployeeID, req.Action)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, result)
}

// WorklogsToday answers has_employee_made_worklogs_today.
func (h *CheckInHandler) WorklogsToday(w http.ResponseWriter, r *http.Request) {
	employeeID := strings.TrimSpace(r.URL.Query().Get("employeeId"))
	if employeeID == "" {
		writeMessage(w, http.StatusBadRequest, "employeeId is required")
		return
	}

	hasWorklogs, err := h.Worklogs.HasWorklogsToday(r.Context(), employeeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, hasWorklogs)
}

// CreateWorklog answers create_worklog.
func (h *CheckInHandler) CreateWorklog(w http.ResponseWriter, r *http.Request) {
	var req CreateWorklogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	writeMessage(w, http.StatusOK, h.Worklogs.Create(r.Context(), req.EmployeeID, req.Text, req.Task))
}

// WorklogHeader answers render_worklog_header for the requesting user's employee.
func (h *CheckInHandler) WorklogHeader(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	employeeID, err := h.Employees.CurrentEmployeeID(ctx, UserFromContext(ctx))
	if err != nil {
		writeError(w, r, err)
		return
	}
	hasWorklogs, err := h.Worklogs.HasWorklogsToday(ctx, employeeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeHTML(w, r, func() (string, error) { return core.RenderWorklogHeader(hasWorklogs) })
}

// NavbarStatus answers render_navbar_checkin_status.
func (h *CheckInHandler) NavbarStatus(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, r, func() (string, error) {
		return h.Checkins.RenderNavbarStatus(r.Context(), UserFromContext(r.Context()))
	})
}

// EmployeesPresent serves the employees present report. The optional status
// query narrows it to "In" or "Break".
func (h *CheckInHandler) EmployeesPresent(w http.ResponseWriter, r *http.Request) {
	filter := model.State(r.URL.Query().Get("status"))
	if filter != "" && filter != model.StateIn && filter != model.StateBreak {
		writeMessage(w, http.StatusBadRequest, "status must be In or Break")
		return
	}

	rows, err := h.Reports.Present(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, rows)
}

// EmployeesPresentCard answers render_number_card_employees_present.
func (h *CheckInHandler) EmployeesPresentCard(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, r, func() (string, error) { return h.Reports.RenderPresentCard(r.Context()) })
}

// Health reports that the service is up.
func Health(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "Service is operational.")
}

func writeHTML(w http.ResponseWriter, r *http.Request, render func() (string, error)) {
	fragment, err := render()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, fragment)
}

// writeMessage writes payload in the {"message": ...} envelope.
func writeMessage(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]any{"message": payload}); err != nil {
		log.Error().Err(err).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrEmployeeNotFound):
		writeMessage(w, http.StatusNotFound, model.MsgEmployeeNotFound)
	case errors.Is(err, core.ErrUnknownAction):
		writeMessage(w, http.StatusBadRequest, model.MsgUnknownAction)
	case errors.Is(err, core.ErrEmployeeMismatch):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		writeMessage(w, http.StatusInternalServerError, model.MsgDBError)
	}
}
