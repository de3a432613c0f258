package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"hrtime.service/internal/api/handler"
	"hrtime.service/pkg/logger"
)

// NewRouter sets up the gorilla/mux router and defines all API routes.
// The requesting user is read from userHeader.
func NewRouter(h *handler.CheckInHandler, userHeader string) *mux.Router {
	r := mux.NewRouter()
	r.Use(logger.Middleware)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", handler.Health).Methods(http.MethodGet)

	user := api.NewRoute().Subrouter()
	user.Use(UserMiddleware(userHeader))

	// get_current_employee_id
	user.HandleFunc("/employee/current", h.CurrentEmployee).Methods(http.MethodGet)
	// get_easy_checkin_options
	user.HandleFunc("/checkin/options", h.Options).Methods(http.MethodGet)
	// submit_easy_checkin
	user.HandleFunc("/checkin", h.Submit).Methods(http.MethodPost)
	// has_employee_made_worklogs_today
	user.HandleFunc("/worklogs/today", h.WorklogsToday).Methods(http.MethodGet)
	// create_worklog
	user.HandleFunc("/worklogs", h.CreateWorklog).Methods(http.MethodPost)

	user.HandleFunc("/render/worklog-header", h.WorklogHeader).Methods(http.MethodGet)
	user.HandleFunc("/render/navbar-status", h.NavbarStatus).Methods(http.MethodGet)
	user.HandleFunc("/render/employees-present", h.EmployeesPresentCard).Methods(http.MethodGet)
	user.HandleFunc("/reports/employees-present", h.EmployeesPresent).Methods(http.MethodGet)

	return r
}

// UserMiddleware puts the user named in header into the request context.
// Requests without it are rejected.
func UserMiddleware(header string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get(header))
			if userID == "" {
				http.Error(w, "missing "+header+" header", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(handler.WithUser(r.Context(), userID)))
		})
	}
}
