// Package client talks to the check-in backend over HTTP. HTTPClient is the
// dialog's Backend and the dashboard's renderer.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"hrtime.service/internal/core/model"
)

// APIError is returned when the backend answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// HTTPClient calls the backend API on behalf of one user.
type HTTPClient struct {
	client     *http.Client
	baseURL    string
	user       string
	userHeader string
	cb         *gobreaker.CircuitBreaker
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.client = c }
}

// WithUserHeader sets the header carrying the user, X-User-Id by default.
func WithUserHeader(header string) Option {
	return func(h *HTTPClient) { h.userHeader = header }
}

// NewHTTPClient creates a client for the backend at baseURL acting as user.
func NewHTTPClient(baseURL, user string, timeout time.Duration, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
		baseURL:    strings.TrimRight(baseURL, "/"),
		user:       user,
		userHeader: "X-User-Id",
	}
	for _, opt := range opts {
		opt(c)
	}

	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "HRTime-API",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Answers the backend rejected are not outages.
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < http.StatusInternalServerError
			}
			return err == nil
		},
	})
	return c
}

// CurrentEmployeeID calls get_current_employee_id. A user without employee gets "".
func (c *HTTPClient) CurrentEmployeeID(ctx context.Context) (string, error) {
	var id *string
	if err := c.call(ctx, http.MethodGet, "/employee/current", nil, nil, &id); err != nil {
		return "", err
	}
	if id == nil {
		return "", nil
	}
	return *id, nil
}

// CheckinOptions calls get_easy_checkin_options.
func (c *HTTPClient) CheckinOptions(ctx context.Context) (model.CheckinOptions, error) {
	var options model.CheckinOptions
	err := c.call(ctx, http.MethodGet, "/checkin/options", nil, nil, &options)
	return options, err
}

// HasWorklogsToday calls has_employee_made_worklogs_today.
func (c *HTTPClient) HasWorklogsToday(ctx context.Context, employeeID string) (bool, error) {
	var has bool
	err := c.call(ctx, http.MethodGet, "/worklogs/today", url.Values{"employeeId": {employeeID}}, nil, &has)
	return has, err
}

// CreateWorklog calls create_worklog.
func (c *HTTPClient) CreateWorklog(ctx context.Context, employeeID, text string) (model.Result, error) {
	var result model.Result
	err := c.call(ctx, http.MethodPost, "/worklogs", nil, map[string]string{
		"employeeId": employeeID,
		"text":       text,
	}, &result)
	return result, err
}

// SubmitCheckin calls submit_easy_checkin.
func (c *HTTPClient) SubmitCheckin(ctx context.Context, employeeID string, action model.CheckinAction) (model.Result, error) {
	var result model.Result
	err := c.call(ctx, http.MethodPost, "/checkin", nil, map[string]string{
		"employeeId": employeeID,
		"action":     string(action),
	}, &result)
	return result, err
}

// RenderWorklogHeader returns the HTML above the worklog text box.
func (c *HTTPClient) RenderWorklogHeader(ctx context.Context) (string, error) {
	return c.fragment(ctx, "/render/worklog-header")
}

// RenderNavbarStatus returns the navbar status pill HTML.
func (c *HTTPClient) RenderNavbarStatus(ctx context.Context) (string, error) {
	return c.fragment(ctx, "/render/navbar-status")
}

// RenderPresentCard returns the employees present number card HTML.
func (c *HTTPClient) RenderPresentCard(ctx context.Context) (string, error) {
	return c.fragment(ctx, "/render/employees-present")
}

// EmployeesPresent fetches the employees present report, optionally filtered by state.
func (c *HTTPClient) EmployeesPresent(ctx context.Context, filter model.State) ([]model.PresentEmployee, error) {
	var query url.Values
	if filter != "" {
		query = url.Values{"status": {string(filter)}}
	}
	var rows []model.PresentEmployee
	err := c.call(ctx, http.MethodGet, "/reports/employees-present", query, nil, &rows)
	return rows, err
}

func (c *HTTPClient) fragment(ctx context.Context, path string) (string, error) {
	var html string
	err := c.call(ctx, http.MethodGet, path, nil, nil, &html)
	return html, err
}

// call sends one request through the circuit breaker and decodes the
// "message" member of the response into out.
func (c *HTTPClient) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.do(ctx, method, path, query, body, out)
	})
	return err
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + "/api/v1" + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(c.userHeader, c.user)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response of %s: %w", path, err)
	}

	var envelope struct {
		Message json.RawMessage `json:"message"`
	}
	decodeErr := json.Unmarshal(raw, &envelope)

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		var msg string
		if decodeErr == nil && json.Unmarshal(envelope.Message, &msg) == nil {
			apiErr.Message = msg
		}
		return apiErr
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode response of %s: %w", path, decodeErr)
	}
	if out == nil || len(envelope.Message) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Message, out); err != nil {
		return fmt.Errorf("failed to decode message of %s: %w", path, err)
	}
	return nil
}
