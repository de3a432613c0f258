package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrtime.service/internal/api"
	"hrtime.service/internal/api/handler"
	"hrtime.service/internal/client"
	"hrtime.service/internal/core"
	"hrtime.service/internal/core/model"
	"hrtime.service/internal/dialog"
	"hrtime.service/internal/ports/repository/repositorytest"
)

var _ dialog.Backend = (*client.HTTPClient)(nil)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newBackend(t *testing.T) (*httptest.Server, *repositorytest.MemoryStore) {
	t.Helper()

	store := repositorytest.NewMemoryStore()
	store.AddEmployee(model.Employee{ID: "EMP-1", UserID: "ada", FullName: "Ada", TimeModel: model.TimeModelFlextime})

	clock := fixedClock{now: time.Date(2024, 10, 7, 9, 0, 0, 0, time.UTC)}
	employees := core.NewEmployeeService(store)
	worklogs := core.NewWorklogService(store.Worklogs(), clock)
	h := &handler.CheckInHandler{
		Employees: employees,
		Checkins:  core.NewCheckInService(employees, worklogs, store, nil, clock),
		Worklogs:  worklogs,
		Reports:   core.NewReportService(store, store, clock),
	}

	srv := httptest.NewServer(api.NewRouter(h, "X-Hr-User"))
	t.Cleanup(srv.Close)
	return srv, store
}

func newClient(srv *httptest.Server, user string) *client.HTTPClient {
	return client.NewHTTPClient(srv.URL, user, 5*time.Second,
		client.WithHTTPClient(srv.Client()),
		client.WithUserHeader("X-Hr-User"),
	)
}

func TestClientRoundTrip(t *testing.T) {
	srv, _ := newBackend(t)
	c := newClient(srv, "ada")
	ctx := context.Background()

	id, err := c.CurrentEmployeeID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "EMP-1", id)

	options, err := c.CheckinOptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ActionStartOfWork, options.Default)

	result, err := c.SubmitCheckin(ctx, id, model.ActionStartOfWork)
	require.NoError(t, err)
	assert.True(t, result.OK())

	has, err := c.HasWorklogsToday(ctx, id)
	require.NoError(t, err)
	assert.False(t, has)

	result, err = c.CreateWorklog(ctx, id, "Sprint planning")
	require.NoError(t, err)
	assert.Equal(t, model.Success(model.MsgWorklogCreated), result)

	html, err := c.RenderNavbarStatus(ctx)
	require.NoError(t, err)
	assert.Contains(t, html, "Checked in")

	html, err = c.RenderWorklogHeader(ctx)
	require.NoError(t, err)
	assert.Contains(t, html, `class="filled"`)

	rows, err := c.EmployeesPresent(ctx, model.StateIn)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "EMP-1", rows[0].EmployeeID)
}

func TestClientUnknownUser(t *testing.T) {
	srv, _ := newBackend(t)
	c := newClient(srv, "nobody")
	ctx := context.Background()

	id, err := c.CurrentEmployeeID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)

	_, err = c.SubmitCheckin(ctx, "", model.ActionBreak)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, model.MsgEmployeeNotFound, apiErr.Message)
}

func TestClientBreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newClient(srv, "ada")
	for i := 0; i < 5; i++ {
		_, err := c.CheckinOptions(context.Background())
		var apiErr *client.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "boom", apiErr.Message)
	}

	_, err := c.CheckinOptions(context.Background())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(5), calls.Load())
}

func TestDialogOverHTTP(t *testing.T) {
	srv, store := newBackend(t)
	ctx := context.Background()

	c := newClient(srv, "ada")
	_, err := c.SubmitCheckin(ctx, "EMP-1", model.ActionStartOfWork)
	require.NoError(t, err)

	d := dialog.New(c, dialog.WithNotifier(dialog.NotifierFunc(func(dialog.Notification) {})))
	require.NoError(t, d.Show(ctx))
	require.NoError(t, d.Select(model.ActionEndOfWork))
	assert.Equal(t, dialog.StateBlocked, d.View().State)

	require.NoError(t, d.SetWorklogText("Reviewed the payroll export"))
	require.NoError(t, d.Submit(ctx))
	d.Wait()

	assert.Equal(t, dialog.StateClosed, d.State())
	checkins := store.Checkins()
	require.Len(t, checkins, 2)
	assert.Equal(t, model.LogTypeOut, checkins[1].LogType)
}
