package dialog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hrtime.service/internal/core/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	options      model.CheckinOptions
	optionsErr   error
	employeeID   string
	employeeErr  error
	hasWorklogs  bool
	worklogErr   error
	createResult model.Result
	createErr    error
	submitResult model.Result
	submitErr    error

	// submitGate, when set, blocks SubmitCheckin until it is closed.
	submitGate    chan struct{}
	submitEntered chan struct{}

	createdTexts []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		options: model.CheckinOptions{
			Options: []model.CheckinAction{model.ActionBreak, model.ActionEndOfWork},
			Default: model.ActionBreak,
		},
		employeeID:   "HR-EMP-00001",
		createResult: model.Success(model.MsgWorklogCreated),
		submitResult: model.Success(""),
	}
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) CheckinOptions(ctx context.Context) (model.CheckinOptions, error) {
	f.record("options")
	return f.options, f.optionsErr
}

func (f *fakeBackend) CurrentEmployeeID(ctx context.Context) (string, error) {
	f.record("employee")
	return f.employeeID, f.employeeErr
}

func (f *fakeBackend) HasWorklogsToday(ctx context.Context, employeeID string) (bool, error) {
	f.record("has_worklogs")
	return f.hasWorklogs, f.worklogErr
}

func (f *fakeBackend) CreateWorklog(ctx context.Context, employeeID, text string) (model.Result, error) {
	f.record("create_worklog")
	f.mu.Lock()
	f.createdTexts = append(f.createdTexts, text)
	f.mu.Unlock()
	return f.createResult, f.createErr
}

func (f *fakeBackend) SubmitCheckin(ctx context.Context, employeeID string, action model.CheckinAction) (model.Result, error) {
	f.record("submit:" + string(action))
	if f.submitEntered != nil {
		close(f.submitEntered)
	}
	if f.submitGate != nil {
		<-f.submitGate
	}
	return f.submitResult, f.submitErr
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []Notification
}

func (r *recordingNotifier) Notify(n Notification) {
	r.mu.Lock()
	r.items = append(r.items, n)
	r.mu.Unlock()
}

func (r *recordingNotifier) Last() Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}
	}
	return r.items[len(r.items)-1]
}

func (r *recordingNotifier) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func openDialog(t *testing.T, b *fakeBackend, opts ...Option) (*Dialog, *recordingNotifier) {
	t.Helper()
	n := &recordingNotifier{}
	d := New(b, append([]Option{WithNotifier(n)}, opts...)...)
	require.NoError(t, d.Show(context.Background()))
	return d, n
}

func TestShowResolvesEmployeeAndWorklogStatus(t *testing.T) {
	b := newFakeBackend()
	b.hasWorklogs = true

	d, _ := openDialog(t, b)

	assert.Equal(t, []string{"options", "employee", "has_worklogs"}, b.Calls())
	v := d.View()
	assert.Equal(t, StateReady, v.State)
	assert.Equal(t, "HR-EMP-00001", v.EmployeeID)
	assert.Equal(t, model.ActionBreak, v.Selected)
	assert.Equal(t, WorklogFilled, v.WorklogIndicator)
	assert.False(t, v.ShowWorklogSection)
	assert.True(t, v.SubmitEnabled)
}

func TestShowUsesPreloadedOptions(t *testing.T) {
	b := newFakeBackend()
	d := New(b, WithNotifier(&recordingNotifier{}))

	require.NoError(t, d.Preload(context.Background()))
	require.NoError(t, d.Show(context.Background()))

	assert.Equal(t, []string{"options", "employee", "has_worklogs"}, b.Calls())
}

func TestShowFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(b *fakeBackend)
		wantErr error
		wantMsg string
	}{
		{
			name:    "options unavailable",
			mutate:  func(b *fakeBackend) { b.optionsErr = errors.New("boom") },
			wantMsg: model.MsgPreloadOptionsFailed,
		},
		{
			name:    "employee lookup fails",
			mutate:  func(b *fakeBackend) { b.employeeErr = errors.New("boom") },
			wantMsg: model.MsgEmployeeIDFetchFailed,
		},
		{
			name:    "no employee for user",
			mutate:  func(b *fakeBackend) { b.employeeID = "  " },
			wantErr: ErrNoEmployee,
			wantMsg: model.MsgEmployeeIDNotFound,
		},
		{
			name:    "worklog status fails",
			mutate:  func(b *fakeBackend) { b.worklogErr = errors.New("boom") },
			wantMsg: model.MsgWorklogStatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend()
			tt.mutate(b)
			n := &recordingNotifier{}
			d := New(b, WithNotifier(n))

			err := d.Show(context.Background())
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, StateClosed, d.State())
			assert.Equal(t, tt.wantMsg, n.Last().Message)
			assert.Equal(t, IndicatorRed, n.Last().Indicator)
		})
	}
}

func TestNoEmployeeSendsNoWorklogRequest(t *testing.T) {
	b := newFakeBackend()
	b.employeeID = ""
	d := New(b, WithNotifier(&recordingNotifier{}))

	require.ErrorIs(t, d.Show(context.Background()), ErrNoEmployee)
	assert.NotContains(t, b.Calls(), "has_worklogs")
}

func TestNonEndOfWorkNeverRequiresWorklog(t *testing.T) {
	for _, action := range []model.CheckinAction{model.ActionStartOfWork, model.ActionBreak} {
		t.Run(string(action), func(t *testing.T) {
			b := newFakeBackend()
			b.options = model.CheckinOptions{Options: model.AllActions}
			d, n := openDialog(t, b)

			require.NoError(t, d.Select(action))
			assert.Equal(t, StateReady, d.State())
			require.NoError(t, d.Submit(context.Background()))
			d.Wait()

			assert.NotContains(t, b.Calls(), "create_worklog")
			assert.Contains(t, b.Calls(), "submit:"+string(action))
			assert.Equal(t, action.SuccessMessage(), n.Last().Message)
			assert.Equal(t, StateClosed, d.State())
		})
	}
}

func TestBreakIgnoresTypedWorklog(t *testing.T) {
	b := newFakeBackend()
	d, _ := openDialog(t, b)

	require.NoError(t, d.SetWorklogText("wrote docs"))
	require.NoError(t, d.Submit(context.Background()))
	d.Wait()

	assert.NotContains(t, b.Calls(), "create_worklog")
}

func TestEndOfWorkBlockedWithoutWorklog(t *testing.T) {
	tests := []struct {
		name        string
		hasWorklogs bool
		text        string
		wantBlocked bool
	}{
		{name: "no worklog, no text", wantBlocked: true},
		{name: "no worklog, whitespace text", text: "  \n ", wantBlocked: true},
		{name: "no worklog, text typed", text: "fixed the build"},
		{name: "worklog exists", hasWorklogs: true},
		{name: "worklog exists and text typed", hasWorklogs: true, text: "more"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend()
			b.hasWorklogs = tt.hasWorklogs
			d, _ := openDialog(t, b)

			require.NoError(t, d.Select(model.ActionEndOfWork))
			require.NoError(t, d.SetWorklogText(tt.text))

			v := d.View()
			assert.True(t, v.ShowWorklogSection)
			if tt.wantBlocked {
				assert.Equal(t, StateBlocked, v.State)
				assert.False(t, v.SubmitEnabled)
			} else {
				assert.Equal(t, StateReady, v.State)
				assert.True(t, v.SubmitEnabled)
			}
		})
	}
}

func TestSubmitWhileBlockedSendsNothing(t *testing.T) {
	b := newFakeBackend()
	d, n := openDialog(t, b)
	require.NoError(t, d.Select(model.ActionEndOfWork))
	before := len(b.Calls())

	err := d.Submit(context.Background())

	assert.ErrorIs(t, err, ErrBlocked)
	assert.Len(t, b.Calls(), before)
	assert.Equal(t, model.MsgEmptyTaskDescNoWorklogs, n.Last().Message)
	assert.Equal(t, StateBlocked, d.State())
}

func TestEndOfWorkCreatesWorklogBeforeCheckin(t *testing.T) {
	b := newFakeBackend()
	d, n := openDialog(t, b)
	require.NoError(t, d.Select(model.ActionEndOfWork))
	require.NoError(t, d.SetWorklogText("  reviewed PRs  "))

	require.NoError(t, d.Submit(context.Background()))
	d.Wait()

	calls := b.Calls()
	createAt := indexOf(calls, "create_worklog")
	submitAt := indexOf(calls, "submit:End of work")
	require.NotEqual(t, -1, createAt)
	require.NotEqual(t, -1, submitAt)
	assert.Less(t, createAt, submitAt)
	assert.Equal(t, []string{"reviewed PRs"}, b.createdTexts)
	assert.Equal(t, model.MsgSuccessCheckout, n.Last().Message)
	assert.Equal(t, IndicatorGreen, n.Last().Indicator)
}

func TestEndOfWorkWithExistingWorklogSubmitsDirectly(t *testing.T) {
	b := newFakeBackend()
	b.hasWorklogs = true
	d, _ := openDialog(t, b)
	require.NoError(t, d.Select(model.ActionEndOfWork))

	require.NoError(t, d.Submit(context.Background()))
	d.Wait()

	assert.NotContains(t, b.Calls(), "create_worklog")
}

func TestWorklogFailureSkipsCheckin(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b *fakeBackend)
		msg    string
	}{
		{
			name:   "transport error",
			mutate: func(b *fakeBackend) { b.createErr = errors.New("connection refused") },
			msg:    model.MsgWorklogCreateFailed,
		},
		{
			name:   "error status",
			mutate: func(b *fakeBackend) { b.createResult = model.Failure("Worklog Creation Error: db down") },
			msg:    "Worklog Creation Error: db down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend()
			tt.mutate(b)
			d, n := openDialog(t, b)
			require.NoError(t, d.Select(model.ActionEndOfWork))
			require.NoError(t, d.SetWorklogText("did things"))

			err := d.Submit(context.Background())

			require.Error(t, err)
			assert.NotContains(t, b.Calls(), "submit:End of work")
			assert.Equal(t, tt.msg, n.Last().Message)
			assert.Equal(t, StateReady, d.State())
			assert.Equal(t, "did things", d.View().WorklogText)
		})
	}
}

func TestSubmitFailureKeepsDialogOpen(t *testing.T) {
	t.Run("error status", func(t *testing.T) {
		b := newFakeBackend()
		b.submitResult = model.Failure(model.MsgCheckoutFailedNoWorklog)
		refreshed := false
		d, n := openDialog(t, b, WithRefresher(RefresherFunc(func(ctx context.Context) { refreshed = true })))

		err := d.Submit(context.Background())
		d.Wait()

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, model.MsgCheckoutFailedNoWorklog, statusErr.Message)
		assert.Equal(t, StateReady, d.State())
		assert.Equal(t, IndicatorRed, n.Last().Indicator)
		assert.False(t, refreshed)
	})

	t.Run("transport error", func(t *testing.T) {
		b := newFakeBackend()
		b.submitErr = errors.New("timeout")
		d, n := openDialog(t, b)

		require.Error(t, d.Submit(context.Background()))
		assert.Equal(t, StateReady, d.State())
		assert.Equal(t, model.MsgCheckinFailed, n.Last().Message)

		// the user may retry manually
		b.submitErr = nil
		require.NoError(t, d.Submit(context.Background()))
		d.Wait()
		assert.Equal(t, StateClosed, d.State())
	})
}

func TestSuccessfulSubmitRefreshesDashboardAndOptions(t *testing.T) {
	b := newFakeBackend()
	refreshed := make(chan struct{}, 1)
	d, _ := openDialog(t, b, WithRefresher(RefresherFunc(func(ctx context.Context) {
		refreshed <- struct{}{}
	})))

	b.options = model.CheckinOptions{Options: []model.CheckinAction{model.ActionStartOfWork}, Default: model.ActionStartOfWork}
	require.NoError(t, d.Submit(context.Background()))

	select {
	case <-refreshed:
	case <-time.After(time.Second):
		t.Fatal("dashboard was not refreshed")
	}
	d.Wait()

	assert.Equal(t, []model.CheckinAction{model.ActionStartOfWork}, d.View().Options)
}

func TestNoConcurrentSubmissions(t *testing.T) {
	b := newFakeBackend()
	b.submitGate = make(chan struct{})
	b.submitEntered = make(chan struct{})
	d, _ := openDialog(t, b)

	done := make(chan error, 1)
	go func() { done <- d.Submit(context.Background()) }()
	<-b.submitEntered

	assert.Equal(t, StateSubmitting, d.State())
	assert.False(t, d.View().SubmitEnabled)
	assert.ErrorIs(t, d.Submit(context.Background()), ErrSubmissionInProgress)
	assert.ErrorIs(t, d.AddWorklog(context.Background()), ErrSubmissionInProgress)
	assert.ErrorIs(t, d.Show(context.Background()), ErrSubmissionInProgress)

	close(b.submitGate)
	require.NoError(t, <-done)
	d.Wait()

	submits := 0
	for _, c := range b.Calls() {
		if c == "submit:Break" {
			submits++
		}
	}
	assert.Equal(t, 1, submits)
}

func TestClosingDuringSubmissionDoesNotAllowASecondOne(t *testing.T) {
	b := newFakeBackend()
	b.submitResult = model.Failure("rejected")
	b.submitGate = make(chan struct{})
	b.submitEntered = make(chan struct{})
	d, _ := openDialog(t, b)

	done := make(chan error, 1)
	go func() { done <- d.Submit(context.Background()) }()
	<-b.submitEntered

	d.Close()
	assert.Equal(t, StateClosed, d.State())
	assert.ErrorIs(t, d.Show(context.Background()), ErrSubmissionInProgress)
	assert.ErrorIs(t, d.Submit(context.Background()), ErrSubmissionInProgress)
	assert.ErrorIs(t, d.AddWorklog(context.Background()), ErrSubmissionInProgress)

	close(b.submitGate)
	var statusErr *StatusError
	require.ErrorAs(t, <-done, &statusErr)
	// The closed dialog stays closed when the request fails.
	assert.Equal(t, StateClosed, d.State())

	b.submitGate, b.submitEntered = nil, nil
	b.submitResult = model.Success(model.MsgSuccessBreak)
	require.NoError(t, d.Show(context.Background()))
	require.NoError(t, d.Submit(context.Background()))
	d.Wait()

	submits := 0
	for _, c := range b.Calls() {
		if c == "submit:Break" {
			submits++
		}
	}
	assert.Equal(t, 2, submits)
}

func TestSuccessAfterCloseAllowsReopen(t *testing.T) {
	b := newFakeBackend()
	b.submitResult = model.Success(model.MsgSuccessBreak)
	b.submitGate = make(chan struct{})
	b.submitEntered = make(chan struct{})
	d, _ := openDialog(t, b)

	done := make(chan error, 1)
	go func() { done <- d.Submit(context.Background()) }()
	<-b.submitEntered
	d.Close()

	close(b.submitGate)
	require.NoError(t, <-done)
	d.Wait()

	assert.Equal(t, StateClosed, d.State())
	b.submitGate, b.submitEntered = nil, nil
	require.NoError(t, d.Show(context.Background()))
	assert.Equal(t, StateReady, d.State())
}

func TestAddWorklog(t *testing.T) {
	t.Run("empty text is rejected locally", func(t *testing.T) {
		b := newFakeBackend()
		d, n := openDialog(t, b)
		require.NoError(t, d.SetWorklogText("   "))

		assert.ErrorIs(t, d.AddWorklog(context.Background()), ErrEmptyWorklog)
		assert.NotContains(t, b.Calls(), "create_worklog")
		assert.Equal(t, model.MsgEmptyTaskDesc, n.Last().Message)
	})

	t.Run("success unblocks end of work", func(t *testing.T) {
		b := newFakeBackend()
		d, n := openDialog(t, b)
		require.NoError(t, d.Select(model.ActionEndOfWork))
		require.Equal(t, StateBlocked, d.State())
		require.NoError(t, d.SetWorklogText("planning"))

		require.NoError(t, d.AddWorklog(context.Background()))

		v := d.View()
		assert.Equal(t, StateReady, v.State)
		assert.True(t, v.HasWorklogs)
		assert.Equal(t, WorklogFilled, v.WorklogIndicator)
		assert.Empty(t, v.WorklogText)
		assert.Equal(t, model.MsgWorklogAdded, n.Last().Message)
	})

	t.Run("error status keeps worklog missing", func(t *testing.T) {
		b := newFakeBackend()
		b.createResult = model.Failure("nope")
		d, n := openDialog(t, b)
		require.NoError(t, d.Select(model.ActionEndOfWork))
		require.NoError(t, d.SetWorklogText("planning"))

		var statusErr *StatusError
		require.ErrorAs(t, d.AddWorklog(context.Background()), &statusErr)
		assert.False(t, d.View().HasWorklogs)
		assert.Equal(t, "nope", n.Last().Message)
	})
}

func TestSelectRejectsActionsNotOffered(t *testing.T) {
	b := newFakeBackend()
	d, _ := openDialog(t, b)

	assert.ErrorIs(t, d.Select(model.ActionStartOfWork), ErrUnknownAction)
	assert.ErrorIs(t, d.Select("Lunch"), ErrUnknownAction)
	assert.Equal(t, model.ActionBreak, d.View().Selected)
}

func TestSubmitWithoutSelection(t *testing.T) {
	b := newFakeBackend()
	b.options = model.CheckinOptions{Options: model.AllActions, Default: ""}
	d, _ := openDialog(t, b)

	assert.ErrorIs(t, d.Submit(context.Background()), ErrUnknownAction)
	assert.Equal(t, StateReady, d.State())
}

func TestClosedDialogRejectsInput(t *testing.T) {
	d := New(newFakeBackend(), WithNotifier(&recordingNotifier{}))

	assert.ErrorIs(t, d.Submit(context.Background()), ErrNotReady)
	assert.ErrorIs(t, d.Select(model.ActionBreak), ErrNotReady)
	assert.ErrorIs(t, d.SetWorklogText("x"), ErrNotReady)
	assert.ErrorIs(t, d.AddWorklog(context.Background()), ErrNotReady)
}

func TestSingleton(t *testing.T) {
	first := Singleton(newFakeBackend())
	second := Singleton(newFakeBackend())
	assert.Same(t, first, second)
}

func indexOf(calls []string, call string) int {
	for i, c := range calls {
		if c == call {
			return i
		}
	}
	return -1
}
