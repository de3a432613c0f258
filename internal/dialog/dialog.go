// Package dialog implements the easy check-in dialog: it decides whether a
// worklog is required before a check-in action may be submitted and sequences
// the backend calls around it.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"hrtime.service/internal/core/model"
)

var (
	ErrNotReady             = errors.New("dialog is not ready")
	ErrSubmissionInProgress = errors.New("a submission is already in progress")
	ErrBlocked              = errors.New("end of work requires a worklog for today")
	ErrEmptyWorklog         = errors.New("worklog description is empty")
	ErrNoEmployee           = errors.New("no employee found for the current user")
	ErrUnknownAction        = errors.New("action is not offered")
)

// StatusError is returned when the backend answered with an error status.
type StatusError struct {
	Message string
}

func (e *StatusError) Error() string {
	return "backend reported error: " + e.Message
}

// Backend is the set of remote calls the dialog depends on.
type Backend interface {
	CheckinOptions(ctx context.Context) (model.CheckinOptions, error)
	CurrentEmployeeID(ctx context.Context) (string, error)
	HasWorklogsToday(ctx context.Context, employeeID string) (bool, error)
	CreateWorklog(ctx context.Context, employeeID, text string) (model.Result, error)
	SubmitCheckin(ctx context.Context, employeeID string, action model.CheckinAction) (model.Result, error)
}

type Option func(*Dialog)

// WithNotifier sets where transient notifications go.
func WithNotifier(n Notifier) Option {
	return func(d *Dialog) { d.notifier = n }
}

// WithRefresher sets the dashboard refresher triggered after a successful submission.
func WithRefresher(r Refresher) Option {
	return func(d *Dialog) { d.refresher = r }
}

// Dialog is the check-in dialog state machine. It is safe for concurrent use;
// backend calls are made without holding the lock so the view stays readable
// while a request is in flight.
type Dialog struct {
	backend   Backend
	notifier  Notifier
	refresher Refresher

	mu          sync.Mutex
	state       State
	options     model.CheckinOptions
	preloaded   bool
	employeeID  string
	hasWorklogs bool
	selected    model.CheckinAction
	worklogText string

	// inFlight is set while a worklog or check-in request runs. It outlives
	// Close so a reopened dialog cannot start a second request.
	inFlight bool
	// session counts Show calls; a request only updates the session it started in.
	session uint64

	bg sync.WaitGroup
}

// New creates a closed dialog.
func New(backend Backend, opts ...Option) *Dialog {
	d := &Dialog{
		backend:  backend,
		notifier: logNotifier{},
		state:    StateClosed,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var (
	sharedOnce sync.Once
	shared     *Dialog
)

// Singleton returns the process-wide dialog, creating it on first use.
// Arguments of later calls are ignored.
func Singleton(backend Backend, opts ...Option) *Dialog {
	sharedOnce.Do(func() {
		shared = New(backend, opts...)
	})
	return shared
}

// Preload fetches the allowed actions and the default action.
func (d *Dialog) Preload(ctx context.Context) error {
	if err := d.preload(ctx); err != nil {
		d.notifier.Notify(failure(model.MsgPreloadOptionsFailed))
		return err
	}
	return nil
}

func (d *Dialog) preload(ctx context.Context) error {
	opts, err := d.backend.CheckinOptions(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch check-in options: %w", err)
	}

	d.mu.Lock()
	d.options = opts
	d.preloaded = true
	d.mu.Unlock()
	return nil
}

// Show opens the dialog: it resolves the employee, checks today's worklogs and
// moves to Ready with the default action selected. Any failure closes the
// dialog again.
func (d *Dialog) Show(ctx context.Context) error {
	d.mu.Lock()
	if d.inFlight {
		d.mu.Unlock()
		return ErrSubmissionInProgress
	}
	if d.state == StateLoading {
		d.mu.Unlock()
		return ErrNotReady
	}
	d.state = StateLoading
	d.session++
	needOptions := !d.preloaded
	d.mu.Unlock()

	if needOptions {
		if err := d.preload(ctx); err != nil {
			d.abortLoading(ctx, model.MsgPreloadOptionsFailed, err)
			return err
		}
	}

	employeeID, err := d.backend.CurrentEmployeeID(ctx)
	if err != nil {
		d.abortLoading(ctx, model.MsgEmployeeIDFetchFailed, err)
		return fmt.Errorf("failed to resolve employee: %w", err)
	}
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		d.abortLoading(ctx, model.MsgEmployeeIDNotFound, ErrNoEmployee)
		return ErrNoEmployee
	}

	hasWorklogs, err := d.backend.HasWorklogsToday(ctx, employeeID)
	if err != nil {
		d.abortLoading(ctx, model.MsgWorklogStatusFailed, err)
		return fmt.Errorf("failed to fetch worklog status: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.employeeID = employeeID
	d.hasWorklogs = hasWorklogs
	d.selected = d.options.Default
	d.worklogText = ""
	d.state = StateReady

	log.Ctx(ctx).Debug().
		Str("employee_id", employeeID).
		Bool("has_worklogs", hasWorklogs).
		Str("default_action", string(d.selected)).
		Msg("Check-in dialog ready")
	return nil
}

func (d *Dialog) abortLoading(ctx context.Context, msg string, err error) {
	d.mu.Lock()
	d.state = StateClosed
	d.mu.Unlock()

	log.Ctx(ctx).Warn().Err(err).Msg("Check-in dialog could not be opened")
	d.notifier.Notify(failure(msg))
}

// Select changes the selected action.
func (d *Dialog) Select(action model.CheckinAction) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != StateReady {
		return ErrNotReady
	}
	if !d.options.Has(action) {
		return ErrUnknownAction
	}
	d.selected = action
	return nil
}

// SetWorklogText sets the content of the worklog text box.
func (d *Dialog) SetWorklogText(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != StateReady {
		return ErrNotReady
	}
	d.worklogText = text
	return nil
}

// Close hides the dialog. A request already in flight is not cancelled and
// keeps the dialog from being submitted again until it returns.
func (d *Dialog) Close() {
	d.mu.Lock()
	d.state = StateClosed
	d.mu.Unlock()
}

// State returns the current state, reporting StateBlocked for a Ready dialog
// that may not be submitted.
func (d *Dialog) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.currentState()
}

func (d *Dialog) currentState() State {
	if d.state == StateReady && d.blocked() {
		return StateBlocked
	}
	return d.state
}

// blocked reports whether End of work is selected while no worklog exists
// today and none was typed in. Must be called with mu held.
func (d *Dialog) blocked() bool {
	return d.selected.RequiresWorklog() &&
		!d.hasWorklogs &&
		strings.TrimSpace(d.worklogText) == ""
}

// AddWorklog creates a worklog from the text box without submitting a check-in.
func (d *Dialog) AddWorklog(ctx context.Context) error {
	d.mu.Lock()
	if d.inFlight {
		d.mu.Unlock()
		return ErrSubmissionInProgress
	}
	if d.state != StateReady {
		d.mu.Unlock()
		return ErrNotReady
	}
	text := strings.TrimSpace(d.worklogText)
	if text == "" {
		d.mu.Unlock()
		d.notifier.Notify(warning(model.MsgEmptyTaskDesc))
		return ErrEmptyWorklog
	}
	employeeID := d.employeeID
	session := d.begin()
	d.mu.Unlock()

	if err := d.createWorklog(ctx, session, employeeID, text); err != nil {
		d.backToReady(session)
		return err
	}

	d.backToReady(session)
	d.notifier.Notify(success(model.MsgWorklogAdded))
	return nil
}

// Submit records the selected action. For End of work with a typed worklog the
// worklog is created first. On success the dialog closes and the dashboard is
// refreshed in the background; on failure it returns to Ready.
func (d *Dialog) Submit(ctx context.Context) error {
	d.mu.Lock()
	if d.inFlight {
		d.mu.Unlock()
		return ErrSubmissionInProgress
	}
	if d.state != StateReady {
		d.mu.Unlock()
		return ErrNotReady
	}
	if d.blocked() {
		d.mu.Unlock()
		d.notifier.Notify(warning(model.MsgEmptyTaskDescNoWorklogs))
		return ErrBlocked
	}
	if !d.options.Has(d.selected) {
		d.mu.Unlock()
		return ErrUnknownAction
	}
	action := d.selected
	employeeID := d.employeeID
	text := strings.TrimSpace(d.worklogText)
	session := d.begin()
	d.mu.Unlock()

	logger := log.Ctx(ctx).With().Str("employee_id", employeeID).Str("action", string(action)).Logger()

	if action.RequiresWorklog() && text != "" {
		if err := d.createWorklog(ctx, session, employeeID, text); err != nil {
			d.backToReady(session)
			return err
		}
	}

	res, err := d.backend.SubmitCheckin(ctx, employeeID, action)
	if err != nil {
		d.backToReady(session)
		logger.Error().Err(err).Msg("Check-in submission failed")
		d.notifier.Notify(failure(submitFailedMessage(action)))
		return fmt.Errorf("failed to submit check-in: %w", err)
	}
	if !res.OK() {
		d.backToReady(session)
		logger.Warn().Str("message", res.Message).Msg("Backend rejected check-in")
		d.notifier.Notify(failure(res.Message))
		return &StatusError{Message: res.Message}
	}

	d.mu.Lock()
	d.inFlight = false
	if d.session == session && d.state == StateSubmitting {
		d.state = StateClosed
	}
	d.mu.Unlock()

	logger.Info().Msg("Check-in submitted")
	d.afterSubmit(ctx)
	d.notifier.Notify(success(action.SuccessMessage()))
	return nil
}

// createWorklog stores text as a worklog. On success the text box is cleared
// so a later End of work does not store the same text twice.
func (d *Dialog) createWorklog(ctx context.Context, session uint64, employeeID, text string) error {
	res, err := d.backend.CreateWorklog(ctx, employeeID, text)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("employee_id", employeeID).Msg("Worklog creation failed")
		d.notifier.Notify(failure(model.MsgWorklogCreateFailed))
		return fmt.Errorf("failed to create worklog: %w", err)
	}
	if !res.OK() {
		d.notifier.Notify(failure(res.Message))
		return &StatusError{Message: res.Message}
	}

	d.mu.Lock()
	if d.session == session {
		d.hasWorklogs = true
		d.worklogText = ""
	}
	d.mu.Unlock()
	return nil
}

// begin marks a request as running. Must be called with mu held.
func (d *Dialog) begin() uint64 {
	d.inFlight = true
	d.state = StateSubmitting
	return d.session
}

// backToReady ends the request and leaves Submitting unless the dialog was
// closed or reopened meanwhile.
func (d *Dialog) backToReady(session uint64) {
	d.mu.Lock()
	d.inFlight = false
	if d.session == session && d.state == StateSubmitting {
		d.state = StateReady
	}
	d.mu.Unlock()
}

// afterSubmit refreshes the dashboard and the cached options without making
// the caller wait.
func (d *Dialog) afterSubmit(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	d.bg.Add(1)
	go func() {
		defer d.bg.Done()
		if d.refresher != nil {
			d.refresher.Refresh(ctx)
		}
		if err := d.preload(ctx); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("Could not reload check-in options")
		}
	}()
}

// Wait blocks until background work started by Submit has finished.
func (d *Dialog) Wait() {
	d.bg.Wait()
}

func submitFailedMessage(action model.CheckinAction) string {
	if action == model.ActionEndOfWork {
		return model.MsgCheckoutFailed
	}
	return model.MsgCheckinFailed
}
