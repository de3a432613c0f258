package dialog

import "hrtime.service/internal/core/model"

type State int

const (
	StateClosed State = iota
	StateLoading
	StateReady
	// StateBlocked is a Ready dialog with End of work selected and no worklog.
	StateBlocked
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateBlocked:
		return "blocked"
	case StateSubmitting:
		return "submitting"
	}
	return "unknown"
}

// Worklog indicator classes of the worklog section.
const (
	WorklogFilled    = "filled"
	WorklogNotFilled = "not-filled"
)

// View is what the presenter needs to draw the dialog.
type View struct {
	State       State
	EmployeeID  string
	Options     []model.CheckinAction
	Selected    model.CheckinAction
	HasWorklogs bool
	WorklogText string
	// ShowWorklogSection is true while End of work is selected.
	ShowWorklogSection bool
	WorklogIndicator   string
	SubmitEnabled      bool
}

// View returns a snapshot of the dialog.
func (d *Dialog) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()

	state := d.currentState()
	indicator := WorklogNotFilled
	if d.hasWorklogs {
		indicator = WorklogFilled
	}

	return View{
		State:              state,
		EmployeeID:         d.employeeID,
		Options:            append([]model.CheckinAction(nil), d.options.Options...),
		Selected:           d.selected,
		HasWorklogs:        d.hasWorklogs,
		WorklogText:        d.worklogText,
		ShowWorklogSection: d.selected == model.ActionEndOfWork,
		WorklogIndicator:   indicator,
		SubmitEnabled:      state == StateReady,
	}
}
