package model

import (
	"time"
)

// CheckinAction is one of the actions an employee can pick in the check-in dialog.
// The allowed set for a given moment is decided by the backend.
type CheckinAction string

const (
	ActionStartOfWork CheckinAction = "Start of work"
	ActionBreak       CheckinAction = "Break"
	ActionEndOfWork   CheckinAction = "End of work"
)

// AllActions lists every known action in display order.
var AllActions = []CheckinAction{ActionStartOfWork, ActionBreak, ActionEndOfWork}

// Valid reports whether a is a known action.
func (a CheckinAction) Valid() bool {
	switch a {
	case ActionStartOfWork, ActionBreak, ActionEndOfWork:
		return true
	}
	return false
}

// RequiresWorklog reports whether a worklog for today must exist before the action is accepted.
func (a CheckinAction) RequiresWorklog() bool {
	return a == ActionEndOfWork
}

// LogType is the direction of a stored check-in event.
type LogType string

const (
	LogTypeIn  LogType = "IN"
	LogTypeOut LogType = "OUT"
)

// Event returns the log type and break flag recorded for an action.
func (a CheckinAction) Event() (LogType, bool) {
	switch a {
	case ActionStartOfWork:
		return LogTypeIn, false
	case ActionBreak:
		return LogTypeOut, true
	default:
		return LogTypeOut, false
	}
}

// SuccessMessage is the notification shown after the action was recorded.
func (a CheckinAction) SuccessMessage() string {
	switch a {
	case ActionBreak:
		return MsgSuccessBreak
	case ActionEndOfWork:
		return MsgSuccessCheckout
	default:
		return MsgSuccessCheckin
	}
}

// State is the current check-in state of an employee.
type State string

const (
	StateUnknown State = "Unknown"
	StateIn      State = "In"
	StateBreak   State = "Break"
	StateOut     State = "Out"
)

// TimeModel is the working time model assigned to an employee.
type TimeModel string

const (
	TimeModelUndefined TimeModel = ""
	TimeModelFlextime  TimeModel = "Flextime account"
)

type Employee struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	FullName  string    `json:"fullName"`
	TimeModel TimeModel `json:"timeModel"`
}

// IsFlextime reports whether the employee books time on a flextime account.
func (e *Employee) IsFlextime() bool {
	return e.TimeModel == TimeModelFlextime
}

// CheckinEvent is a single stamp of an employee.
type CheckinEvent struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	LogType    LogType   `json:"logType"`
	IsBreak    bool      `json:"isBreak"`
	Time       time.Time `json:"time"`
}

// IsIn reports whether the event starts (or resumes) work.
func (e CheckinEvent) IsIn() bool {
	return e.LogType == LogTypeIn
}

// CheckinList holds the events of one employee on one day, ordered by time.
type CheckinList struct {
	Events []CheckinEvent
}

// Latest returns the most recent event or nil when the list is empty.
func (l CheckinList) Latest() *CheckinEvent {
	if len(l.Events) == 0 {
		return nil
	}
	return &l.Events[len(l.Events)-1]
}

// First returns the earliest event or nil when the list is empty.
func (l CheckinList) First() *CheckinEvent {
	if len(l.Events) == 0 {
		return nil
	}
	return &l.Events[0]
}

// HasBreak reports whether at least one break was stamped.
func (l CheckinList) HasBreak() bool {
	for _, e := range l.Events {
		if e.IsBreak {
			return true
		}
	}
	return false
}

// StateOf derives the check-in state from the latest event of the day.
func StateOf(latest *CheckinEvent) State {
	if latest == nil {
		return StateOut
	}
	if !latest.IsIn() && latest.IsBreak {
		return StateBreak
	}
	if !latest.IsIn() {
		return StateOut
	}
	return StateIn
}

type CheckinStatus struct {
	State    State `json:"state"`
	HadBreak bool  `json:"hadBreak"`
}

// CheckinOptions is the set of actions offered to the employee together with the preselected one.
type CheckinOptions struct {
	Options []CheckinAction `json:"options"`
	Default CheckinAction   `json:"default"`
}

// Has reports whether the action is among the offered options.
func (o CheckinOptions) Has(a CheckinAction) bool {
	for _, opt := range o.Options {
		if opt == a {
			return true
		}
	}
	return false
}

type Worklog struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	LogTime    time.Time `json:"logTime"`
	TaskDesc   string    `json:"taskDesc"`
	Task       *string   `json:"task,omitempty"`
}

// ResultStatus is the status field of backend operation results.
type ResultStatus string

const (
	ResultSuccess ResultStatus = "success"
	ResultError   ResultStatus = "error"
)

// Result is returned by operations that report their outcome in the payload
// rather than through the HTTP status.
type Result struct {
	Status  ResultStatus `json:"status"`
	Message string       `json:"message"`
}

// OK reports whether the backend accepted the operation.
func (r Result) OK() bool {
	return r.Status == ResultSuccess
}

func Success(msg string) Result {
	return Result{Status: ResultSuccess, Message: msg}
}

func Failure(msg string) Result {
	return Result{Status: ResultError, Message: msg}
}

// PresentEmployee is a row of the "Employees present" report.
type PresentEmployee struct {
	EmployeeID     string    `json:"employee"`
	EmployeeName   string    `json:"employeeName"`
	Status         State     `json:"status"`
	StatusSince    time.Time `json:"statusSince"`
	WorkStartToday time.Time `json:"workStartToday"`
}
