package messaging

import "time"

// CheckinRecordedEvent is the JSON payload sent via SQS after a check-in action was stored.
type CheckinRecordedEvent struct {
	CheckinID  string    `json:"checkinId"`
	EmployeeID string    `json:"employeeId"`
	Action     string    `json:"action"`
	LogType    string    `json:"logType"`
	IsBreak    bool      `json:"isBreak"`
	OccurredAt time.Time `json:"occurredAt"`
}
