package model

// User facing messages shared by the backend and the check-in dialog.
const (
	MsgEmployeeIDNotFound = "No employee ID found for the current user: Please ensure you are logged in."
	MsgEmployeeNotFound   = "No Employee record found for the current user."

	MsgWorklogAdded            = "Worklog added successfully."
	MsgWorklogCreated          = "Worklog created successfully."
	MsgWorklogStatusFailed     = "Error fetching worklog status."
	MsgWorklogCreateFailed     = "Worklog Creation Error"
	MsgEmptyTaskDesc           = "Task description must not be empty."
	MsgEmptyTaskDescNoWorklogs = "You have no Worklogs today: Task description must not be empty."
	MsgPreloadOptionsFailed    = "Failed to preload check-in options"
	MsgEmployeeIDFetchFailed   = "Error fetching employee ID"

	MsgSuccessBreak            = "Successfully checked out for Break."
	MsgSuccessCheckout         = "Successfully checked out for End of Work."
	MsgSuccessCheckin          = "Successfully checked in."
	MsgCheckoutFailed          = "Could not Checkout of work."
	MsgCheckinFailed           = "Could not submit check-in."
	MsgCheckoutFailedNoWorklog = "Could not Checkout of work : You have no Worklogs today."

	MsgUnknownAction = "Unknown action provided."
	MsgDBError       = "Database error."
)
