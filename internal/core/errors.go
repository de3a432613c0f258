package core

import "errors"

var (
	ErrEmployeeNotFound = errors.New("no employee found for the current user")
	ErrEmployeeMismatch = errors.New("employee does not belong to the current user")
	ErrUnknownAction    = errors.New("unknown check-in action")
)
