package clock

import "errors"

var (
	ErrClockNotFound      = errors.New("clock not found")
	ErrClockAlreadyClosed = errors.New("clock is already closed")
	ErrOpenClockExists    = errors.New("user already has an open clock")
)
