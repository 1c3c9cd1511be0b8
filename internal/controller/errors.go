package controller

import (
	"errors"
	"fmt"
)

// Noop conditions: the requested state already holds. Reported, exit 0.
var (
	ErrAlreadyRunning = errors.New("service already running")
	ErrNotRunning     = errors.New("service not running")
)

// StaleError reports a pid file whose recorded process is gone. The file has
// been cleared by the time the error is returned; callers treat it as a
// recovered inconsistency, not a failure.
type StaleError struct {
	PID int
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("stale pid file: process %d is gone (cleaned up)", e.PID)
}

// IsNoop reports whether err is an outcome the CLI reports without failing:
// already running, not running, or a recovered stale pid file.
func IsNoop(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAlreadyRunning) || errors.Is(err, ErrNotRunning) {
		return true
	}
	var se *StaleError
	return errors.As(err, &se)
}
