package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrQuit signals that a quit action ended Run.
	ErrQuit = errors.New("quit requested")

	// ErrAlreadyRunning indicates Run was called twice.
	ErrAlreadyRunning = errors.New("application already running")
)

// ComponentError represents a failure of one part of the application.
type ComponentError struct {
	Component string // "config", "keymaps", "scripts", "watcher"
	Action    string
	Err       error
}

func (e *ComponentError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s: %s: %v", e.Component, e.Action, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Component, e.Err)
}

func (e *ComponentError) Unwrap() error {
	return e.Err
}
