package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoModel is returned when Run is called without a form model.
	ErrNoModel = errors.New("tui: form model is nil")
)
