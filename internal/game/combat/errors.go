package combat

import "errors"

// Errors returned by session commands. Callers match them with errors.Is;
// the returned error wraps one of these with the offending identifier.
var (
	// ErrNotFound is returned for an unknown attack or enemy id.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState is returned when a command is issued in a phase that forbids it.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidTarget is returned when the enemy exists but cannot be targeted.
	ErrInvalidTarget = errors.New("invalid target")
	// ErrInvalidArgument is returned for malformed values such as negative damage.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConcurrentCommand is returned when a command overlaps an in-flight action.
	ErrConcurrentCommand = errors.New("concurrent command")
	// ErrSessionClosed is returned for any command after Victory or Defeat.
	ErrSessionClosed = errors.New("session closed")
)
