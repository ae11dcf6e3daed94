package admin

import "errors"

var (
	// ErrNotConfirmed is returned when a destructive action was not confirmed.
	ErrNotConfirmed = errors.New("admin: action not confirmed")
	// ErrActionInFlight is returned when the same action is already running for a record.
	ErrActionInFlight = errors.New("admin: action already in progress")
	// ErrUnknownScreen is returned for unregistered screen codes.
	ErrUnknownScreen = errors.New("admin: unknown screen")
	// ErrUnsupportedAction is returned when a screen does not handle an action.
	ErrUnsupportedAction = errors.New("admin: unsupported action")
)
