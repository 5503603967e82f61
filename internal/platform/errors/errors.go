package apperrors

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("not found")
	ErrInvalidSession        = errors.New("invalid session")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrNoActiveSession       = errors.New("no active session")
	ErrSessionAlreadyActive  = errors.New("session already active")
	ErrUnresolvedItem        = errors.New("item metadata unresolved")
	ErrMergeOwnerMismatch    = errors.New("sessions belong to different identities")
	ErrActiveSessionConflict = errors.New("session is currently active")
	ErrUndoExpired           = errors.New("undo window expired")
	ErrUndoNotFound          = errors.New("undo token not found")
)
