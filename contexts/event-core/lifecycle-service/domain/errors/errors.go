package errors

import "errors"

var (
	ErrInvalidEventInput      = errors.New("invalid event input")
	ErrEventNotFound          = errors.New("event not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrProfileNotFound        = errors.New("role profile not found")
	ErrOrphanRoleReference    = errors.New("participation references missing role profile or user")
	ErrTeardownFailed         = errors.New("event teardown failed")
)
