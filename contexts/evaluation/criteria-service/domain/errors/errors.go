package errors

import "errors"

var (
	ErrInvalidCriterionInput = errors.New("invalid criterion input")
	ErrWeightCeilingExceeded = errors.New("criterion weights would exceed the event ceiling")
	ErrCriterionNotFound     = errors.New("criterion not found")
	ErrEventNotFound         = errors.New("event not found")
	ErrEventNotEditable      = errors.New("event is not in an editable state")
)
