package errors

import "errors"

var (
	ErrInvalidRatingInput      = errors.New("invalid rating input")
	ErrRatingOutOfRange        = errors.New("rating value must be between 1 and 5")
	ErrRatingNotFound          = errors.New("rating not found")
	ErrCriterionNotFound       = errors.New("criterion not found")
	ErrCriterionEventMismatch  = errors.New("criterion does not belong to the participant's event")
	ErrParticipationNotFound   = errors.New("participation not found")
	ErrEventNotFound           = errors.New("event not found")
	ErrScorePropagationFailure = errors.New("score propagation failed")
)
