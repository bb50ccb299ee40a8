package brackets

import "errors"

// Engine error taxonomy. All of these are recoverable validation errors for
// the caller to map onto user-facing responses; the engine never partially
// mutates state on a rejected operation.
var (
	ErrInvalidTeamCount    = errors.New("bracket requires at least two teams")
	ErrTeamCountMismatch   = errors.New("team list does not match the bracket's team count")
	ErrRandomizeLocked     = errors.New("seeding is locked for this tournament")
	ErrAttemptsExhausted   = errors.New("randomize attempts exhausted")
	ErrAlreadyLocked       = errors.New("seeding is already locked")
	ErrBracketNotLocked    = errors.New("results cannot be recorded until seeding is locked")
	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchCanceled       = errors.New("match has been canceled")
	ErrTeamNotInMatch      = errors.New("team is not part of this match")
	ErrDownstreamCompleted = errors.New("result cannot be corrected: a downstream match is already completed")
)
