package models

import "errors"

// Domain specific errors for the itinerary pipeline.
var (
	ErrNotFound     = errors.New("requested item not found")
	ErrBadRequest   = errors.New("bad request")
	ErrValidation   = errors.New("validation failed")
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoCandidates signals that a search or selection step found
	// nothing. It is non-fatal: the stage skips the slot and the
	// pipeline continues with a sparser itinerary.
	ErrNoCandidates = errors.New("no candidates found")

	// ErrUpstream signals that a collaborator call failed or timed out.
	// It aborts the whole planning run and is never swallowed into an
	// empty result.
	ErrUpstream = errors.New("upstream collaborator failure")
)
