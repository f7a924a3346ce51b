package domain

import "errors"

var (
	// ErrUnauthorized is returned when no actor could be identified for the call
	ErrUnauthorized = errors.New("no authenticated actor")

	// ErrForbidden is returned when the actor lacks permission for the target entity
	ErrForbidden = errors.New("actor is not allowed to perform this action")

	// ErrNotFound is returned when a referenced post, request, job or profile does not exist
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when an operation collides with an existing terminal state
	ErrConflict = errors.New("operation conflicts with existing state")

	// ErrInvalidTransition is returned when a status change is not legal from the current state
	ErrInvalidTransition = errors.New("status transition not allowed")

	// ErrInvalidOperation is returned for structurally disallowed actions,
	// such as a subcontractor requesting their own post
	ErrInvalidOperation = errors.New("operation not allowed on this entity")

	// ErrAlreadyExists signals a unique-constraint violation. Callers racing on
	// request creation recover from it by re-reading the winning record.
	ErrAlreadyExists = errors.New("record already exists")
)
