// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across client/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist on the backend.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates a rejected or missing credential (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation indicates the backend or client rejected the input (HTTP 400-class).
	ErrValidation = errors.New("validation failed")

	// ErrAlreadyExists indicates a conflict (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotAuthenticated indicates no persisted or in-memory auth session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrBlankInput indicates blank/whitespace-only user input; no request is dispatched.
	ErrBlankInput = errors.New("blank input")

	// ErrSubmissionInFlight indicates the workspace already has a submission in flight.
	ErrSubmissionInFlight = errors.New("submission in flight")

	// ErrNoSession indicates the workspace was entered without an active writing session.
	ErrNoSession = errors.New("no active session")
)
