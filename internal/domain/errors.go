package domain

import "errors"

var (
	// ErrValidation marks malformed input.
	ErrValidation = errors.New("validation error")

	// ErrDomainRule marks input that is well formed but inconsistent,
	// e.g. an income recorded as debit.
	ErrDomainRule = errors.New("domain rule violation")

	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrStore wraps every failure coming from the storage backend.
	ErrStore = errors.New("store failure")
)
