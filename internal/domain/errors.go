package domain

import "errors"

// Sentinel errors for the store and converter layers - use with errors.Is()
var (
	// ErrNotFound indicates a missing record id or a missing path inside a record
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an add on a duplicate record id
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidArgument indicates a malformed status/reason combination,
	// an unknown enum value, or a reference to an unknown record id
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState indicates a rejected no-op status transition
	ErrInvalidState = errors.New("invalid state")

	// ErrUnsupportedConversion indicates a schema version pair other than
	// v2<->v3 or identity
	ErrUnsupportedConversion = errors.New("unsupported schema conversion")
)
