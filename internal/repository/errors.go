package repository

import "errors"

var (
	// ErrNotFound - no row for the requested key.
	ErrNotFound = errors.New("not found")

	// ErrStaleWrite - a commit was attempted against an outdated version.
	// The caller must refetch the state and retry; the delta was not applied.
	ErrStaleWrite = errors.New("stale write: version conflict")

	// ErrDuplicateAction - an action with the same content-derived id was
	// already committed. Not an error to the end caller: the original
	// result is returned instead.
	ErrDuplicateAction = errors.New("duplicate action")
)
