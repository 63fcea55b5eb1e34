package reaper

import "errors"

var (
	// ErrUnauthorized means the caller has no identity
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the caller's role may not run the operation
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the title does not exist
	ErrNotFound = errors.New("title not found")

	// ErrDeleteFailed covers every failure after the title was found
	ErrDeleteFailed = errors.New("delete failed")
)
