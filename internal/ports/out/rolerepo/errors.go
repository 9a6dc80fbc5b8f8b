package rolerepo

import "errors"

var (
	// ErrNotFound indicates the requested role does not exist.
	ErrNotFound = errors.New("role not found")

	// ErrAlreadyExists indicates a role already exists with the provided id or name.
	ErrAlreadyExists = errors.New("role already exists")
)
