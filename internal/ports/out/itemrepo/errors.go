package itemrepo

import "errors"

var (
	// ErrNotFound indicates the requested item does not exist.
	ErrNotFound = errors.New("item not found")

	// ErrAlreadyExists indicates an item already exists with a provided id.
	ErrAlreadyExists = errors.New("item already exists")
)
