package listrepo

import "errors"

var (
	// ErrNotFound indicates the requested list does not exist.
	ErrNotFound = errors.New("list not found")

	// ErrNameTaken indicates another list already holds the name.
	ErrNameTaken = errors.New("list name taken")

	// ErrAlreadyExists indicates a list already exists with the provided id.
	ErrAlreadyExists = errors.New("list already exists")
)
