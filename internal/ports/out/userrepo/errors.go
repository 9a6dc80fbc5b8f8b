package userrepo

import "errors"

var (
	// ErrNotFound indicates the requested user does not exist.
	ErrNotFound = errors.New("user not found")

	// ErrEmailTaken indicates another user already holds the email.
	ErrEmailTaken = errors.New("user email taken")

	// ErrAlreadyExists indicates a user already exists with the provided id.
	ErrAlreadyExists = errors.New("user already exists")
)
