package graph

import "errors"

var (
	// ErrListNameTaken indicates a list with the requested name already exists.
	ErrListNameTaken = errors.New("list name taken")

	// ErrOwnerNotFound indicates the designated owner does not exist.
	ErrOwnerNotFound = errors.New("list owner not found")

	// ErrListMissing indicates the target list of a batch insert does not
	// exist. Callers surface this as a conflict, not a not-found: the
	// original wire contract reports a missing parent this way and clients
	// depend on it.
	ErrListMissing = errors.New("target list missing")

	// ErrUserNotFound indicates the user to delete does not exist.
	ErrUserNotFound = errors.New("user not found")
)
