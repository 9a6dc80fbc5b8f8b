package domain

import "time"

// User is the domain representation of a user account.
//
// A user owns zero or more lists; ownership is recorded on the list
// (List.OwnerID is the single source of truth) and the owned set is a
// derived read, so there is no ownedLists collection here to drift.
type User struct {
	ID    UserID
	Email string

	// PasswordHash is a bcrypt hash. It never leaves the persistence and
	// login paths.
	PasswordHash string

	RoleID RoleID

	CreatedAt time.Time
	UpdatedAt time.Time
}
