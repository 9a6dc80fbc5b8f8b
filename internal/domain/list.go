package domain

import "time"

// List is the domain representation of a shopping list.
//
// OwnerID is an exclusive reference to the owning user. Grantees are users
// granted non-owning access; a user id may appear there only while both the
// user and the list exist.
type List struct {
	ID   ListID
	Name string

	OwnerID  UserID
	Grantees []UserID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasGrantee reports whether userID is in the list's grantee set.
func (l List) HasGrantee(userID UserID) bool {
	for _, g := range l.Grantees {
		if g == userID {
			return true
		}
	}
	return false
}
