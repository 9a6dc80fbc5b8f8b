package authz

import (
	"time"

	"github.com/listly-app/shopping-list-api/internal/domain"
)

// Claims are the verified identity facts extracted from a credential.
// They live only for the duration of a request and are never persisted.
type Claims struct {
	Subject   domain.UserID
	RoleID    domain.RoleID
	ExpiresAt time.Time
}

// Target carries whichever request identifiers the mode requires.
type Target struct {
	UserID domain.UserID
	ListID domain.ListID
}

// Decision is the outcome of an authorization check. Elevated reports that
// the decision was reached through the administrative role rather than
// ownership or a grant.
type Decision struct {
	Allowed  bool
	Elevated bool
}
