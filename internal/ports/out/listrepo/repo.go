package listrepo

import (
	"context"

	"github.com/listly-app/shopping-list-api/internal/domain"
)

// Patch carries a partial update for a list record. Nil fields are left
// untouched. Ownership and grantee membership are mutated through the
// dedicated methods below, never through Patch.
type Patch struct {
	Name *string
}

// Repository provides access to persisted shopping lists.
//
// GetByID returns the list together with its full grantee set in one
// logically atomic read: authorization decisions are made against that
// snapshot, and a grant added concurrently afterwards is not required to be
// honored for the in-flight request.
//
// Result ordering expectations:
// - List methods return results ordered by name ascending.
type Repository interface {
	// Create inserts a list. ErrNameTaken is returned when another list
	// already holds the name; ErrAlreadyExists when the id collides.
	Create(ctx context.Context, l domain.List) error

	GetByID(ctx context.Context, id domain.ListID) (domain.List, error)

	List(ctx context.Context) ([]domain.List, error)

	// ListByOwner is the derived read model for a user's owned set:
	// exactly the lists whose OwnerID equals the given user.
	ListByOwner(ctx context.Context, owner domain.UserID) ([]domain.List, error)

	// ListSharedWith returns the lists whose grantee set contains the user.
	ListSharedWith(ctx context.Context, userID domain.UserID) ([]domain.List, error)

	Update(ctx context.Context, id domain.ListID, p Patch) error

	Delete(ctx context.Context, id domain.ListID) error

	// AddGrantee adds userID to the list's grantee set (idempotent push).
	AddGrantee(ctx context.Context, id domain.ListID, userID domain.UserID) error

	// RemoveGrantee removes userID from the list's grantee set (pull).
	// Removing an absent grantee is not an error.
	RemoveGrantee(ctx context.Context, id domain.ListID, userID domain.UserID) error

	// RemoveGranteeEverywhere pulls userID out of every list's grantee set.
	// Used by the delete-user cascade.
	RemoveGranteeEverywhere(ctx context.Context, userID domain.UserID) error
}
