package userrepo

import (
	"context"

	"github.com/listly-app/shopping-list-api/internal/domain"
)

// Patch carries a partial update for a user record. Nil fields are left
// untouched.
type Patch struct {
	Email        *string
	PasswordHash *string
	RoleID       *domain.RoleID
}

// Repository provides access to persisted users.
//
// Result ordering expectations:
// - List returns users ordered by email ascending to keep behavior deterministic.
type Repository interface {
	// Create inserts a user. ErrEmailTaken is returned when another user
	// already holds the email; ErrAlreadyExists when the id collides.
	Create(ctx context.Context, u domain.User) error

	GetByID(ctx context.Context, id domain.UserID) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)

	List(ctx context.Context) ([]domain.User, error)

	// Update applies the patch to an existing user. ErrNotFound is returned
	// when the user does not exist; ErrEmailTaken when the patched email is
	// already held by another user.
	Update(ctx context.Context, id domain.UserID, p Patch) error

	// Delete removes the user record only. Cascading over owned resources is
	// the graph mutator's job, not the repository's.
	Delete(ctx context.Context, id domain.UserID) error
}
