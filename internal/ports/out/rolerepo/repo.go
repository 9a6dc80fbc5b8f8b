package rolerepo

import (
	"context"

	"github.com/listly-app/shopping-list-api/internal/domain"
)

// Repository provides access to persisted roles.
//
// Roles are seeded once at bootstrap and immutable afterwards, so there is no
// Update or Delete: lookups may be cached freely by callers.
type Repository interface {
	// Create inserts a role. ErrAlreadyExists is returned when a role with
	// the same id or name is already present (seeding is idempotent at the
	// caller's discretion).
	Create(ctx context.Context, r domain.Role) error

	GetByID(ctx context.Context, id domain.RoleID) (domain.Role, error)
	GetByName(ctx context.Context, name domain.RoleName) (domain.Role, error)

	// List returns all roles ordered by name ascending.
	List(ctx context.Context) ([]domain.Role, error)
}
