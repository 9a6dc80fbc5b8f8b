package rolecache

import (
	"context"

	"github.com/listly-app/shopping-list-api/internal/domain"
)

// Cache is an optional read-through cache for role lookups.
//
// Roles are immutable post-seed, so cached entries never need invalidation.
// Correctness must never depend on the cache: implementations report misses
// with ok=false and callers ignore cache errors entirely.
type Cache interface {
	GetByID(ctx context.Context, id domain.RoleID) (domain.Role, bool)
	GetByName(ctx context.Context, name domain.RoleName) (domain.Role, bool)
	Put(ctx context.Context, r domain.Role)
}
