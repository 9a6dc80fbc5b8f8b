package roles

import (
	"context"

	"github.com/listly-app/shopping-list-api/internal/domain"
	"github.com/listly-app/shopping-list-api/internal/ports/out/rolecache"
	"github.com/listly-app/shopping-list-api/internal/ports/out/rolerepo"
)

// Resolver looks up roles by id or name.
//
// Role identity is immutable post-seed, so the optional read-through cache
// never needs invalidation. Correctness never depends on the cache: every
// miss falls through to the repository.
type Resolver struct {
	repo  rolerepo.Repository
	cache rolecache.Cache
}

// NewResolver constructs a Resolver. cache may be nil.
func NewResolver(repo rolerepo.Repository, cache rolecache.Cache) *Resolver {
	return &Resolver{repo: repo, cache: cache}
}

func (r *Resolver) ByID(ctx context.Context, id domain.RoleID) (domain.Role, error) {
	if r.cache != nil {
		if role, ok := r.cache.GetByID(ctx, id); ok {
			return role, nil
		}
	}
	role, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Role{}, err
	}
	if r.cache != nil {
		r.cache.Put(ctx, role)
	}
	return role, nil
}

func (r *Resolver) ByName(ctx context.Context, name domain.RoleName) (domain.Role, error) {
	if r.cache != nil {
		if role, ok := r.cache.GetByName(ctx, name); ok {
			return role, nil
		}
	}
	role, err := r.repo.GetByName(ctx, name)
	if err != nil {
		return domain.Role{}, err
	}
	if r.cache != nil {
		r.cache.Put(ctx, role)
	}
	return role, nil
}

// All returns every seeded role.
func (r *Resolver) All(ctx context.Context) ([]domain.Role, error) {
	return r.repo.List(ctx)
}
