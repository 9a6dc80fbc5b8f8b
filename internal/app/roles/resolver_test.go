package roles

import (
	"context"
	"errors"
	"testing"

	memrolerepo "github.com/listly-app/shopping-list-api/internal/adapters/memory/rolerepo"
	"github.com/listly-app/shopping-list-api/internal/domain"
	"github.com/listly-app/shopping-list-api/internal/ports/out/rolerepo"
)

type memoryCache struct {
	byID   map[domain.RoleID]domain.Role
	byName map[domain.RoleName]domain.Role
	puts   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		byID:   map[domain.RoleID]domain.Role{},
		byName: map[domain.RoleName]domain.Role{},
	}
}

func (c *memoryCache) GetByID(_ context.Context, id domain.RoleID) (domain.Role, bool) {
	r, ok := c.byID[id]
	return r, ok
}

func (c *memoryCache) GetByName(_ context.Context, name domain.RoleName) (domain.Role, bool) {
	r, ok := c.byName[name]
	return r, ok
}

func (c *memoryCache) Put(_ context.Context, r domain.Role) {
	c.puts++
	c.byID[r.ID] = r
	c.byName[r.Name] = r
}

func seededRepo(t *testing.T) *memrolerepo.Repo {
	t.Helper()
	repo := memrolerepo.NewRepo()
	err := repo.Create(context.Background(), domain.Role{ID: "role-admin", Name: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return repo
}

func TestResolver_ReadThroughCache(t *testing.T) {
	t.Parallel()

	repo := seededRepo(t)
	cache := newMemoryCache()
	r := NewResolver(repo, cache)
	ctx := context.Background()

	// First lookup misses the cache and populates it.
	role, err := r.ByID(ctx, "role-admin")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if role.Name != domain.RoleAdmin {
		t.Fatalf("role=%+v", role)
	}
	if cache.puts != 1 {
		t.Fatalf("puts=%d, want 1", cache.puts)
	}

	// Second lookup is served from the cache; no further Put.
	if _, err := r.ByID(ctx, "role-admin"); err != nil {
		t.Fatalf("ByID cached: %v", err)
	}
	if cache.puts != 1 {
		t.Fatalf("puts=%d after cached read, want 1", cache.puts)
	}

	if _, err := r.ByName(ctx, domain.RoleAdmin); err != nil {
		t.Fatalf("ByName cached: %v", err)
	}
	if cache.puts != 1 {
		t.Fatalf("puts=%d, the name entry was populated alongside the id", cache.puts)
	}
}

func TestResolver_WorksWithoutCache(t *testing.T) {
	t.Parallel()

	r := NewResolver(seededRepo(t), nil)

	role, err := r.ByName(context.Background(), domain.RoleAdmin)
	if err != nil {
		t.Fatalf("ByName: %v", err)
	}
	if role.ID != "role-admin" {
		t.Fatalf("role=%+v", role)
	}
}

func TestResolver_UnknownRole(t *testing.T) {
	t.Parallel()

	r := NewResolver(seededRepo(t), newMemoryCache())

	if _, err := r.ByID(context.Background(), "ghost"); !errors.Is(err, rolerepo.ErrNotFound) {
		t.Fatalf("err=%v, want rolerepo.ErrNotFound", err)
	}
}
