package rolerepo

import (
	"context"
	"sort"
	"sync"

	"github.com/listly-app/shopping-list-api/internal/domain"
	"github.com/listly-app/shopping-list-api/internal/ports/out/rolerepo"
)

// Repo is an in-memory implementation of rolerepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu     sync.RWMutex
	byID   map[domain.RoleID]domain.Role
	byName map[domain.RoleName]domain.RoleID
}

func NewRepo() *Repo {
	return &Repo{
		byID:   make(map[domain.RoleID]domain.Role),
		byName: make(map[domain.RoleName]domain.RoleID),
	}
}

func (r *Repo) Create(ctx context.Context, role domain.Role) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[role.ID]; ok {
		return rolerepo.ErrAlreadyExists
	}
	if _, ok := r.byName[role.Name]; ok {
		return rolerepo.ErrAlreadyExists
	}
	r.byID[role.ID] = role
	r.byName[role.Name] = role.ID
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.RoleID) (domain.Role, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	role, ok := r.byID[id]
	if !ok {
		return domain.Role{}, rolerepo.ErrNotFound
	}
	return role, nil
}

func (r *Repo) GetByName(ctx context.Context, name domain.RoleName) (domain.Role, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	if !ok {
		return domain.Role{}, rolerepo.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *Repo) List(ctx context.Context) ([]domain.Role, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Role, 0, len(r.byID))
	for _, role := range r.byID {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
