package listrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/listly-app/shopping-list-api/internal/domain"
	"github.com/listly-app/shopping-list-api/internal/ports/out/listrepo"
)

// Repo is an in-memory implementation of listrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu     sync.RWMutex
	byID   map[domain.ListID]domain.List
	byName map[string]domain.ListID
}

func NewRepo() *Repo {
	return &Repo{
		byID:   make(map[domain.ListID]domain.List),
		byName: make(map[string]domain.ListID),
	}
}

func (r *Repo) Create(ctx context.Context, l domain.List) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[l.ID]; ok {
		return listrepo.ErrAlreadyExists
	}
	if _, ok := r.byName[l.Name]; ok {
		return listrepo.ErrNameTaken
	}
	r.byID[l.ID] = cloneList(l)
	r.byName[l.Name] = l.ID
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.ListID) (domain.List, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.byID[id]
	if !ok {
		return domain.List{}, listrepo.ErrNotFound
	}
	return cloneList(l), nil
}

func (r *Repo) List(ctx context.Context) ([]domain.List, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.List, 0, len(r.byID))
	for _, l := range r.byID {
		out = append(out, cloneList(l))
	}
	sortLists(out)
	return out, nil
}

func (r *Repo) ListByOwner(ctx context.Context, owner domain.UserID) ([]domain.List, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.List, 0)
	for _, l := range r.byID {
		if l.OwnerID == owner {
			out = append(out, cloneList(l))
		}
	}
	sortLists(out)
	return out, nil
}

func (r *Repo) ListSharedWith(ctx context.Context, userID domain.UserID) ([]domain.List, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.List, 0)
	for _, l := range r.byID {
		if l.HasGrantee(userID) {
			out = append(out, cloneList(l))
		}
	}
	sortLists(out)
	return out, nil
}

func (r *Repo) Update(ctx context.Context, id domain.ListID, p listrepo.Patch) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[id]
	if !ok {
		return listrepo.ErrNotFound
	}
	if p.Name != nil && *p.Name != l.Name {
		if _, taken := r.byName[*p.Name]; taken {
			return listrepo.ErrNameTaken
		}
		delete(r.byName, l.Name)
		l.Name = *p.Name
		r.byName[l.Name] = id
	}
	l.UpdatedAt = time.Now().UTC()
	r.byID[id] = l
	return nil
}

func (r *Repo) Delete(ctx context.Context, id domain.ListID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[id]
	if !ok {
		return listrepo.ErrNotFound
	}
	delete(r.byName, l.Name)
	delete(r.byID, id)
	return nil
}

func (r *Repo) AddGrantee(ctx context.Context, id domain.ListID, userID domain.UserID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[id]
	if !ok {
		return listrepo.ErrNotFound
	}
	if !l.HasGrantee(userID) {
		l.Grantees = append(append([]domain.UserID(nil), l.Grantees...), userID)
		r.byID[id] = l
	}
	return nil
}

func (r *Repo) RemoveGrantee(ctx context.Context, id domain.ListID, userID domain.UserID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[id]
	if !ok {
		return listrepo.ErrNotFound
	}
	r.byID[id] = withoutGrantee(l, userID)
	return nil
}

func (r *Repo) RemoveGranteeEverywhere(ctx context.Context, userID domain.UserID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, l := range r.byID {
		if l.HasGrantee(userID) {
			r.byID[id] = withoutGrantee(l, userID)
		}
	}
	return nil
}

func withoutGrantee(l domain.List, userID domain.UserID) domain.List {
	out := make([]domain.UserID, 0, len(l.Grantees))
	for _, g := range l.Grantees {
		if g != userID {
			out = append(out, g)
		}
	}
	l.Grantees = out
	return l
}

func cloneList(l domain.List) domain.List {
	cp := l
	if l.Grantees != nil {
		cp.Grantees = append([]domain.UserID(nil), l.Grantees...)
	}
	return cp
}

func sortLists(ls []domain.List) {
	sort.Slice(ls, func(i, j int) bool { return ls[i].Name < ls[j].Name })
}
