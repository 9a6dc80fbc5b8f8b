package itemrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/listly-app/shopping-list-api/internal/domain"
	"github.com/listly-app/shopping-list-api/internal/ports/out/itemrepo"
)

// Repo is an in-memory implementation of itemrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	byID map[domain.ItemID]domain.Item
	seq  int
	ord  map[domain.ItemID]int
}

func NewRepo() *Repo {
	return &Repo{
		byID: make(map[domain.ItemID]domain.Item),
		ord:  make(map[domain.ItemID]int),
	}
}

func (r *Repo) InsertMany(ctx context.Context, items []domain.Item) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	// All-or-nothing: reject the whole batch on any id collision.
	for _, it := range items {
		if _, ok := r.byID[it.ID]; ok {
			return itemrepo.ErrAlreadyExists
		}
	}
	for _, it := range items {
		r.seq++
		r.byID[it.ID] = it
		r.ord[it.ID] = r.seq
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.ItemID) (domain.Item, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.byID[id]
	if !ok {
		return domain.Item{}, itemrepo.ErrNotFound
	}
	return it, nil
}

func (r *Repo) ListByList(ctx context.Context, listID domain.ListID) ([]domain.Item, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Item, 0)
	for _, it := range r.byID {
		if it.ListID == listID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.ord[out[i].ID] < r.ord[out[j].ID] })
	return out, nil
}

func (r *Repo) Update(ctx context.Context, id domain.ItemID, p itemrepo.Patch) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.byID[id]
	if !ok {
		return itemrepo.ErrNotFound
	}
	if p.Name != nil {
		it.Name = *p.Name
	}
	if p.Done != nil {
		it.Done = *p.Done
	}
	it.UpdatedAt = time.Now().UTC()
	r.byID[id] = it
	return nil
}

func (r *Repo) Delete(ctx context.Context, id domain.ItemID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return itemrepo.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.ord, id)
	return nil
}

func (r *Repo) DeleteMany(ctx context.Context, ids []domain.ItemID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.byID, id)
		delete(r.ord, id)
	}
	return nil
}

func (r *Repo) DeleteByList(ctx context.Context, listID domain.ListID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, it := range r.byID {
		if it.ListID == listID {
			delete(r.byID, id)
			delete(r.ord, id)
		}
	}
	return nil
}
