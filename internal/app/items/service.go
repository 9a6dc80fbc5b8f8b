package items

import (
	"context"
	"errors"
	"net/http"

	"github.com/listly-app/shopping-list-api/internal/app/graph"
	"github.com/listly-app/shopping-list-api/internal/domain"
	"github.com/listly-app/shopping-list-api/internal/ports/out/itemrepo"
	"github.com/listly-app/shopping-list-api/internal/ports/out/listrepo"
)

type ItemInput struct {
	Name string
	Done bool
}

// UpdateItemInput is a patch: nil fields are left untouched.
type UpdateItemInput struct {
	Name *string
	Done *bool
}

type Service struct {
	items   itemrepo.Repository
	lists   listrepo.Repository
	mutator *graph.Mutator
}

func NewService(items itemrepo.Repository, lists listrepo.Repository, mutator *graph.Mutator) *Service {
	return &Service{items: items, lists: lists, mutator: mutator}
}

// CreateBatch inserts a batch of items into the list. A missing list is a
// conflict, not a not-found: the original wire contract reports it that way
// and clients depend on the mapping.
func (s *Service) CreateBatch(ctx context.Context, listID domain.ListID, inputs []ItemInput) ([]domain.Item, error) {
	gin := make([]graph.ItemInput, 0, len(inputs))
	for _, in := range inputs {
		gin = append(gin, graph.ItemInput{Name: in.Name, Done: in.Done})
	}
	created, err := s.mutator.CreateItemsBatch(ctx, listID, gin)
	if err != nil {
		if errors.Is(err, graph.ErrListMissing) {
			return nil, &Error{Status: http.StatusConflict, Code: "LIST_MISSING", Message: "shopping list does not exist"}
		}
		return nil, err
	}
	return created, nil
}

// ForList returns a list's items.
func (s *Service) ForList(ctx context.Context, listID domain.ListID) ([]domain.Item, error) {
	if _, err := s.lists.GetByID(ctx, listID); err != nil {
		if errors.Is(err, listrepo.ErrNotFound) {
			return nil, &Error{Status: http.StatusNotFound, Code: "LIST_NOT_FOUND", Message: "shopping list does not exist"}
		}
		return nil, err
	}
	its, err := s.items.ListByList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if len(its) == 0 {
		return nil, &Error{Status: http.StatusNoContent, Code: "NO_ITEMS", Message: "no items"}
	}
	return its, nil
}

func (s *Service) Update(ctx context.Context, listID domain.ListID, id domain.ItemID, in UpdateItemInput) (domain.Item, error) {
	if _, err := s.inList(ctx, listID, id); err != nil {
		return domain.Item{}, err
	}
	p := itemrepo.Patch{Done: in.Done}
	if in.Name != nil {
		name := domain.NormalizeName(*in.Name)
		p.Name = &name
	}
	if err := s.items.Update(ctx, id, p); err != nil {
		if errors.Is(err, itemrepo.ErrNotFound) {
			return domain.Item{}, errItemNotFound()
		}
		return domain.Item{}, err
	}
	return s.items.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, listID domain.ListID, id domain.ItemID) error {
	if _, err := s.inList(ctx, listID, id); err != nil {
		return err
	}
	if err := s.items.Delete(ctx, id); err != nil {
		if errors.Is(err, itemrepo.ErrNotFound) {
			return errItemNotFound()
		}
		return err
	}
	return nil
}

// DeleteBatch removes the given items from the list; ids that are absent or
// that belong to a different list are skipped.
func (s *Service) DeleteBatch(ctx context.Context, listID domain.ListID, ids []domain.ItemID) error {
	scoped := make([]domain.ItemID, 0, len(ids))
	for _, id := range ids {
		it, err := s.items.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, itemrepo.ErrNotFound) {
				continue
			}
			return err
		}
		if it.ListID != listID {
			continue
		}
		scoped = append(scoped, id)
	}
	if len(scoped) == 0 {
		return nil
	}
	return s.items.DeleteMany(ctx, scoped)
}

// inList fetches the item and checks it belongs to the list named in the
// request. An item on some other list reads as not-found so callers learn
// nothing about lists they were not authorized against.
func (s *Service) inList(ctx context.Context, listID domain.ListID, id domain.ItemID) (domain.Item, error) {
	it, err := s.items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, itemrepo.ErrNotFound) {
			return domain.Item{}, errItemNotFound()
		}
		return domain.Item{}, err
	}
	if it.ListID != listID {
		return domain.Item{}, errItemNotFound()
	}
	return it, nil
}

func errItemNotFound() *Error {
	return &Error{Status: http.StatusNotFound, Code: "ITEM_NOT_FOUND", Message: "item does not exist"}
}
