package lists

import (
	"context"
	"errors"
	"net/http"

	"github.com/listly-app/shopping-list-api/internal/app/graph"
	"github.com/listly-app/shopping-list-api/internal/domain"
	"github.com/listly-app/shopping-list-api/internal/ports/out/listrepo"
	"github.com/listly-app/shopping-list-api/internal/ports/out/userrepo"
)

type CreateListInput struct {
	Name string
}

// UpdateListInput is a patch: nil fields are left untouched.
type UpdateListInput struct {
	Name *string
}

type Service struct {
	lists   listrepo.Repository
	users   userrepo.Repository
	mutator *graph.Mutator
}

func NewService(lists listrepo.Repository, users userrepo.Repository, mutator *graph.Mutator) *Service {
	return &Service{lists: lists, users: users, mutator: mutator}
}

// Create persists a new list owned by ownerID.
func (s *Service) Create(ctx context.Context, in CreateListInput, ownerID domain.UserID) (domain.List, error) {
	l, err := s.mutator.CreateList(ctx, graph.CreateListInput{Name: in.Name}, ownerID)
	if err != nil {
		switch {
		case errors.Is(err, graph.ErrListNameTaken):
			return domain.List{}, &Error{Status: http.StatusConflict, Code: "LIST_ALREADY_EXISTS", Message: "shopping list exists"}
		case errors.Is(err, graph.ErrOwnerNotFound):
			return domain.List{}, &Error{Status: http.StatusNotFound, Code: "USER_NOT_FOUND", Message: "user does not exist"}
		default:
			return domain.List{}, err
		}
	}
	return l, nil
}

// All returns every list in the system (administrative view).
func (s *Service) All(ctx context.Context) ([]domain.List, error) {
	ls, err := s.lists.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(ls) == 0 {
		return nil, &Error{Status: http.StatusNoContent, Code: "NO_LISTS", Message: "no shopping lists"}
	}
	return ls, nil
}

// AllForUser returns the lists the user owns.
func (s *Service) AllForUser(ctx context.Context, userID domain.UserID) ([]domain.List, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return nil, &Error{Status: http.StatusNotFound, Code: "USER_NOT_FOUND", Message: "user does not exist"}
		}
		return nil, err
	}
	ls, err := s.lists.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ls) == 0 {
		return nil, &Error{Status: http.StatusNoContent, Code: "NO_LISTS", Message: "no shopping lists"}
	}
	return ls, nil
}

// SharedWithUser returns the lists granted to the user by others.
func (s *Service) SharedWithUser(ctx context.Context, userID domain.UserID) ([]domain.List, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return nil, &Error{Status: http.StatusNotFound, Code: "USER_NOT_FOUND", Message: "user does not exist"}
		}
		return nil, err
	}
	ls, err := s.lists.ListSharedWith(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ls) == 0 {
		return nil, &Error{Status: http.StatusNoContent, Code: "NO_LISTS", Message: "no shopping lists"}
	}
	return ls, nil
}

func (s *Service) Get(ctx context.Context, id domain.ListID) (domain.List, error) {
	l, err := s.lists.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, listrepo.ErrNotFound) {
			return domain.List{}, &Error{Status: http.StatusNotFound, Code: "LIST_NOT_FOUND", Message: "shopping list does not exist"}
		}
		return domain.List{}, err
	}
	return l, nil
}

func (s *Service) Update(ctx context.Context, id domain.ListID, in UpdateListInput) (domain.List, error) {
	p := listrepo.Patch{}
	if in.Name != nil {
		name := domain.NormalizeName(*in.Name)
		p.Name = &name
	}
	if err := s.lists.Update(ctx, id, p); err != nil {
		switch {
		case errors.Is(err, listrepo.ErrNotFound):
			return domain.List{}, &Error{Status: http.StatusNotFound, Code: "LIST_NOT_FOUND", Message: "shopping list does not exist"}
		case errors.Is(err, listrepo.ErrNameTaken):
			return domain.List{}, &Error{Status: http.StatusConflict, Code: "LIST_ALREADY_EXISTS", Message: "shopping list exists"}
		default:
			return domain.List{}, err
		}
	}
	return s.lists.GetByID(ctx, id)
}

// Delete removes the list and its items.
func (s *Service) Delete(ctx context.Context, id domain.ListID) error {
	if _, err := s.mutator.DeleteList(ctx, id); err != nil {
		if errors.Is(err, listrepo.ErrNotFound) {
			return &Error{Status: http.StatusNotFound, Code: "LIST_NOT_FOUND", Message: "shopping list does not exist"}
		}
		return err
	}
	return nil
}

// Share grants userID non-owning access to the list. Granting to the owner
// is rejected: ownership already dominates every grant.
func (s *Service) Share(ctx context.Context, id domain.ListID, userID domain.UserID) error {
	l, err := s.lists.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, listrepo.ErrNotFound) {
			return &Error{Status: http.StatusNotFound, Code: "LIST_NOT_FOUND", Message: "shopping list does not exist"}
		}
		return err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return &Error{Status: http.StatusNotFound, Code: "USER_NOT_FOUND", Message: "user does not exist"}
		}
		return err
	}
	if l.OwnerID == userID {
		return &Error{Status: http.StatusConflict, Code: "ALREADY_OWNER", Message: "owner cannot be a grantee"}
	}
	return s.lists.AddGrantee(ctx, id, userID)
}

// Unshare revokes a grant. Revoking an absent grant is a no-op.
func (s *Service) Unshare(ctx context.Context, id domain.ListID, userID domain.UserID) error {
	if err := s.lists.RemoveGrantee(ctx, id, userID); err != nil {
		if errors.Is(err, listrepo.ErrNotFound) {
			return &Error{Status: http.StatusNotFound, Code: "LIST_NOT_FOUND", Message: "shopping list does not exist"}
		}
		return err
	}
	return nil
}
