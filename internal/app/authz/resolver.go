package authz

import (
	"context"
	"errors"

	"github.com/listly-app/shopping-list-api/internal/domain"
	"github.com/listly-app/shopping-list-api/internal/ports/out/listrepo"
)

// ListAccess describes a subject's standing against a list.
type ListAccess struct {
	Exists    bool
	IsOwner   bool
	IsGrantee bool
}

// AccessResolver answers ownership and grant questions for lists.
//
// The list and its grantee set are fetched in one read; the decision fed by
// the result is made against that snapshot. A grant added concurrently after
// the read is not required to be honored for the in-flight request.
type AccessResolver struct {
	lists listrepo.Repository
}

func NewAccessResolver(lists listrepo.Repository) *AccessResolver {
	return &AccessResolver{lists: lists}
}

// ResolveListAccess never treats an absent list as an error: existence errors
// are surfaced by the business operation, not by the gate this feeds.
func (r *AccessResolver) ResolveListAccess(ctx context.Context, listID domain.ListID, subject domain.UserID) (ListAccess, error) {
	l, err := r.lists.GetByID(ctx, listID)
	if err != nil {
		if errors.Is(err, listrepo.ErrNotFound) {
			return ListAccess{}, nil
		}
		return ListAccess{}, err
	}
	return ListAccess{
		Exists:    true,
		IsOwner:   l.OwnerID == subject,
		IsGrantee: l.HasGrantee(subject),
	}, nil
}
