package itemrepo

import (
	"context"

	"github.com/listly-app/shopping-list-api/internal/domain"
)

// Patch carries a partial update for an item record. Nil fields are left
// untouched.
type Patch struct {
	Name *string
	Done *bool
}

// Repository provides access to persisted shopping-list items.
//
// An item references exactly one list (Item.ListID); the list's item set is
// the derived read ListByList, so there is no separate link step to keep in
// sync with inserts.
type Repository interface {
	// InsertMany inserts the batch atomically from the caller's
	// perspective: either all items are persisted or none are.
	InsertMany(ctx context.Context, items []domain.Item) error

	GetByID(ctx context.Context, id domain.ItemID) (domain.Item, error)

	// ListByList returns the items of a list ordered by creation time, then id.
	ListByList(ctx context.Context, listID domain.ListID) ([]domain.Item, error)

	Update(ctx context.Context, id domain.ItemID, p Patch) error

	Delete(ctx context.Context, id domain.ItemID) error

	// DeleteMany removes the given items; absent ids are skipped.
	DeleteMany(ctx context.Context, ids []domain.ItemID) error

	// DeleteByList removes every item belonging to the list.
	// Used by the cascades; items must not outlive their list.
	DeleteByList(ctx context.Context, listID domain.ListID) error
}
