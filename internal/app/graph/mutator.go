// Package graph maintains the owned-resource hierarchy: user → list → item,
// plus shared-access grants. Its operations run after the authorization gate
// has approved the request.
package graph

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/listly-app/shopping-list-api/internal/domain"
	clockport "github.com/listly-app/shopping-list-api/internal/ports/out/clock"
	"github.com/listly-app/shopping-list-api/internal/ports/out/itemrepo"
	"github.com/listly-app/shopping-list-api/internal/ports/out/listrepo"
	"github.com/listly-app/shopping-list-api/internal/ports/out/userrepo"
)

// ResidueRecorder observes cascades that finish with repair work left over.
type ResidueRecorder interface {
	RecordCascadeResidue()
}

// Mutator performs creation and cascading deletion across the resource graph.
//
// Cascades are ordered sequences of independent writes, not one transaction.
// The ordering is what keeps the dangling-reference invariants intact at
// every intermediate step: items never outlive their list, lists never
// outlive their owner-facing deletion.
type Mutator struct {
	users userrepo.Repository
	lists listrepo.Repository
	items itemrepo.Repository

	clock   clockport.Clock
	logger  *slog.Logger
	metrics ResidueRecorder

	newListID func() domain.ListID
	newItemID func() domain.ItemID
}

// NewMutator constructs a Mutator. logger and metrics may be nil.
func NewMutator(users userrepo.Repository, lists listrepo.Repository, items itemrepo.Repository, clk clockport.Clock, logger *slog.Logger, metrics ResidueRecorder) *Mutator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mutator{
		users:   users,
		lists:   lists,
		items:   items,
		clock:   clk,
		logger:  logger,
		metrics: metrics,
		newListID: func() domain.ListID {
			return domain.ListID(uuid.NewString())
		},
		newItemID: func() domain.ItemID {
			return domain.ItemID(uuid.NewString())
		},
	}
}

// SetIDGeneratorsForTest overrides id generation for deterministic tests.
// It should not be used in production code.
func (m *Mutator) SetIDGeneratorsForTest(newListID func() domain.ListID, newItemID func() domain.ItemID) {
	if newListID != nil {
		m.newListID = newListID
	}
	if newItemID != nil {
		m.newItemID = newItemID
	}
}

// DeleteUser removes a user and everything hanging off it:
//
//  1. every item of every list the user owns, then those lists, then the
//     user record itself, in that order, so no item ever references a
//     deleted list;
//  2. the user's id is pulled from every remaining list's grantee set.
//
// A failure during step 1 aborts with an error. A failure during step 2 is
// logged and swallowed: the user-facing outcome (user and owned resources
// gone) is already achieved, no reference dangles, and the stale grantee
// entries are left for out-of-band reconciliation.
func (m *Mutator) DeleteUser(ctx context.Context, userID domain.UserID) (bool, error) {
	if _, err := m.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}

	owned, err := m.lists.ListByOwner(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, l := range owned {
		if err := m.items.DeleteByList(ctx, l.ID); err != nil {
			return false, err
		}
		if err := m.lists.Delete(ctx, l.ID); err != nil && !errors.Is(err, listrepo.ErrNotFound) {
			return false, err
		}
	}

	if err := m.users.Delete(ctx, userID); err != nil && !errors.Is(err, userrepo.ErrNotFound) {
		return false, err
	}

	if err := m.lists.RemoveGranteeEverywhere(ctx, userID); err != nil {
		m.logger.Error("delete-user cascade: grantee cleanup failed, leaving residue for reconciliation",
			"user_id", string(userID), "err", err)
		if m.metrics != nil {
			m.metrics.RecordCascadeResidue()
		}
	}

	return true, nil
}

// CreateListInput carries the caller-validated fields of a new list.
type CreateListInput struct {
	Name string
}

// CreateList persists a new list for ownerID. The owner must exist
// (ErrOwnerNotFound) and the name must be unique (ErrListNameTaken).
//
// The created list is immediately visible in the owner's owned set: ownership
// lives on the list record and the owned set is a derived read, so there is
// no second link write to forget or to fail.
func (m *Mutator) CreateList(ctx context.Context, in CreateListInput, ownerID domain.UserID) (domain.List, error) {
	if _, err := m.users.GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return domain.List{}, ErrOwnerNotFound
		}
		return domain.List{}, err
	}

	now := m.clock.Now()
	l := domain.List{
		ID:        m.newListID(),
		Name:      domain.NormalizeName(in.Name),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.lists.Create(ctx, l); err != nil {
		if errors.Is(err, listrepo.ErrNameTaken) {
			return domain.List{}, ErrListNameTaken
		}
		return domain.List{}, err
	}
	return l, nil
}

// ItemInput carries the caller-validated fields of one new item.
type ItemInput struct {
	Name string
	Done bool
}

// CreateItemsBatch inserts items into an existing list. An absent list is
// reported as ErrListMissing (surfaced upward as a conflict, see errors.go).
//
// The insert is a single all-or-nothing batch and the list's item set is the
// derived read over Item.ListID, so a partially-linked batch cannot occur.
func (m *Mutator) CreateItemsBatch(ctx context.Context, listID domain.ListID, inputs []ItemInput) ([]domain.Item, error) {
	if _, err := m.lists.GetByID(ctx, listID); err != nil {
		if errors.Is(err, listrepo.ErrNotFound) {
			return nil, ErrListMissing
		}
		return nil, err
	}

	now := m.clock.Now()
	items := make([]domain.Item, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, domain.Item{
			ID:        m.newItemID(),
			ListID:    listID,
			Name:      domain.NormalizeName(in.Name),
			Done:      in.Done,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if err := m.items.InsertMany(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteList removes a list and its items: items first, then the list, so
// no item ever references a deleted list.
func (m *Mutator) DeleteList(ctx context.Context, listID domain.ListID) (bool, error) {
	if _, err := m.lists.GetByID(ctx, listID); err != nil {
		if errors.Is(err, listrepo.ErrNotFound) {
			return false, listrepo.ErrNotFound
		}
		return false, err
	}
	if err := m.items.DeleteByList(ctx, listID); err != nil {
		return false, err
	}
	if err := m.lists.Delete(ctx, listID); err != nil && !errors.Is(err, listrepo.ErrNotFound) {
		return false, err
	}
	return true, nil
}
