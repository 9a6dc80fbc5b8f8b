package items

import (
	"context"
	"errors"
	"testing"
	"time"

	memclock "github.com/listly-app/shopping-list-api/internal/adapters/memory/clock"
	memitemrepo "github.com/listly-app/shopping-list-api/internal/adapters/memory/itemrepo"
	memlistrepo "github.com/listly-app/shopping-list-api/internal/adapters/memory/listrepo"
	memuserrepo "github.com/listly-app/shopping-list-api/internal/adapters/memory/userrepo"
	"github.com/listly-app/shopping-list-api/internal/app/graph"
	"github.com/listly-app/shopping-list-api/internal/domain"
)

type fixture struct {
	svc         *Service
	listID      domain.ListID
	otherListID domain.ListID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	users := memuserrepo.NewRepo()
	lists := memlistrepo.NewRepo()
	items := memitemrepo.NewRepo()
	clk := memclock.NewManualClock(time.Unix(1000, 0).UTC())
	mutator := graph.NewMutator(users, lists, items, clk, nil, nil)

	now := clk.Now()
	for _, u := range []domain.User{
		{ID: "owner-1", Email: "owner@example.com", PasswordHash: "$2a$10$hash",
			RoleID: "role-user", CreatedAt: now, UpdatedAt: now},
		{ID: "owner-2", Email: "other@example.com", PasswordHash: "$2a$10$hash",
			RoleID: "role-user", CreatedAt: now, UpdatedAt: now},
	} {
		if err := users.Create(ctx, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	l, err := mutator.CreateList(ctx, graph.CreateListInput{Name: "groceries"}, "owner-1")
	if err != nil {
		t.Fatalf("seed list: %v", err)
	}
	other, err := mutator.CreateList(ctx, graph.CreateListInput{Name: "hardware"}, "owner-2")
	if err != nil {
		t.Fatalf("seed other list: %v", err)
	}

	return fixture{svc: NewService(items, lists, mutator), listID: l.ID, otherListID: other.ID}
}

func wantAppError(t *testing.T, err error, status int, code string) {
	t.Helper()
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != status || ae.Code != code {
		t.Fatalf("err=%v, want %s %d", err, code, status)
	}
}

func TestCreateBatch(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateBatch(ctx, f.listID, []ItemInput{
		{Name: "milk"},
		{Name: "bread", Done: true},
	})
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created %d items, want 2", len(created))
	}

	got, err := f.svc.ForList(ctx, f.listID)
	if err != nil {
		t.Fatalf("ForList: %v", err)
	}
	if len(got) != 2 || got[0].Name != "milk" || !got[1].Done {
		t.Fatalf("got=%#v", got)
	}
}

func TestCreateBatch_MissingListIsConflict(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	// Inserting into a nonexistent list is a conflict on this surface, not
	// a not-found; downstream clients depend on the 409.
	_, err := f.svc.CreateBatch(context.Background(), "ghost", []ItemInput{{Name: "milk"}})
	wantAppError(t, err, 409, "LIST_MISSING")
}

func TestForList(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ForList(ctx, f.listID)
	wantAppError(t, err, 204, "NO_ITEMS")

	_, err = f.svc.ForList(ctx, "ghost")
	wantAppError(t, err, 404, "LIST_NOT_FOUND")
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateBatch(ctx, f.listID, []ItemInput{{Name: "milk"}})
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	done := true
	it, err := f.svc.Update(ctx, f.listID, created[0].ID, UpdateItemInput{Done: &done})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !it.Done || it.Name != "milk" {
		t.Fatalf("item=%+v, want done toggled and name untouched", it)
	}

	_, err = f.svc.Update(ctx, f.listID, "ghost", UpdateItemInput{Done: &done})
	wantAppError(t, err, 404, "ITEM_NOT_FOUND")
}

func TestUpdate_ItemOnAnotherListReadsAsNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateBatch(ctx, f.otherListID, []ItemInput{{Name: "screws"}})
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	// Naming a different list must not reach the item, and the denial must
	// not reveal that the item exists.
	name := "defaced"
	_, err = f.svc.Update(ctx, f.listID, created[0].ID, UpdateItemInput{Name: &name})
	wantAppError(t, err, 404, "ITEM_NOT_FOUND")

	got, err := f.svc.ForList(ctx, f.otherListID)
	if err != nil {
		t.Fatalf("ForList: %v", err)
	}
	if got[0].Name != "screws" {
		t.Fatalf("item=%+v, want untouched", got[0])
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateBatch(ctx, f.listID, []ItemInput{{Name: "milk"}})
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if err := f.svc.Delete(ctx, f.listID, created[0].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	err = f.svc.Delete(ctx, f.listID, created[0].ID)
	wantAppError(t, err, 404, "ITEM_NOT_FOUND")
}

func TestDelete_ItemOnAnotherListReadsAsNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateBatch(ctx, f.otherListID, []ItemInput{{Name: "screws"}})
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	err = f.svc.Delete(ctx, f.listID, created[0].ID)
	wantAppError(t, err, 404, "ITEM_NOT_FOUND")

	if got, err := f.svc.ForList(ctx, f.otherListID); err != nil || len(got) != 1 {
		t.Fatalf("got=%v err=%v, want item intact", got, err)
	}
}

func TestDeleteBatch_SkipsAbsentIDs(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateBatch(ctx, f.listID, []ItemInput{{Name: "milk"}, {Name: "bread"}})
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if err := f.svc.DeleteBatch(ctx, f.listID, []domain.ItemID{created[0].ID, "ghost"}); err != nil {
		t.Fatalf("DeleteBatch: %v", err)
	}
	got, err := f.svc.ForList(ctx, f.listID)
	if err != nil {
		t.Fatalf("ForList: %v", err)
	}
	if len(got) != 1 || got[0].ID != created[1].ID {
		t.Fatalf("got=%#v", got)
	}
}

func TestDeleteBatch_ScopedToList(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	mine, err := f.svc.CreateBatch(ctx, f.listID, []ItemInput{{Name: "milk"}})
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	theirs, err := f.svc.CreateBatch(ctx, f.otherListID, []ItemInput{{Name: "screws"}})
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	// Ids on another list are dropped from the batch, not deleted.
	if err := f.svc.DeleteBatch(ctx, f.listID, []domain.ItemID{mine[0].ID, theirs[0].ID}); err != nil {
		t.Fatalf("DeleteBatch: %v", err)
	}
	if got, err := f.svc.ForList(ctx, f.otherListID); err != nil || len(got) != 1 {
		t.Fatalf("got=%v err=%v, want other list untouched", got, err)
	}
	_, err = f.svc.ForList(ctx, f.listID)
	wantAppError(t, err, 204, "NO_ITEMS")
}
