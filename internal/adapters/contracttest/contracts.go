// Package contracttest holds behavioral contracts shared by every storage
// adapter. Each adapter package runs the same suite against its own
// factories, so memory, postgres and mongo stay interchangeable.
//
// Users reference roles and lists reference owners, so the suites take the
// upstream factories they need and seed through them.
package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/listly-app/shopping-list-api/internal/domain"
	itemrepoport "github.com/listly-app/shopping-list-api/internal/ports/out/itemrepo"
	listrepoport "github.com/listly-app/shopping-list-api/internal/ports/out/listrepo"
	rolerepoport "github.com/listly-app/shopping-list-api/internal/ports/out/rolerepo"
	userrepoport "github.com/listly-app/shopping-list-api/internal/ports/out/userrepo"
)

type CleanupFunc = func()

type RoleRepoFactory func(t *testing.T) (rolerepoport.Repository, CleanupFunc)
type UserRepoFactory func(t *testing.T) (userrepoport.Repository, CleanupFunc)
type ListRepoFactory func(t *testing.T) (listrepoport.Repository, CleanupFunc)
type ItemRepoFactory func(t *testing.T) (itemrepoport.Repository, CleanupFunc)

func open[R any](t *testing.T, factory func(t *testing.T) (R, CleanupFunc)) R {
	t.Helper()
	repo, cleanup := factory(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}
	return repo
}

func seedRole(ctx context.Context, t *testing.T, roles rolerepoport.Repository, name domain.RoleName) domain.RoleID {
	t.Helper()
	id := domain.RoleID(uuid.NewString())
	if err := roles.Create(ctx, domain.Role{ID: id, Name: name}); err != nil {
		t.Fatalf("seed role %s: %v", name, err)
	}
	return id
}

func seedUser(ctx context.Context, t *testing.T, users userrepoport.Repository, email string, roleID domain.RoleID) domain.UserID {
	t.Helper()
	now := time.Unix(500, 0).UTC()
	id := domain.UserID(uuid.NewString())
	if err := users.Create(ctx, domain.User{
		ID:           id,
		Email:        email,
		PasswordHash: "$2a$10$seed-hash",
		RoleID:       roleID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return id
}

func RunRoleRepo(t *testing.T, newRepo RoleRepoFactory) {
	t.Helper()
	ctx := context.Background()
	repo := open(t, newRepo)

	adminID := domain.RoleID(uuid.NewString())
	userID := domain.RoleID(uuid.NewString())
	if err := repo.Create(ctx, domain.Role{ID: adminID, Name: domain.RoleAdmin}); err != nil {
		t.Fatalf("Create admin: %v", err)
	}
	if err := repo.Create(ctx, domain.Role{ID: userID, Name: domain.RoleUser}); err != nil {
		t.Fatalf("Create user: %v", err)
	}

	got, err := repo.GetByID(ctx, adminID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != domain.RoleAdmin {
		t.Fatalf("unexpected role: %#v", got)
	}
	if _, err := repo.GetByName(ctx, domain.RoleUser); err != nil {
		t.Fatalf("GetByName: %v", err)
	}

	// Name uniqueness.
	err = repo.Create(ctx, domain.Role{ID: domain.RoleID(uuid.NewString()), Name: domain.RoleAdmin})
	if !errors.Is(err, rolerepoport.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists on duplicate name, got %v", err)
	}

	// Deterministic ordering by name.
	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].Name != domain.RoleAdmin || all[1].Name != domain.RoleUser {
		t.Fatalf("unexpected ordering: %#v", all)
	}

	if _, err := repo.GetByID(ctx, domain.RoleID(uuid.NewString())); !errors.Is(err, rolerepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func RunUserRepo(t *testing.T, newRoleRepo RoleRepoFactory, newRepo UserRepoFactory) {
	t.Helper()
	ctx := context.Background()
	roles := open(t, newRoleRepo)
	repo := open(t, newRepo)

	roleID := seedRole(ctx, t, roles, domain.RoleUser)

	now := time.Unix(1000, 0).UTC()
	aID := domain.UserID(uuid.NewString())
	if err := repo.Create(ctx, domain.User{
		ID:           aID,
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$hash-a",
		RoleID:       roleID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		t.Fatalf("Create a: %v", err)
	}

	if _, err := repo.GetByID(ctx, aID); err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	got, err := repo.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != aID || got.PasswordHash != "$2a$10$hash-a" {
		t.Fatalf("unexpected user: %#v", got)
	}

	// Email uniqueness.
	err = repo.Create(ctx, domain.User{
		ID:           domain.UserID(uuid.NewString()),
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$hash-x",
		RoleID:       roleID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if !errors.Is(err, userrepoport.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	// Deterministic list ordering by email.
	bID := domain.UserID(uuid.NewString())
	if err := repo.Create(ctx, domain.User{
		ID:           bID,
		Email:        "bob@example.com",
		PasswordHash: "$2a$10$hash-b",
		RoleID:       roleID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		t.Fatalf("Create b: %v", err)
	}
	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].Email != "alice@example.com" || all[1].Email != "bob@example.com" {
		t.Fatalf("unexpected ordering: %#v", all)
	}

	// Patch semantics: nil fields untouched, email collision rejected.
	newEmail := "bob@example.com"
	if err := repo.Update(ctx, aID, userrepoport.Patch{Email: &newEmail}); !errors.Is(err, userrepoport.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken on patched collision, got %v", err)
	}
	newHash := "$2a$10$hash-a2"
	if err := repo.Update(ctx, aID, userrepoport.Patch{PasswordHash: &newHash}); err != nil {
		t.Fatalf("Update hash: %v", err)
	}
	got, err = repo.GetByID(ctx, aID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if got.Email != "alice@example.com" || got.PasswordHash != newHash {
		t.Fatalf("patch touched wrong fields: %#v", got)
	}
	if !got.UpdatedAt.After(now) {
		t.Fatalf("UpdatedAt not refreshed: %v", got.UpdatedAt)
	}

	if err := repo.Update(ctx, domain.UserID(uuid.NewString()), userrepoport.Patch{PasswordHash: &newHash}); !errors.Is(err, userrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on unknown update, got %v", err)
	}

	if err := repo.Delete(ctx, bID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, bID); !errors.Is(err, userrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, bID); !errors.Is(err, userrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func RunListRepo(t *testing.T, newRoleRepo RoleRepoFactory, newUserRepo UserRepoFactory, newRepo ListRepoFactory) {
	t.Helper()
	ctx := context.Background()
	roles := open(t, newRoleRepo)
	users := open(t, newUserRepo)
	repo := open(t, newRepo)

	roleID := seedRole(ctx, t, roles, domain.RoleUser)
	owner := seedUser(ctx, t, users, "owner@example.com", roleID)
	other := seedUser(ctx, t, users, "other@example.com", roleID)

	// Grantee ids are membership entries, not user rows, so a bare id is
	// enough here; the cascade tests cover membership of real users.
	grantee := domain.UserID(uuid.NewString())

	now := time.Unix(2000, 0).UTC()
	groceriesID := domain.ListID(uuid.NewString())
	if err := repo.Create(ctx, domain.List{
		ID:        groceriesID,
		Name:      "groceries",
		OwnerID:   owner,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("Create groceries: %v", err)
	}

	// Name uniqueness.
	err := repo.Create(ctx, domain.List{
		ID:        domain.ListID(uuid.NewString()),
		Name:      "groceries",
		OwnerID:   other,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if !errors.Is(err, listrepoport.ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}

	hardwareID := domain.ListID(uuid.NewString())
	if err := repo.Create(ctx, domain.List{
		ID:        hardwareID,
		Name:      "hardware",
		OwnerID:   other,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("Create hardware: %v", err)
	}

	// Derived owned set.
	owned, err := repo.ListByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(owned) != 1 || owned[0].ID != groceriesID {
		t.Fatalf("unexpected owned set: %#v", owned)
	}

	// Grantee membership: idempotent add, visible in GetByID and ListSharedWith.
	if err := repo.AddGrantee(ctx, groceriesID, grantee); err != nil {
		t.Fatalf("AddGrantee: %v", err)
	}
	if err := repo.AddGrantee(ctx, groceriesID, grantee); err != nil {
		t.Fatalf("AddGrantee repeat: %v", err)
	}
	got, err := repo.GetByID(ctx, groceriesID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Grantees) != 1 || got.Grantees[0] != grantee {
		t.Fatalf("unexpected grantee set: %#v", got.Grantees)
	}
	shared, err := repo.ListSharedWith(ctx, grantee)
	if err != nil {
		t.Fatalf("ListSharedWith: %v", err)
	}
	if len(shared) != 1 || shared[0].ID != groceriesID {
		t.Fatalf("unexpected shared set: %#v", shared)
	}

	// Removing an absent grantee is a no-op.
	if err := repo.RemoveGrantee(ctx, hardwareID, grantee); err != nil {
		t.Fatalf("RemoveGrantee absent: %v", err)
	}

	// Pull everywhere clears every membership in one pass.
	if err := repo.AddGrantee(ctx, hardwareID, grantee); err != nil {
		t.Fatalf("AddGrantee hardware: %v", err)
	}
	if err := repo.RemoveGranteeEverywhere(ctx, grantee); err != nil {
		t.Fatalf("RemoveGranteeEverywhere: %v", err)
	}
	shared, err = repo.ListSharedWith(ctx, grantee)
	if err != nil {
		t.Fatalf("ListSharedWith after pull: %v", err)
	}
	if len(shared) != 0 {
		t.Fatalf("expected empty shared set, got %#v", shared)
	}

	// Rename refreshes UpdatedAt.
	renamed := "weekly groceries"
	if err := repo.Update(ctx, groceriesID, listrepoport.Patch{Name: &renamed}); err != nil {
		t.Fatalf("Update name: %v", err)
	}
	got, err = repo.GetByID(ctx, groceriesID)
	if err != nil {
		t.Fatalf("GetByID after rename: %v", err)
	}
	if got.Name != renamed {
		t.Fatalf("name=%q, want %q", got.Name, renamed)
	}
	if !got.UpdatedAt.After(now) {
		t.Fatalf("UpdatedAt not refreshed: %v", got.UpdatedAt)
	}

	// Rename collision.
	taken := "hardware"
	if err := repo.Update(ctx, groceriesID, listrepoport.Patch{Name: &taken}); !errors.Is(err, listrepoport.ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken on rename, got %v", err)
	}

	if err := repo.Delete(ctx, hardwareID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, hardwareID); !errors.Is(err, listrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.AddGrantee(ctx, hardwareID, grantee); !errors.Is(err, listrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound granting on deleted list, got %v", err)
	}
	if err := repo.RemoveGrantee(ctx, hardwareID, grantee); !errors.Is(err, listrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound revoking on deleted list, got %v", err)
	}
}

func RunItemRepo(t *testing.T, newRoleRepo RoleRepoFactory, newUserRepo UserRepoFactory, newListRepo ListRepoFactory, newItemRepo ItemRepoFactory) {
	t.Helper()
	ctx := context.Background()
	roles := open(t, newRoleRepo)
	users := open(t, newUserRepo)
	lists := open(t, newListRepo)
	items := open(t, newItemRepo)

	roleID := seedRole(ctx, t, roles, domain.RoleUser)
	owner := seedUser(ctx, t, users, "shopper@example.com", roleID)

	now := time.Unix(3000, 0).UTC()
	listID := domain.ListID(uuid.NewString())
	otherListID := domain.ListID(uuid.NewString())
	if err := lists.Create(ctx, domain.List{ID: listID, Name: "camping", OwnerID: owner, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("seed list: %v", err)
	}
	if err := lists.Create(ctx, domain.List{ID: otherListID, Name: "pantry", OwnerID: owner, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("seed other list: %v", err)
	}

	milkID := domain.ItemID(uuid.NewString())
	breadID := domain.ItemID(uuid.NewString())
	if err := items.InsertMany(ctx, []domain.Item{
		{ID: milkID, ListID: listID, Name: "milk", CreatedAt: now, UpdatedAt: now},
		{ID: breadID, ListID: listID, Name: "bread", CreatedAt: now.Add(time.Second), UpdatedAt: now.Add(time.Second)},
	}); err != nil {
		t.Fatalf("InsertMany: %v", err)
	}

	// Creation-time ordering, not name ordering.
	got, err := items.ListByList(ctx, listID)
	if err != nil {
		t.Fatalf("ListByList: %v", err)
	}
	if len(got) != 2 || got[0].ID != milkID || got[1].ID != breadID {
		t.Fatalf("unexpected ordering: %#v", got)
	}

	// Items are scoped to their list.
	other, err := items.ListByList(ctx, otherListID)
	if err != nil {
		t.Fatalf("ListByList other: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected empty list, got %#v", other)
	}

	done := true
	if err := items.Update(ctx, milkID, itemrepoport.Patch{Done: &done}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	one, err := items.GetByID(ctx, milkID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !one.Done || one.Name != "milk" {
		t.Fatalf("patch touched wrong fields: %#v", one)
	}
	if !one.UpdatedAt.After(now) {
		t.Fatalf("UpdatedAt not refreshed: %v", one.UpdatedAt)
	}

	// DeleteMany skips absent ids.
	if err := items.DeleteMany(ctx, []domain.ItemID{milkID, domain.ItemID(uuid.NewString())}); err != nil {
		t.Fatalf("DeleteMany: %v", err)
	}
	if _, err := items.GetByID(ctx, milkID); !errors.Is(err, itemrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after DeleteMany, got %v", err)
	}

	if err := items.DeleteByList(ctx, listID); err != nil {
		t.Fatalf("DeleteByList: %v", err)
	}
	got, err = items.ListByList(ctx, listID)
	if err != nil {
		t.Fatalf("ListByList after cascade: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty list after DeleteByList, got %#v", got)
	}
}
