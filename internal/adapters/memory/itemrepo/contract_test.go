package itemrepo

import (
	"testing"

	"github.com/listly-app/shopping-list-api/internal/adapters/contracttest"
	memlistrepo "github.com/listly-app/shopping-list-api/internal/adapters/memory/listrepo"
	memrolerepo "github.com/listly-app/shopping-list-api/internal/adapters/memory/rolerepo"
	memuserrepo "github.com/listly-app/shopping-list-api/internal/adapters/memory/userrepo"
	itemrepoport "github.com/listly-app/shopping-list-api/internal/ports/out/itemrepo"
	listrepoport "github.com/listly-app/shopping-list-api/internal/ports/out/listrepo"
	rolerepoport "github.com/listly-app/shopping-list-api/internal/ports/out/rolerepo"
	userrepoport "github.com/listly-app/shopping-list-api/internal/ports/out/userrepo"
)

func TestContract_ItemRepo(t *testing.T) {
	newRoles := func(t *testing.T) (rolerepoport.Repository, func()) {
		t.Helper()
		return memrolerepo.NewRepo(), nil
	}
	newUsers := func(t *testing.T) (userrepoport.Repository, func()) {
		t.Helper()
		return memuserrepo.NewRepo(), nil
	}
	newLists := func(t *testing.T) (listrepoport.Repository, func()) {
		t.Helper()
		return memlistrepo.NewRepo(), nil
	}
	newItems := func(t *testing.T) (itemrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(), nil
	}
	contracttest.RunItemRepo(t, newRoles, newUsers, newLists, newItems)
}
