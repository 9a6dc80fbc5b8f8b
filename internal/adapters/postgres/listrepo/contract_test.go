package listrepo

import (
	"testing"

	"github.com/listly-app/shopping-list-api/internal/adapters/contracttest"
	pgrolerepo "github.com/listly-app/shopping-list-api/internal/adapters/postgres/rolerepo"
	"github.com/listly-app/shopping-list-api/internal/adapters/postgres/testutil"
	pguserrepo "github.com/listly-app/shopping-list-api/internal/adapters/postgres/userrepo"
	listrepoport "github.com/listly-app/shopping-list-api/internal/ports/out/listrepo"
	rolerepoport "github.com/listly-app/shopping-list-api/internal/ports/out/rolerepo"
	userrepoport "github.com/listly-app/shopping-list-api/internal/ports/out/userrepo"
)

func TestContract_PostgresListRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	newRoles := func(t *testing.T) (rolerepoport.Repository, func()) {
		t.Helper()
		return pgrolerepo.NewRepo(pool), nil
	}
	newUsers := func(t *testing.T) (userrepoport.Repository, func()) {
		t.Helper()
		return pguserrepo.NewRepo(pool), nil
	}
	newLists := func(t *testing.T) (listrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	}
	contracttest.RunListRepo(t, newRoles, newUsers, newLists)
}
