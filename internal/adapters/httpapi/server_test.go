package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	memitemrepo "github.com/listly-app/shopping-list-api/internal/adapters/memory/itemrepo"
	memlistrepo "github.com/listly-app/shopping-list-api/internal/adapters/memory/listrepo"
	memrolerepo "github.com/listly-app/shopping-list-api/internal/adapters/memory/rolerepo"
	memuserrepo "github.com/listly-app/shopping-list-api/internal/adapters/memory/userrepo"
	"github.com/listly-app/shopping-list-api/internal/app/accounts"
	"github.com/listly-app/shopping-list-api/internal/app/authz"
	"github.com/listly-app/shopping-list-api/internal/app/graph"
	"github.com/listly-app/shopping-list-api/internal/app/items"
	"github.com/listly-app/shopping-list-api/internal/app/lists"
	"github.com/listly-app/shopping-list-api/internal/app/roles"
	"github.com/listly-app/shopping-list-api/internal/domain"
	"github.com/listly-app/shopping-list-api/internal/platform/auth/tokens"
	platformclock "github.com/listly-app/shopping-list-api/internal/platform/clock"
)

var testSecret = []byte("test-secret")

type testAPI struct {
	handler http.Handler
	issuer  *tokens.Issuer

	adminToken string
	aliceToken string
	bobToken   string

	adminID domain.UserID
	aliceID domain.UserID
	bobID   domain.UserID
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	roleRepo := memrolerepo.NewRepo()
	userRepo := memuserrepo.NewRepo()
	listRepo := memlistrepo.NewRepo()
	itemRepo := memitemrepo.NewRepo()

	ctx := context.Background()
	adminRole := domain.Role{ID: "role-admin", Name: domain.RoleAdmin}
	userRole := domain.Role{ID: "role-user", Name: domain.RoleUser}
	for _, role := range []domain.Role{adminRole, userRole} {
		if err := roleRepo.Create(ctx, role); err != nil {
			t.Fatalf("seed role: %v", err)
		}
	}

	clk := platformclock.NewSystemClock()
	rolesResolver := roles.NewResolver(roleRepo, nil)
	dispatcher := authz.NewDispatcher(rolesResolver, authz.NewAccessResolver(listRepo), nil, nil)
	mutator := graph.NewMutator(userRepo, listRepo, itemRepo, clk, nil, nil)

	accountsSvc := accounts.NewService(userRepo, rolesResolver, mutator, clk)
	accountsSvc.SetBcryptCostForTest(bcrypt.MinCost)
	listsSvc := lists.NewService(listRepo, userRepo, mutator)
	itemsSvc := items.NewService(itemRepo, listRepo, mutator)

	issuer := tokens.NewIssuer(testSecret, time.Hour)
	verifier := tokens.NewVerifier(testSecret)

	server := NewServer(accountsSvc, listsSvc, itemsSvc, rolesResolver, dispatcher, issuer, nil)
	api := &testAPI{
		handler: NewRouter(server, verifier, nil, nil),
		issuer:  issuer,
	}

	admin, err := accountsSvc.CreateUser(ctx, accounts.CreateUserInput{
		Email: "admin@example.com", Password: "pw", RoleID: adminRole.ID,
	})
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	alice, err := accountsSvc.Register(ctx, accounts.RegisterInput{Email: "alice@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("seed alice: %v", err)
	}
	bob, err := accountsSvc.Register(ctx, accounts.RegisterInput{Email: "bob@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("seed bob: %v", err)
	}

	api.adminID, api.aliceID, api.bobID = admin.ID, alice.ID, bob.ID
	api.adminToken = mustIssue(t, issuer, admin)
	api.aliceToken = mustIssue(t, issuer, alice)
	api.bobToken = mustIssue(t, issuer, bob)
	return api
}

func mustIssue(t *testing.T, issuer *tokens.Issuer, u domain.User) string {
	t.Helper()
	tok, err := issuer.Issue(u.ID, u.RoleID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

func (a *testAPI) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, rec)
	e, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("no error object in %q", rec.Body.String())
	}
	code, _ := e["code"].(string)
	return code
}

func (a *testAPI) createList(t *testing.T, token, name string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/shopping-lists", token, `{"name":"`+name+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create list: status=%d body=%s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	l := body["shoppingList"].(map[string]any)
	return l["id"].(string)
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	// No credential, malformed header and a garbage token all read the same.
	if rec := api.do(t, http.MethodGet, "/me", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status=%d", rec.Code)
	}
	if rec := api.do(t, http.MethodGet, "/me", "not-a-jwt", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status=%d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwdw==")
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("basic auth: status=%d", rec.Code)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/register", "", `{"email":"carol@example.com","password":"pw"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = api.do(t, http.MethodPost, "/login", "", `{"email":"carol@example.com","password":"pw"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status=%d body=%s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("login response carries no token: %s", rec.Body.String())
	}

	// The minted token opens the protected surface.
	rec = api.do(t, http.MethodGet, "/me", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("me: status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = api.do(t, http.MethodPost, "/login", "", `{"email":"carol@example.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: status=%d", rec.Code)
	}
}

func TestUserDirectoryIsAdminOnly(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	if rec := api.do(t, http.MethodGet, "/users", api.aliceToken, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin: status=%d", rec.Code)
	}
	rec := api.do(t, http.MethodGet, "/users", api.adminToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestGetUser_SelfOrAdmin(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	if rec := api.do(t, http.MethodGet, "/users/"+string(api.aliceID), api.aliceToken, ""); rec.Code != http.StatusOK {
		t.Fatalf("self: status=%d", rec.Code)
	}
	if rec := api.do(t, http.MethodGet, "/users/"+string(api.aliceID), api.adminToken, ""); rec.Code != http.StatusOK {
		t.Fatalf("admin: status=%d", rec.Code)
	}
	if rec := api.do(t, http.MethodGet, "/users/"+string(api.aliceID), api.bobToken, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("stranger: status=%d", rec.Code)
	}
}

func TestUpdateUser_RoleChangeNeedsElevation(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	// Alice may patch her own email but not her role.
	rec := api.do(t, http.MethodPatch, "/users/"+string(api.aliceID), api.aliceToken, `{"email":"alice2@example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("self email patch: status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = api.do(t, http.MethodPatch, "/users/"+string(api.aliceID), api.aliceToken, `{"roleId":"role-admin"}`)
	if rec.Code != http.StatusForbidden || errorCode(t, rec) != "ROLE_CHANGE_FORBIDDEN" {
		t.Fatalf("self role patch: status=%d code=%s", rec.Code, errorCode(t, rec))
	}

	rec = api.do(t, http.MethodPatch, "/users/"+string(api.aliceID), api.adminToken, `{"roleId":"role-admin"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin role patch: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestListAccessModes(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	listID := api.createList(t, api.aliceToken, "groceries")

	// Before sharing, Bob sees a plain deny that does not reveal the list.
	if rec := api.do(t, http.MethodGet, "/shopping-lists/"+listID, api.bobToken, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("stranger read: status=%d", rec.Code)
	}
	// A nonexistent list denies identically for a non-admin.
	if rec := api.do(t, http.MethodGet, "/shopping-lists/ghost", api.bobToken, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("missing list read: status=%d", rec.Code)
	}

	rec := api.do(t, http.MethodPost, "/shopping-lists/"+listID+"/share", api.aliceToken, `{"userId":"`+string(api.bobID)+`"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("share: status=%d body=%s", rec.Code, rec.Body.String())
	}

	// The grant opens reads but not owner-level operations.
	if rec := api.do(t, http.MethodGet, "/shopping-lists/"+listID, api.bobToken, ""); rec.Code != http.StatusOK {
		t.Fatalf("grantee read: status=%d", rec.Code)
	}
	if rec := api.do(t, http.MethodPatch, "/shopping-lists/"+listID, api.bobToken, `{"name":"mine now"}`); rec.Code != http.StatusForbidden {
		t.Fatalf("grantee rename: status=%d", rec.Code)
	}
	if rec := api.do(t, http.MethodDelete, "/shopping-lists/"+listID, api.bobToken, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("grantee delete: status=%d", rec.Code)
	}

	// The owner renames and deletes freely.
	if rec := api.do(t, http.MethodPatch, "/shopping-lists/"+listID, api.aliceToken, `{"name":"weekly shop"}`); rec.Code != http.StatusOK {
		t.Fatalf("owner rename: status=%d", rec.Code)
	}
	if rec := api.do(t, http.MethodDelete, "/shopping-lists/"+listID, api.aliceToken, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("owner delete: status=%d", rec.Code)
	}
}

func TestItemsFlow(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	listID := api.createList(t, api.aliceToken, "groceries")
	rec := api.do(t, http.MethodPost, "/shopping-lists/"+listID+"/share", api.aliceToken, `{"userId":"`+string(api.bobID)+`"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("share: status=%d", rec.Code)
	}

	// Only the owner may insert items.
	rec = api.do(t, http.MethodPost, "/shopping-lists/"+listID+"/items", api.bobToken, `{"items":[{"name":"milk"}]}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("grantee insert: status=%d", rec.Code)
	}
	rec = api.do(t, http.MethodPost, "/shopping-lists/"+listID+"/items", api.aliceToken, `{"items":[{"name":"milk"},{"name":"bread","done":true}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("owner insert: status=%d body=%s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	created := body["items"].([]any)
	if len(created) != 2 {
		t.Fatalf("created %d items", len(created))
	}
	itemID := created[0].(map[string]any)["id"].(string)

	// Grantees read and update items.
	if rec := api.do(t, http.MethodGet, "/shopping-lists/"+listID+"/items", api.bobToken, ""); rec.Code != http.StatusOK {
		t.Fatalf("grantee list items: status=%d", rec.Code)
	}
	rec = api.do(t, http.MethodPatch, "/shopping-lists/"+listID+"/items/"+itemID, api.bobToken, `{"done":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("grantee item patch: status=%d body=%s", rec.Code, rec.Body.String())
	}
	item := decodeBody(t, rec)["item"].(map[string]any)
	if item["done"] != true {
		t.Fatalf("item=%v, want done", item)
	}

	if rec := api.do(t, http.MethodDelete, "/shopping-lists/"+listID+"/items/"+itemID, api.bobToken, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("item delete: status=%d", rec.Code)
	}
}

func TestItemsAreBoundToTheAuthorizedList(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	bobList := api.createList(t, api.bobToken, "bob's list")
	rec := api.do(t, http.MethodPost, "/shopping-lists/"+bobList+"/items", api.bobToken, `{"items":[{"name":"screws"}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("insert: status=%d", rec.Code)
	}
	bobItem := decodeBody(t, rec)["items"].([]any)[0].(map[string]any)["id"].(string)

	// Alice holds no grant on Bob's list. Passing her own list id in the
	// path must not let her reach Bob's item through it.
	aliceList := api.createList(t, api.aliceToken, "alice's list")
	rec = api.do(t, http.MethodPatch, "/shopping-lists/"+aliceList+"/items/"+bobItem, api.aliceToken, `{"name":"defaced"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("cross-list patch: status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = api.do(t, http.MethodDelete, "/shopping-lists/"+aliceList+"/items/"+bobItem, api.aliceToken, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("cross-list delete: status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = api.do(t, http.MethodDelete, "/shopping-lists/"+aliceList+"/items", api.aliceToken, `{"itemIds":["`+bobItem+`"]}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("cross-list batch delete: status=%d body=%s", rec.Code, rec.Body.String())
	}

	// Bob's item is untouched throughout.
	rec = api.do(t, http.MethodGet, "/shopping-lists/"+bobList+"/items", api.bobToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("bob items: status=%d", rec.Code)
	}
	got := decodeBody(t, rec)["items"].([]any)
	if len(got) != 1 || got[0].(map[string]any)["name"] != "screws" {
		t.Fatalf("items=%v, want screws intact", got)
	}
}

func TestItemsBatchIntoMissingListIsConflictForAdmin(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	// An admin passes the gate without an existence check, so the missing
	// list surfaces as the business-level conflict.
	rec := api.do(t, http.MethodPost, "/shopping-lists/ghost/items", api.adminToken, `{"items":[{"name":"milk"}]}`)
	if rec.Code != http.StatusConflict || errorCode(t, rec) != "LIST_MISSING" {
		t.Fatalf("status=%d code=%s, want 409 LIST_MISSING", rec.Code, errorCode(t, rec))
	}
}

func TestDeleteUserCascades(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	listID := api.createList(t, api.aliceToken, "groceries")
	rec := api.do(t, http.MethodPost, "/shopping-lists/"+listID+"/items", api.aliceToken, `{"items":[{"name":"milk"}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("insert: status=%d", rec.Code)
	}

	// Deleting users is an administrative operation.
	if rec := api.do(t, http.MethodDelete, "/users/"+string(api.aliceID), api.aliceToken, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("self delete: status=%d", rec.Code)
	}
	if rec := api.do(t, http.MethodDelete, "/users/"+string(api.aliceID), api.adminToken, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("admin delete: status=%d", rec.Code)
	}

	// The owned list is gone with its owner.
	rec = api.do(t, http.MethodGet, "/shopping-lists/"+listID, api.adminToken, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("list after cascade: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestEmptyCollectionsAreNoContent(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/users/"+string(api.bobID)+"/shopping-lists", api.bobToken, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("empty owned set: status=%d body=%s", rec.Code, rec.Body.String())
	}

	listID := api.createList(t, api.bobToken, "empty list")
	rec = api.do(t, http.MethodGet, "/shopping-lists/"+listID+"/items", api.bobToken, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("empty items: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestRolesAreAdminOnly(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	if rec := api.do(t, http.MethodGet, "/roles", api.aliceToken, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin roles: status=%d", rec.Code)
	}
	rec := api.do(t, http.MethodGet, "/roles", api.adminToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin roles: status=%d", rec.Code)
	}
	if rec := api.do(t, http.MethodGet, "/roles/ghost", api.adminToken, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown role: status=%d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	if rec := api.do(t, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz: status=%d", rec.Code)
	}
}
