package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/nullable"

	"github.com/listly-app/shopping-list-api/internal/app/accounts"
	"github.com/listly-app/shopping-list-api/internal/app/authz"
	"github.com/listly-app/shopping-list-api/internal/app/items"
	"github.com/listly-app/shopping-list-api/internal/app/lists"
	"github.com/listly-app/shopping-list-api/internal/app/roles"
	"github.com/listly-app/shopping-list-api/internal/domain"
	"github.com/listly-app/shopping-list-api/internal/platform/auth/tokens"
)

// Server holds the HTTP handlers. Each protected handler runs the
// authorization gate first; only then does it touch a service, so a denied
// caller learns nothing about the resources behind the gate.
type Server struct {
	accounts *accounts.Service
	lists    *lists.Service
	items    *items.Service
	roles    *roles.Resolver
	authz    *authz.Dispatcher
	issuer   *tokens.Issuer
	logger   *slog.Logger
}

func NewServer(
	accountsSvc *accounts.Service,
	listsSvc *lists.Service,
	itemsSvc *items.Service,
	rolesResolver *roles.Resolver,
	dispatcher *authz.Dispatcher,
	issuer *tokens.Issuer,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		accounts: accountsSvc,
		lists:    listsSvc,
		items:    itemsSvc,
		roles:    rolesResolver,
		authz:    dispatcher,
		issuer:   issuer,
		logger:   logger,
	}
}

// ---- request/response shapes ----

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleID   string `json:"roleId"`
}

type updateUserRequest struct {
	Email    nullable.Nullable[string] `json:"email,omitempty"`
	Password nullable.Nullable[string] `json:"password,omitempty"`
	RoleID   nullable.Nullable[string] `json:"roleId,omitempty"`
}

type createListRequest struct {
	Name string `json:"name"`
}

type updateListRequest struct {
	Name nullable.Nullable[string] `json:"name,omitempty"`
}

type shareRequest struct {
	UserID string `json:"userId"`
}

type itemInput struct {
	Name string `json:"name"`
	Done bool   `json:"done"`
}

type createItemsRequest struct {
	Items []itemInput `json:"items"`
}

type deleteItemsRequest struct {
	ItemIDs []string `json:"itemIds"`
}

type updateItemRequest struct {
	Name nullable.Nullable[string] `json:"name,omitempty"`
	Done nullable.Nullable[bool]   `json:"done,omitempty"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	RoleID    string    `json:"roleId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type roleResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type listResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	OwnerID    string    `json:"ownerId"`
	SharedWith []string  `json:"sharedWith"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type itemResponse struct {
	ID        string    `json:"id"`
	ListID    string    `json:"listId"`
	Name      string    `json:"name"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func userFromDomain(u domain.User) userResponse {
	return userResponse{
		ID:        string(u.ID),
		Email:     u.Email,
		RoleID:    string(u.RoleID),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func roleFromDomain(r domain.Role) roleResponse {
	return roleResponse{ID: string(r.ID), Name: string(r.Name)}
}

func listFromDomain(l domain.List) listResponse {
	shared := make([]string, 0, len(l.Grantees))
	for _, g := range l.Grantees {
		shared = append(shared, string(g))
	}
	return listResponse{
		ID:         string(l.ID),
		Name:       l.Name,
		OwnerID:    string(l.OwnerID),
		SharedWith: shared,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

func listsFromDomain(ls []domain.List) []listResponse {
	out := make([]listResponse, 0, len(ls))
	for _, l := range ls {
		out = append(out, listFromDomain(l))
	}
	return out
}

func itemFromDomain(it domain.Item) itemResponse {
	return itemResponse{
		ID:        string(it.ID),
		ListID:    string(it.ListID),
		Name:      it.Name,
		Done:      it.Done,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}
}

func itemsFromDomain(its []domain.Item) []itemResponse {
	out := make([]itemResponse, 0, len(its))
	for _, it := range its {
		out = append(out, itemFromDomain(it))
	}
	return out
}

// ---- shared plumbing ----

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
		return false
	}
	return true
}

// optional unpacks a tri-state field: only a specified, non-null value maps
// to a patch pointer. None of the patchable fields here are clearable, so an
// explicit null reads the same as absent.
func optional[T any](n nullable.Nullable[T]) *T {
	if !n.IsSpecified() || n.IsNull() {
		return nil
	}
	v, err := n.Get()
	if err != nil {
		return nil
	}
	return &v
}

// authorize runs the gate for one request. A missing or denied decision has
// already been written to the response when ok is false.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, mode authz.Mode, target authz.Target) (authz.Claims, authz.Decision, bool) {
	claims, found := ClaimsFromContext(r.Context())
	if !found {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "missing credential")
		return authz.Claims{}, authz.Decision{}, false
	}
	dec := s.authz.Authorize(r.Context(), mode, claims, target)
	if !dec.Allowed {
		writeError(w, r, http.StatusForbidden, "FORBIDDEN", "operation not permitted")
		return claims, dec, false
	}
	return claims, dec, true
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if status, code, message, ok := appError(err); ok {
		if status == http.StatusNoContent {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeError(w, r, status, code, message)
		return
	}
	s.logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error")
}

// ---- public surface ----

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "email and password are required")
		return
	}

	u, err := s.accounts.Register(r.Context(), accounts.RegisterInput{Email: req.Email, Password: req.Password})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": userFromDomain(u)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := s.accounts.Login(r.Context(), accounts.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	token, err := s.issuer.Issue(u.ID, u.RoleID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  userFromDomain(u),
	})
}

// ---- current user ----

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	claims, _, ok := s.authorize(w, r, authz.ModeCurrentUserOnly, authz.Target{})
	if !ok {
		return
	}
	u, err := s.accounts.GetUser(r.Context(), claims.Subject)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": userFromDomain(u)})
}

// ---- users ----

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.authorize(w, r, authz.ModeAdminOnly, authz.Target{}); !ok {
		return
	}
	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" || req.RoleID == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "email, password and roleId are required")
		return
	}

	u, err := s.accounts.CreateUser(r.Context(), accounts.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		RoleID:   domain.RoleID(req.RoleID),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": userFromDomain(u)})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.authorize(w, r, authz.ModeAdminOnly, authz.Target{}); !ok {
		return
	}
	us, err := s.accounts.ListUsers(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out := make([]userResponse, 0, len(us))
	for _, u := range us {
		out = append(out, userFromDomain(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": out})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	targetID := domain.UserID(chi.URLParam(r, "userId"))
	if _, _, ok := s.authorize(w, r, authz.ModeSelfOrAdmin, authz.Target{UserID: targetID}); !ok {
		return
	}
	u, err := s.accounts.GetUser(r.Context(), targetID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": userFromDomain(u)})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	targetID := domain.UserID(chi.URLParam(r, "userId"))
	_, dec, ok := s.authorize(w, r, authz.ModeSelfOrAdmin, authz.Target{UserID: targetID})
	if !ok {
		return
	}
	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := accounts.UpdateUserInput{
		Email:    optional(req.Email),
		Password: optional(req.Password),
	}
	if rid := optional(req.RoleID); rid != nil {
		roleID := domain.RoleID(*rid)
		in.RoleID = &roleID
	}

	u, err := s.accounts.UpdateUser(r.Context(), targetID, in, dec.Elevated)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": userFromDomain(u)})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.authorize(w, r, authz.ModeAdminOnly, authz.Target{}); !ok {
		return
	}
	if err := s.accounts.DeleteUser(r.Context(), domain.UserID(chi.URLParam(r, "userId"))); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListsForUser(w http.ResponseWriter, r *http.Request) {
	targetID := domain.UserID(chi.URLParam(r, "userId"))
	if _, _, ok := s.authorize(w, r, authz.ModeSelfOrAdmin, authz.Target{UserID: targetID}); !ok {
		return
	}
	ls, err := s.lists.AllForUser(r.Context(), targetID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"shoppingLists": listsFromDomain(ls)})
}

func (s *Server) handleSharedListsForUser(w http.ResponseWriter, r *http.Request) {
	targetID := domain.UserID(chi.URLParam(r, "userId"))
	if _, _, ok := s.authorize(w, r, authz.ModeSelfOrAdmin, authz.Target{UserID: targetID}); !ok {
		return
	}
	ls, err := s.lists.SharedWithUser(r.Context(), targetID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"shoppingLists": listsFromDomain(ls)})
}

// ---- roles ----

func (s *Server) handleListRoles(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.authorize(w, r, authz.ModeAdminOnly, authz.Target{}); !ok {
		return
	}
	rs, err := s.roles.All(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out := make([]roleResponse, 0, len(rs))
	for _, role := range rs {
		out = append(out, roleFromDomain(role))
	}
	writeJSON(w, http.StatusOK, map[string]any{"roles": out})
}

func (s *Server) handleGetRole(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.authorize(w, r, authz.ModeAdminOnly, authz.Target{}); !ok {
		return
	}
	role, err := s.roles.ByID(r.Context(), domain.RoleID(chi.URLParam(r, "roleId")))
	if err != nil {
		writeError(w, r, http.StatusNotFound, "ROLE_NOT_FOUND", "role does not exist")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"role": roleFromDomain(role)})
}

// ---- shopping lists ----

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	claims, _, ok := s.authorize(w, r, authz.ModeCurrentUserOnly, authz.Target{})
	if !ok {
		return
	}
	var req createListRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "name is required")
		return
	}

	l, err := s.lists.Create(r.Context(), lists.CreateListInput{Name: req.Name}, claims.Subject)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"shoppingList": listFromDomain(l)})
}

func (s *Server) handleListLists(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.authorize(w, r, authz.ModeAdminOnly, authz.Target{}); !ok {
		return
	}
	ls, err := s.lists.All(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"shoppingLists": listsFromDomain(ls)})
}

func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	listID := domain.ListID(chi.URLParam(r, "listId"))
	if _, _, ok := s.authorize(w, r, authz.ModeResourceAccess, authz.Target{ListID: listID}); !ok {
		return
	}
	l, err := s.lists.Get(r.Context(), listID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"shoppingList": listFromDomain(l)})
}

func (s *Server) handleUpdateList(w http.ResponseWriter, r *http.Request) {
	listID := domain.ListID(chi.URLParam(r, "listId"))
	if _, _, ok := s.authorize(w, r, authz.ModeOwnerOnly, authz.Target{ListID: listID}); !ok {
		return
	}
	var req updateListRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	l, err := s.lists.Update(r.Context(), listID, lists.UpdateListInput{Name: optional(req.Name)})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"shoppingList": listFromDomain(l)})
}

func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	listID := domain.ListID(chi.URLParam(r, "listId"))
	if _, _, ok := s.authorize(w, r, authz.ModeOwnerOnly, authz.Target{ListID: listID}); !ok {
		return
	}
	if err := s.lists.Delete(r.Context(), listID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleShareList(w http.ResponseWriter, r *http.Request) {
	listID := domain.ListID(chi.URLParam(r, "listId"))
	if _, _, ok := s.authorize(w, r, authz.ModeOwnerOnly, authz.Target{ListID: listID}); !ok {
		return
	}
	var req shareRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "userId is required")
		return
	}

	if err := s.lists.Share(r.Context(), listID, domain.UserID(req.UserID)); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnshareList(w http.ResponseWriter, r *http.Request) {
	listID := domain.ListID(chi.URLParam(r, "listId"))
	if _, _, ok := s.authorize(w, r, authz.ModeOwnerOnly, authz.Target{ListID: listID}); !ok {
		return
	}
	if err := s.lists.Unshare(r.Context(), listID, domain.UserID(chi.URLParam(r, "userId"))); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- items ----

func (s *Server) handleCreateItems(w http.ResponseWriter, r *http.Request) {
	listID := domain.ListID(chi.URLParam(r, "listId"))
	if _, _, ok := s.authorize(w, r, authz.ModeOwnerOnly, authz.Target{ListID: listID}); !ok {
		return
	}
	var req createItemsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "items must not be empty")
		return
	}
	for _, in := range req.Items {
		if in.Name == "" {
			writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "every item needs a name")
			return
		}
	}

	inputs := make([]items.ItemInput, 0, len(req.Items))
	for _, in := range req.Items {
		inputs = append(inputs, items.ItemInput{Name: in.Name, Done: in.Done})
	}
	created, err := s.items.CreateBatch(r.Context(), listID, inputs)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"items": itemsFromDomain(created)})
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	listID := domain.ListID(chi.URLParam(r, "listId"))
	if _, _, ok := s.authorize(w, r, authz.ModeResourceAccess, authz.Target{ListID: listID}); !ok {
		return
	}
	its, err := s.items.ForList(r.Context(), listID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": itemsFromDomain(its)})
}

func (s *Server) handleDeleteItemsBatch(w http.ResponseWriter, r *http.Request) {
	listID := domain.ListID(chi.URLParam(r, "listId"))
	if _, _, ok := s.authorize(w, r, authz.ModeResourceAccess, authz.Target{ListID: listID}); !ok {
		return
	}
	var req deleteItemsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ids := make([]domain.ItemID, 0, len(req.ItemIDs))
	for _, id := range req.ItemIDs {
		ids = append(ids, domain.ItemID(id))
	}
	if err := s.items.DeleteBatch(r.Context(), listID, ids); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	listID := domain.ListID(chi.URLParam(r, "listId"))
	if _, _, ok := s.authorize(w, r, authz.ModeResourceAccess, authz.Target{ListID: listID}); !ok {
		return
	}
	var req updateItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	it, err := s.items.Update(r.Context(), listID, domain.ItemID(chi.URLParam(r, "itemId")), items.UpdateItemInput{
		Name: optional(req.Name),
		Done: optional(req.Done),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"item": itemFromDomain(it)})
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	listID := domain.ListID(chi.URLParam(r, "listId"))
	if _, _, ok := s.authorize(w, r, authz.ModeResourceAccess, authz.Target{ListID: listID}); !ok {
		return
	}
	if err := s.items.Delete(r.Context(), listID, domain.ItemID(chi.URLParam(r, "itemId"))); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
