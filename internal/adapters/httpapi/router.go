package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/listly-app/shopping-list-api/internal/platform/auth/tokens"
)

// RequestRecorder receives one observation per handled request. Optional.
type RequestRecorder interface {
	RecordHTTPRequest(method string, statusCode int, d time.Duration)
}

// NewRouter constructs the API HTTP router.
//
// This is intentionally a thin adapter: routes and middleware are wired
// here, request decoding and policy checks live on the Server handlers.
func NewRouter(s *Server, verifier *tokens.Verifier, metricsHandler http.Handler, recorder RequestRecorder) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if recorder != nil {
		r.Use(newMetricsMiddleware(recorder))
	}

	// Health and metrics endpoints are unauthenticated infra surfaces.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	// Public authentication surface.
	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)

	// Everything else requires a verified bearer credential.
	r.Group(func(r chi.Router) {
		r.Use(NewAuthMiddleware(verifier))

		r.Get("/me", s.handleGetMe)

		r.Route("/users", func(r chi.Router) {
			r.Post("/", s.handleCreateUser)
			r.Get("/", s.handleListUsers)
			r.Get("/{userId}", s.handleGetUser)
			r.Patch("/{userId}", s.handleUpdateUser)
			r.Delete("/{userId}", s.handleDeleteUser)
			r.Get("/{userId}/shopping-lists", s.handleListsForUser)
			r.Get("/{userId}/shared-lists", s.handleSharedListsForUser)
		})

		r.Route("/roles", func(r chi.Router) {
			r.Get("/", s.handleListRoles)
			r.Get("/{roleId}", s.handleGetRole)
		})

		r.Route("/shopping-lists", func(r chi.Router) {
			r.Post("/", s.handleCreateList)
			r.Get("/", s.handleListLists)
			r.Get("/{listId}", s.handleGetList)
			r.Patch("/{listId}", s.handleUpdateList)
			r.Delete("/{listId}", s.handleDeleteList)

			r.Post("/{listId}/share", s.handleShareList)
			r.Delete("/{listId}/share/{userId}", s.handleUnshareList)

			r.Post("/{listId}/items", s.handleCreateItems)
			r.Get("/{listId}/items", s.handleListItems)
			r.Delete("/{listId}/items", s.handleDeleteItemsBatch)
			r.Patch("/{listId}/items/{itemId}", s.handleUpdateItem)
			r.Delete("/{listId}/items/{itemId}", s.handleDeleteItem)
		})
	})

	return r
}

func newMetricsMiddleware(recorder RequestRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			recorder.RecordHTTPRequest(r.Method, ww.Status(), time.Since(start))
		})
	}
}
