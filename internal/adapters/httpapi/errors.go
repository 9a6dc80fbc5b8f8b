package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/listly-app/shopping-list-api/internal/app/accounts"
	"github.com/listly-app/shopping-list-api/internal/app/items"
	"github.com/listly-app/shopping-list-api/internal/app/lists"
)

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	resp := errorResponse{Error: errorBody{Code: code, Message: message}}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		resp.Error.RequestID = rid
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// appError extracts the status/code/message triple the app services attach
// to their failures. The three packages carry structurally identical error
// types; they stay separate so each service owns its vocabulary.
func appError(err error) (status int, code, message string, ok bool) {
	if ae := (*accounts.Error)(nil); errors.As(err, &ae) {
		return ae.Status, ae.Code, ae.Message, true
	}
	if le := (*lists.Error)(nil); errors.As(err, &le) {
		return le.Status, le.Code, le.Message, true
	}
	if ie := (*items.Error)(nil); errors.As(err, &ie) {
		return ie.Status, ie.Code, ie.Message, true
	}
	return 0, "", "", false
}
