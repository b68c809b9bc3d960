package http

import (
	"encoding/json"
	"net/http"

	"github.com/supportportal/portal/internal/portal/service"
	"github.com/supportportal/portal/pkg/httpx"
)

type LoginHandler struct {
	AuthService *service.AuthService

	// TokenHeader names the response header that carries the issued token.
	TokenHeader string
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ServeHTTP authenticates a username/password pair. On success the user JSON
// is the body and the signed token travels in the configured header.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}
	if req.Username == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, token, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	w.Header().Set(h.TokenHeader, token)
	httpx.WriteJSON(w, http.StatusOK, user)
}
