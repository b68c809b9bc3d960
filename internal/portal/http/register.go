package http

import (
	"encoding/json"
	"net/http"

	"github.com/supportportal/portal/internal/portal/service"
	"github.com/supportportal/portal/pkg/httpx"
)

type RegisterHandler struct {
	UserService *service.UserService
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}

// ServeHTTP creates a self-service account. The password is generated and
// emailed, never accepted from the request.
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}
	if req.Username == "" || req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Username and email are required")
		return
	}

	user, err := h.UserService.Register(r.Context(), service.RegisterParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, user)
}
