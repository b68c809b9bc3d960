package http

import (
	"errors"
	"net/http"

	"github.com/supportportal/portal/internal/portal/media"
	"github.com/supportportal/portal/internal/portal/service"
	"github.com/supportportal/portal/pkg/httpx"
	"github.com/supportportal/portal/pkg/slogx"
)

const serverErrorMessage = "An error occurred while processing the request"

// writeServiceError maps service errors onto the structured error body.
// Unknown errors are logged and collapse to a plain 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "Username / password incorrect. Please try again")
	case errors.Is(err, service.ErrAccountLocked):
		httpx.WriteError(w, http.StatusUnauthorized, "Your account has been locked. Please contact administration")
	case errors.Is(err, service.ErrAccountDisabled):
		httpx.WriteError(w, http.StatusUnauthorized, "Your account has been disabled. Please contact administration")
	case errors.Is(err, service.ErrUsernameExists):
		httpx.WriteError(w, http.StatusConflict, "Username already exists. Please choose another")
	case errors.Is(err, service.ErrEmailExists):
		httpx.WriteError(w, http.StatusConflict, "Email already exists. Please choose another")
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, "No user was found for the given username")
	case errors.Is(err, service.ErrEmailNotFound):
		httpx.WriteError(w, http.StatusNotFound, "No user was found for the given email")
	case errors.Is(err, service.ErrInvalidRole):
		httpx.WriteError(w, http.StatusBadRequest, "Unknown role")
	case errors.Is(err, media.ErrUnsupportedType):
		httpx.WriteError(w, http.StatusBadRequest, "Profile images must be JPEG, PNG or GIF")
	default:
		slogx.FromContext(r.Context()).Error("request failed",
			"path", r.URL.Path,
			"error", err,
		)
		httpx.WriteError(w, http.StatusInternalServerError, serverErrorMessage)
	}
}
