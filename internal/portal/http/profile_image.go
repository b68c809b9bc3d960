package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/supportportal/portal/internal/portal/media"
	"github.com/supportportal/portal/internal/portal/service"
	"github.com/supportportal/portal/pkg/httpx"
)

// maxProfileImageSize bounds uploads at 2 MiB, enough for an avatar.
const maxProfileImageSize = 2 << 20

type ProfileImageHandler struct {
	UserService *service.UserService
	Images      *media.ImageStore
}

// HandleUpload replaces the authenticated user's profile image. The image
// arrives as the "profileImage" part of a multipart form.
func (h *ProfileImageHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	p, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "You need to log in to access this resource")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxProfileImageSize)
	file, header, err := r.FormFile("profileImage")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "A profileImage file part is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	user, err := h.UserService.UpdateProfileImage(r.Context(), p.Subject, contentType, file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, user)
}

// HandleServe streams the stored image for the username in the path.
func (h *ProfileImageHandler) HandleServe(w http.ResponseWriter, r *http.Request) {
	img, err := h.Images.Open(r.PathValue("username"))
	if errors.Is(err, media.ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "No profile image found for this user")
		return
	} else if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer img.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	_, _ = io.Copy(w, img)
}
