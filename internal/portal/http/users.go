package http

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/supportportal/portal/internal/portal/service"
	"github.com/supportportal/portal/pkg/httpx"
)

type UsersHandler struct {
	UserService *service.UserService
}

// HandleList returns every user, newest first.
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

// HandleFind returns the user identified by the path's username.
func (h *UsersHandler) HandleFind(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.Find(r.Context(), r.PathValue("username"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, user)
}

type createUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
	Locked    bool   `json:"locked"`
}

// HandleCreate adds a user on behalf of an administrator. The request is
// either JSON or a multipart form carrying the same fields plus an optional
// profileImage part.
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	req, image, err := decodeCreateUser(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Username and email are required")
		return
	}

	user, err := h.UserService.Create(r.Context(), service.CreateParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Role:      req.Role,
		Active:    req.Active,
		Locked:    req.Locked,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if image != nil {
		defer image.file.Close()
		user, err = h.UserService.UpdateProfileImage(r.Context(), user.Username, image.contentType, image.file)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	httpx.WriteJSON(w, http.StatusCreated, user)
}

type uploadedImage struct {
	file        multipart.File
	contentType string
}

func decodeCreateUser(r *http.Request) (createUserRequest, *uploadedImage, error) {
	var req createUserRequest

	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, nil, errors.New("Request body must be valid JSON")
		}
		return req, nil, nil
	}

	if err := r.ParseMultipartForm(maxProfileImageSize); err != nil {
		return req, nil, errors.New("Request body must be a valid multipart form")
	}

	req = createUserRequest{
		FirstName: r.FormValue("firstName"),
		LastName:  r.FormValue("lastName"),
		Username:  r.FormValue("username"),
		Email:     r.FormValue("email"),
		Role:      r.FormValue("role"),
		Active:    r.FormValue("active") == "true",
		Locked:    r.FormValue("locked") == "true",
	}

	file, header, err := r.FormFile("profileImage")
	if err != nil {
		// The image part is optional.
		return req, nil, nil
	}
	return req, &uploadedImage{file: file, contentType: header.Header.Get("Content-Type")}, nil
}

type updateUserRequest struct {
	CurrentUsername string `json:"currentUsername"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	Active          bool   `json:"active"`
	Locked          bool   `json:"locked"`
}

// HandleUpdate replaces a user's editable fields.
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}
	if req.CurrentUsername == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Current username is required")
		return
	}
	if req.Username == "" || req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Username and email are required")
		return
	}

	user, err := h.UserService.Update(r.Context(), service.UpdateParams{
		CurrentUsername: req.CurrentUsername,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Username:        req.Username,
		Email:           req.Email,
		Role:            req.Role,
		Active:          req.Active,
		Locked:          req.Locked,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, user)
}

// HandleDelete removes the user named in the path.
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.UserService.Delete(r.Context(), r.PathValue("username")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.NewResponse(http.StatusOK, "User deleted successfully"))
}

type ResetPasswordHandler struct {
	UserService *service.UserService
}

// ServeHTTP mints a new password for the account behind the email address
// and delivers it by mail.
func (h *ResetPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.UserService.ResetPassword(r.Context(), r.PathValue("email")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK,
		httpx.NewResponse(http.StatusOK, "An email with a new password was sent to: "+r.PathValue("email")))
}
