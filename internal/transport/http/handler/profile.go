package handler

import (
	"net/http"

	"github.com/voyagevault/auth-api/internal/application/profile"
	"github.com/voyagevault/auth-api/internal/transport/http/middleware"
)

const maxProfileUploadBytes = 10 << 20 // 10 MiB

// ProfileHandler handles the authenticated profile-update endpoint.
type ProfileHandler struct {
	svc profile.Service
}

func NewProfileHandler(svc profile.Service) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err := r.ParseMultipartForm(maxProfileUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	input := profile.UpdateInput{
		UserID:    u.UserID,
		FirstName: r.FormValue("firstName"),
		LastName:  r.FormValue("lastName"),
	}
	if file, header, err := r.FormFile("profilePicture"); err == nil {
		defer file.Close()
		input.Picture = file
		input.PictureName = header.Filename
		input.ContentType = header.Header.Get("Content-Type")
	}
	updated, err := h.svc.Update(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{Message: "Profile updated", User: updated})
}
