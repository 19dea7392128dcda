package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/voyagevault/auth-api/internal/application/oauth"
	"github.com/voyagevault/auth-api/internal/config"
	"github.com/voyagevault/auth-api/internal/pkg/validate"
	"github.com/voyagevault/auth-api/internal/transport/http/middleware"
)

// GoogleHandler handles the Google identity-linking endpoints.
type GoogleHandler struct {
	svc oauth.Service
	cfg *config.Config
}

func NewGoogleHandler(svc oauth.Service, cfg *config.Config) *GoogleHandler {
	return &GoogleHandler{svc: svc, cfg: cfg}
}

func (h *GoogleHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"idToken" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.SignInWithIDToken(r.Context(), req.IDToken)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	middleware.SetAuthCookies(w, h.cfg, res.Tokens)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Signed in with Google", Email: res.User.Email})
}

// Callback is the only flow whose response is a redirect rather than JSON:
// the browser lands here from Google's consent page, and is sent back to
// the frontend with a success or error indicator.
func (h *GoogleHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirect(w, r, "error", "")
		return
	}
	res, err := h.svc.ExchangeCode(r.Context(), code)
	if err != nil {
		h.redirect(w, r, "error", "")
		return
	}
	middleware.SetAuthCookies(w, h.cfg, res.Tokens)
	h.redirect(w, r, "success", res.User.Email)
}

func (h *GoogleHandler) VerifyMethod(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email query parameter required")
		return
	}
	isGoogle, err := h.svc.LinkedMethod(r.Context(), email)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GoogleMethodEnvelope{IsGoogle: isGoogle, Email: email})
}

func (h *GoogleHandler) redirect(w http.ResponseWriter, r *http.Request, status, email string) {
	target := fmt.Sprintf("%s/auth/callback?status=%s", h.cfg.FrontendURL, status)
	if email != "" {
		target += "&email=" + url.QueryEscape(email)
	}
	http.Redirect(w, r, target, http.StatusFound)
}
