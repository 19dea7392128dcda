package handler

import (
	"net/http"

	"github.com/voyagevault/auth-api/internal/config"
	"github.com/voyagevault/auth-api/internal/transport/http/middleware"
)

// TokenRenewer mints a replacement access token from a refresh token.
type TokenRenewer interface {
	RenewAccess(refreshToken string) (userID, accessToken string, err error)
}

// SessionHandler handles the token refresh, introspection and logout
// endpoints.
type SessionHandler struct {
	tokens TokenRenewer
	cfg    *config.Config
}

func NewSessionHandler(tokens TokenRenewer, cfg *config.Config) *SessionHandler {
	return &SessionHandler{tokens: tokens, cfg: cfg}
}

// Refresh mints a new access cookie from the refresh cookie. The refresh
// cookie itself is left untouched; it stays valid until its own expiry.
func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refresh, err := r.Cookie(middleware.RefreshTokenCookie)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "refresh token missing")
		return
	}
	_, access, err := h.tokens.RenewAccess(refresh.Value)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}
	middleware.SetAccessCookie(w, h.cfg, access)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Access token refreshed"})
}

// VerifyToken runs behind the session guard and just echoes the account the
// guard resolved, renewing the access cookie along the way if needed.
func (h *SessionHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{Message: "Token valid", User: u})
}

func (h *SessionHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	middleware.ClearAuthCookies(w, h.cfg)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Logged out"})
}
