package middleware

import (
	"net/http"

	"github.com/voyagevault/auth-api/internal/config"
	jwtinfra "github.com/voyagevault/auth-api/internal/infrastructure/jwt"
)

// Session cookie names, shared with the frontend.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// SetAccessCookie writes the short-lived access token cookie.
func SetAccessCookie(w http.ResponseWriter, cfg *config.Config, token string) {
	http.SetCookie(w, sessionCookie(cfg, AccessTokenCookie, token, int(cfg.AccessTokenTTL.Seconds())))
}

// SetAuthCookies writes both session cookies for a freshly minted pair.
func SetAuthCookies(w http.ResponseWriter, cfg *config.Config, pair jwtinfra.TokenPair) {
	SetAccessCookie(w, cfg, pair.AccessToken)
	http.SetCookie(w, sessionCookie(cfg, RefreshTokenCookie, pair.RefreshToken, int(cfg.RefreshTokenTTL.Seconds())))
}

// ClearAuthCookies expires both session cookies.
func ClearAuthCookies(w http.ResponseWriter, cfg *config.Config) {
	http.SetCookie(w, sessionCookie(cfg, AccessTokenCookie, "", -1))
	http.SetCookie(w, sessionCookie(cfg, RefreshTokenCookie, "", -1))
}

func sessionCookie(cfg *config.Config, name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	}
}
