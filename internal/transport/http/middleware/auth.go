package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/voyagevault/auth-api/internal/config"
	"github.com/voyagevault/auth-api/internal/domain"
	jwtinfra "github.com/voyagevault/auth-api/internal/infrastructure/jwt"
)

type contextKey string

const UserKey contextKey = "user"

// TokenVerifier is the credential check the guard needs.
type TokenVerifier interface {
	VerifyAccess(token string) (userID string, err error)
	RenewAccess(refreshToken string) (userID, accessToken string, err error)
}

// UserLoader resolves the authenticated account.
type UserLoader interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// SessionGuard authenticates each request from the session cookies. An
// unexpired access token passes directly; an expired one is transparently
// renewed from the refresh token, with the replacement access cookie set on
// the response. Any other token defect rejects the request without
// attempting refresh. The account is reloaded on every request and attached
// to the context.
func SessionGuard(cfg *config.Config, tokens TokenVerifier, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, reissued, err := authenticate(tokens, r)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if reissued != "" {
				SetAccessCookie(w, cfg, reissued)
			}
			u, err := users.Get(r.Context(), userID)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "account not found")
				return
			}
			ctx := context.WithValue(r.Context(), UserKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authenticate decides the request's fate from its cookies and returns the
// user along with an optional replacement access token to set. It never
// touches the ResponseWriter; cookie side effects stay in the middleware.
func authenticate(tokens TokenVerifier, r *http.Request) (userID, reissuedAccess string, err error) {
	access, err := r.Cookie(AccessTokenCookie)
	if err != nil {
		return "", "", errors.New("access token missing")
	}

	userID, err = tokens.VerifyAccess(access.Value)
	if err == nil {
		return userID, "", nil
	}
	if !errors.Is(err, jwtinfra.ErrExpired) {
		// Malformed or forged — no refresh fallback.
		return "", "", err
	}

	refresh, cookieErr := r.Cookie(RefreshTokenCookie)
	if cookieErr != nil {
		return "", "", errors.New("refresh token missing")
	}
	userID, reissuedAccess, err = tokens.RenewAccess(refresh.Value)
	if err != nil {
		return "", "", err
	}
	return userID, reissuedAccess, nil
}

// UserFromContext extracts the authenticated account from the request context.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(UserKey).(*domain.User)
	return u, ok
}
