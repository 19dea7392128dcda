package oauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/voyagevault/auth-api/internal/domain"
	"github.com/voyagevault/auth-api/internal/infrastructure/google"
	jwtinfra "github.com/voyagevault/auth-api/internal/infrastructure/jwt"
	"github.com/voyagevault/auth-api/internal/pkg/id"
)

// IdentityVerifier validates a provider ID token and extracts its claims.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*google.Payload, error)
}

// CodeExchanger swaps an authorization code for an ID token at the
// provider's token endpoint.
type CodeExchanger interface {
	ExchangeCode(ctx context.Context, code string) (string, error)
}

// UserStore is the account persistence the linking flow needs.
type UserStore interface {
	Put(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

// TokenIssuer mints the session credential pair after a successful link.
type TokenIssuer interface {
	IssueTokenPair(userID string) (jwtinfra.TokenPair, error)
}

// Result is the outcome of a successful Google sign-in.
type Result struct {
	User   *domain.User
	Tokens jwtinfra.TokenPair
}

type Service interface {
	SignInWithIDToken(ctx context.Context, idToken string) (*Result, error)
	ExchangeCode(ctx context.Context, authCode string) (*Result, error)
	LinkedMethod(ctx context.Context, email string) (bool, error)
}

type service struct {
	verifier  IdentityVerifier
	exchanger CodeExchanger
	users     UserStore
	tokens    TokenIssuer
}

func NewService(verifier IdentityVerifier, exchanger CodeExchanger, users UserStore, tokens TokenIssuer) Service {
	return &service{
		verifier:  verifier,
		exchanger: exchanger,
		users:     users,
		tokens:    tokens,
	}
}

// SignInWithIDToken validates the Google assertion and upserts the account.
// The assertion wins unconditionally: an existing account is forced to
// verified=true and signup_method=google regardless of its prior state, and
// no second account is ever created for the same email.
func (s *service) SignInWithIDToken(ctx context.Context, idToken string) (*Result, error) {
	payload, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if payload.Email == "" {
		return nil, fmt.Errorf("google token has no email claim: %w", domain.ErrUnauthorized)
	}

	u, err := s.users.GetByEmail(ctx, payload.Email)
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"verified":      true,
			"signup_method": domain.SignupMethodGoogle,
		}
		if err := s.users.Update(ctx, u.UserID, updates); err != nil {
			return nil, err
		}
		u.Verified = true
		u.SignupMethod = domain.SignupMethodGoogle
	case errors.Is(err, domain.ErrNotFound):
		now := time.Now().UTC()
		u = &domain.User{
			UserID:       id.New(),
			FirstName:    payload.FirstName,
			LastName:     payload.LastName,
			Email:        payload.Email,
			Verified:     true,
			SignupMethod: domain.SignupMethodGoogle,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.users.Put(ctx, u); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	tokens, err := s.tokens.IssueTokenPair(u.UserID)
	if err != nil {
		return nil, err
	}
	return &Result{User: u, Tokens: tokens}, nil
}

// ExchangeCode runs the redirect-based flow: authorization code to ID token,
// then the same validate/upsert/issue sequence as SignInWithIDToken.
func (s *service) ExchangeCode(ctx context.Context, authCode string) (*Result, error) {
	idToken, err := s.exchanger.ExchangeCode(ctx, authCode)
	if err != nil {
		return nil, err
	}
	return s.SignInWithIDToken(ctx, idToken)
}

// LinkedMethod reports whether the account for email signed up via Google,
// so the client can present the matching sign-in form.
func (s *service) LinkedMethod(ctx context.Context, email string) (bool, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, fmt.Errorf("no account for this email: %w", domain.ErrNotFound)
		}
		return false, err
	}
	return u.SignupMethod == domain.SignupMethodGoogle, nil
}
