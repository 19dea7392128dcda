package signup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/voyagevault/auth-api/internal/domain"
	jwtinfra "github.com/voyagevault/auth-api/internal/infrastructure/jwt"
	"github.com/voyagevault/auth-api/internal/pkg/code"
	"github.com/voyagevault/auth-api/internal/pkg/id"
)

// UserStore is the account persistence the signup flow needs.
type UserStore interface {
	Put(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

// CodeStore persists the single live verification code per email.
// Put overwrites any prior code for the address.
type CodeStore interface {
	Put(ctx context.Context, v *domain.VerificationCode) error
	Get(ctx context.Context, email string) (*domain.VerificationCode, error)
	Delete(ctx context.Context, email string) error
}

// Mailer dispatches the code. Failures propagate to the caller; the already
// committed account/code rows stay in place and are recoverable via resend.
type Mailer interface {
	SendVerificationCode(to, code string) error
}

// TokenIssuer mints the session credential pair after a successful verify.
type TokenIssuer interface {
	IssueTokenPair(userID string) (jwtinfra.TokenPair, error)
}

// VerifiedResult is the outcome of a successful code validation.
type VerifiedResult struct {
	User   *domain.User
	Tokens jwtinfra.TokenPair
}

type Service interface {
	IssueSignupCode(ctx context.Context, req domain.SignupRequest) error
	ResendCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, codeStr string) (*VerifiedResult, error)
	InitiateSignIn(ctx context.Context, email string) error
	VerifySignInCode(ctx context.Context, email, codeStr string) (*VerifiedResult, error)
}

type service struct {
	users   UserStore
	codes   CodeStore
	mailer  Mailer
	tokens  TokenIssuer
	codeTTL time.Duration
}

func NewService(users UserStore, codes CodeStore, mailer Mailer, tokens TokenIssuer, codeTTL time.Duration) Service {
	return &service{
		users:   users,
		codes:   codes,
		mailer:  mailer,
		tokens:  tokens,
		codeTTL: codeTTL,
	}
}

// IssueSignupCode starts the signup flow: creates an unverified account
// unless one already exists, then issues and dispatches a fresh code.
// A repeated signup for an existing unverified account behaves as a resend.
func (s *service) IssueSignupCode(ctx context.Context, req domain.SignupRequest) error {
	u, err := s.users.GetByEmail(ctx, req.Email)
	switch {
	case err == nil && u.Verified:
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	case err == nil:
		// Unfinished signup — overwrite the code below.
	case isNotFound(err):
		now := time.Now().UTC()
		u = &domain.User{
			UserID:       id.New(),
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Email:        req.Email,
			Verified:     false,
			SignupMethod: domain.SignupMethodEmail,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.users.Put(ctx, u); err != nil {
			return err
		}
	default:
		return err
	}
	return s.issueCode(ctx, req.Email)
}

// ResendCode reissues the code for an existing unverified account.
func (s *service) ResendCode(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("no account for this email: %w", domain.ErrNotFound)
		}
		return err
	}
	if u.Verified {
		return fmt.Errorf("email already verified: %w", domain.ErrConflict)
	}
	return s.issueCode(ctx, email)
}

// VerifyCode validates the signup code, marks the account verified, burns
// the code row and mints a token pair.
func (s *service) VerifyCode(ctx context.Context, email, codeStr string) (*VerifiedResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("no account for this email: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	if err := s.checkCode(ctx, email, codeStr); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, u.UserID, map[string]interface{}{"verified": true}); err != nil {
		return nil, err
	}
	u.Verified = true
	s.burnCode(ctx, email)
	return s.mintResult(u)
}

// InitiateSignIn issues a sign-in code for an already verified account,
// reusing the signup code contract (6 digits, 10-minute expiry).
func (s *service) InitiateSignIn(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("no account for this email: %w", domain.ErrNotFound)
		}
		return err
	}
	if !u.Verified {
		return fmt.Errorf("must complete signup first: %w", domain.ErrUnauthorized)
	}
	return s.issueCode(ctx, email)
}

// VerifySignInCode validates a sign-in code and mints a fresh token pair.
// The account is already verified, so no account mutation happens.
func (s *service) VerifySignInCode(ctx context.Context, email, codeStr string) (*VerifiedResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("no account for this email: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	if !u.Verified {
		return nil, fmt.Errorf("must complete signup first: %w", domain.ErrUnauthorized)
	}
	if err := s.checkCode(ctx, email, codeStr); err != nil {
		return nil, err
	}
	s.burnCode(ctx, email)
	return s.mintResult(u)
}

// issueCode generates a fresh code, upserts the row (replacing any prior
// live code for this email) and dispatches it. The row is committed before
// dispatch is attempted: a dispatch failure leaves the code in place and
// surfaces as an upstream error.
func (s *service) issueCode(ctx context.Context, email string) error {
	c, err := code.New()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	v := &domain.VerificationCode{
		Email:     email,
		Code:      c,
		ExpiresAt: now.Add(s.codeTTL).Unix(),
		CreatedAt: now,
	}
	if err := s.codes.Put(ctx, v); err != nil {
		return err
	}
	if err := s.mailer.SendVerificationCode(email, c); err != nil {
		return fmt.Errorf("failed to send verification email: %w", domain.ErrUpstream)
	}
	return nil
}

// checkCode enforces the match-and-expiry contract. Missing row, wrong
// digits and expired code all collapse to the same unauthorized outcome.
func (s *service) checkCode(ctx context.Context, email, codeStr string) error {
	v, err := s.codes.Get(ctx, email)
	if err != nil || v.Code != codeStr || v.ExpiresAt <= time.Now().Unix() {
		return fmt.Errorf("invalid or expired code: %w", domain.ErrUnauthorized)
	}
	return nil
}

// burnCode deletes the code row so it is single-use. Deletion failure is
// logged, not fatal — the row still dies by TTL.
func (s *service) burnCode(ctx context.Context, email string) {
	if err := s.codes.Delete(ctx, email); err != nil {
		slog.Warn("failed to delete verification code", "email", email, "err", err)
	}
}

func (s *service) mintResult(u *domain.User) (*VerifiedResult, error) {
	tokens, err := s.tokens.IssueTokenPair(u.UserID)
	if err != nil {
		return nil, err
	}
	return &VerifiedResult{User: u, Tokens: tokens}, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
