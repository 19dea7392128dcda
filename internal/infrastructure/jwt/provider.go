package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/voyagevault/auth-api/internal/config"
)

// Sentinel errors preserved across the verify path so callers can decide
// whether a refresh fallback is worth attempting.
var (
	ErrExpired = errors.New("token expired")
	ErrInvalid = errors.New("token invalid")
)

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// Claims holds the JWT payload fields.
type Claims struct {
	UserID    string `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is one freshly minted access/refresh credential pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Provider signs and verifies HS256 JWTs with a single shared secret.
// Access and refresh tokens share the signature scheme and differ only in
// TTL and the token_type claim.
type Provider struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	return &Provider{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		now:        time.Now,
	}, nil
}

// IssueTokenPair mints a fresh access token and refresh token for userID.
func (p *Provider) IssueTokenPair(userID string) (TokenPair, error) {
	access, err := p.sign(userID, typeAccess, p.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := p.sign(userID, typeRefresh, p.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess validates an access token and returns the embedded user ID.
func (p *Provider) VerifyAccess(token string) (string, error) {
	return p.verify(token, typeAccess)
}

// VerifyRefresh validates a refresh token and returns the embedded user ID.
func (p *Provider) VerifyRefresh(token string) (string, error) {
	return p.verify(token, typeRefresh)
}

// RenewAccess verifies the refresh token and mints a new access token for
// the same user. The refresh token itself is never rotated or invalidated;
// it stays valid until its own expiry.
func (p *Provider) RenewAccess(refreshToken string) (userID, accessToken string, err error) {
	userID, err = p.verify(refreshToken, typeRefresh)
	if err != nil {
		return "", "", err
	}
	accessToken, err = p.sign(userID, typeAccess, p.accessTTL)
	if err != nil {
		return "", "", err
	}
	return userID, accessToken, nil
}

func (p *Provider) sign(userID, tokenType string, ttl time.Duration) (string, error) {
	now := p.now()
	claims := Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

func (p *Provider) verify(tokenStr, wantType string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(p.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", ErrInvalid
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != wantType || claims.UserID == "" {
		return "", ErrInvalid
	}
	return claims.UserID, nil
}
