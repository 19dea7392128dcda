package google

import (
	"context"
	"fmt"

	"github.com/voyagevault/auth-api/internal/config"
	"github.com/voyagevault/auth-api/internal/domain"
	"golang.org/x/oauth2"
	oauthgoogle "golang.org/x/oauth2/google"
)

// OAuthClient exchanges authorization codes at Google's token endpoint for
// ID tokens, for the redirect-based sign-in flow.
type OAuthClient struct {
	conf *oauth2.Config
}

func NewOAuthClient(cfg *config.Config) *OAuthClient {
	return &OAuthClient{
		conf: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Endpoint:     oauthgoogle.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
	}
}

// ExchangeCode swaps the authorization code for tokens and returns the ID
// token from the response. A rejected or replayed code comes back as
// domain.ErrUnauthorized; a response without an id_token field (wrong
// scopes, misconfigured client) is a domain.ErrUpstream.
func (c *OAuthClient) ExchangeCode(ctx context.Context, code string) (string, error) {
	tok, err := c.conf.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("authorization code exchange rejected: %w", domain.ErrUnauthorized)
	}
	idToken, ok := tok.Extra("id_token").(string)
	if !ok || idToken == "" {
		return "", fmt.Errorf("token response missing id_token: %w", domain.ErrUpstream)
	}
	return idToken, nil
}
