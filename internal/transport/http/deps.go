package http

import (
	"github.com/voyagevault/auth-api/internal/infrastructure/dynamo"
	"github.com/voyagevault/auth-api/internal/infrastructure/google"
	jwtinfra "github.com/voyagevault/auth-api/internal/infrastructure/jwt"
	s3infra "github.com/voyagevault/auth-api/internal/infrastructure/s3"
	"github.com/voyagevault/auth-api/internal/infrastructure/smtp"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    *dynamo.UserRepo
	CodeRepo    *dynamo.CodeRepo
	S3Store     *s3infra.Store
	Mailer      smtp.Mailer
	Verifier    *google.Verifier
	OAuthClient *google.OAuthClient
	JWTProvider *jwtinfra.Provider
}
