package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/voyagevault/auth-api/internal/application/oauth"
	"github.com/voyagevault/auth-api/internal/application/profile"
	"github.com/voyagevault/auth-api/internal/application/signup"
	"github.com/voyagevault/auth-api/internal/config"
	"github.com/voyagevault/auth-api/internal/transport/http/handler"
	appmiddleware "github.com/voyagevault/auth-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true, // session cookies
		MaxAge:           300,
	}))

	// 5 signup/sign-in attempts per 15 minutes per IP, 3 resends per 5 minutes.
	signupRL := appmiddleware.NewRateLimiter(rate.Every(3*time.Minute), 5)
	resendRL := appmiddleware.NewRateLimiter(rate.Every(100*time.Second), 3)

	signupSvc := signup.NewService(deps.UserRepo, deps.CodeRepo, deps.Mailer, deps.JWTProvider, cfg.CodeTTL)
	oauthSvc := oauth.NewService(deps.Verifier, deps.OAuthClient, deps.UserRepo, deps.JWTProvider)
	profileSvc := profile.NewService(deps.S3Store, deps.UserRepo)

	guard := appmiddleware.SessionGuard(cfg, deps.JWTProvider, deps.UserRepo)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(signupSvc, cfg)
	sessionH := handler.NewSessionHandler(deps.JWTProvider, cfg)
	googleH := handler.NewGoogleHandler(oauthSvc, cfg)
	profileH := handler.NewProfileHandler(profileSvc)

	r.Route("/api/auth", func(r chi.Router) {
		// ── Public routes (no session) ───────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(signupRL.Limit).Post("/signup", authH.Signup)
		r.Post("/verify-code", authH.VerifyCode)
		r.With(resendRL.Limit).Post("/resend-code", authH.ResendCode)
		r.With(signupRL.Limit).Post("/signin", authH.SignIn)
		r.Post("/signin-verify", authH.SignInVerify)
		r.Post("/refresh-token", sessionH.Refresh)
		r.Post("/logout", sessionH.Logout)
		r.Post("/google-signin", googleH.SignIn)
		r.Get("/google-callback", googleH.Callback)
		r.Get("/verify-google", googleH.VerifyMethod)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(guard)

			r.Get("/verify-token", sessionH.VerifyToken)
			r.Post("/update-profile", profileH.Update)
		})
	})

	return r
}
