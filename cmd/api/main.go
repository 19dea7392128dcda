package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/voyagevault/auth-api/internal/application/cleanup"
	"github.com/voyagevault/auth-api/internal/config"
	"github.com/voyagevault/auth-api/internal/infrastructure/dynamo"
	"github.com/voyagevault/auth-api/internal/infrastructure/google"
	jwtinfra "github.com/voyagevault/auth-api/internal/infrastructure/jwt"
	s3infra "github.com/voyagevault/auth-api/internal/infrastructure/s3"
	"github.com/voyagevault/auth-api/internal/infrastructure/smtp"
	transporthttp "github.com/voyagevault/auth-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("JWT provider: %v", err)
	}

	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)
	codeRepo := dynamo.NewCodeRepo(dynamoClient, cfg.DynamoTables.VerificationCodes)

	// S3 store for profile pictures.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg)

	deps := &transporthttp.Deps{
		UserRepo:    userRepo,
		CodeRepo:    codeRepo,
		S3Store:     s3Store,
		Mailer:      smtp.NewMailer(cfg),
		Verifier:    google.NewVerifier(cfg.GoogleClientID),
		OAuthClient: google.NewOAuthClient(cfg),
		JWTProvider: jwtProvider,
	}

	// Daily sweep of accounts that never finished verification.
	cleanupSvc := cleanup.NewService(userRepo, codeRepo, cfg.CleanupMaxUnverifiedAge)
	scheduler, err := cleanup.Schedule(cleanupSvc, cfg.CleanupSchedule)
	if err != nil {
		log.Fatalf("cleanup scheduler: %v", err)
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := scheduler.Shutdown(); err != nil {
		log.Printf("scheduler shutdown: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
