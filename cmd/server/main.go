package main

import (
	"context"
	"log"

	"github.com/lsj0613/instaclone-backend/internal/router"
	"github.com/lsj0613/instaclone-backend/pkg/cache"
	"github.com/lsj0613/instaclone-backend/pkg/config"
	"github.com/lsj0613/instaclone-backend/pkg/firebase"
	"github.com/lsj0613/instaclone-backend/validators"
	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := config.InitDB(cfg.PostgresConnStr)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer config.CloseDB(db)

	// Initialize Redis (best-effort cache)
	if cfg.RedisAddr != "" {
		cache.InitRedis(cfg.RedisAddr)
	}

	// Initialize Firebase (optional; local JWT auth works without it)
	var firebaseAuth *auth.Client
	if cfg.FirebaseCredentialsPath != "" {
		firebaseAuth, err = firebase.InitAuthClient(context.Background(), cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
	} else {
		log.Println("Firebase credentials not configured, Firebase login disabled.")
	}

	// Create Echo instance
	e := echo.New()
	e.Validator = validators.NewValidator()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db, firebaseAuth, cfg.JWTSecret)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
