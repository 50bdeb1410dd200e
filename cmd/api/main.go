package main

import (
	"github.com/bizlink/bizlink-golang/internal/auth"
	"github.com/bizlink/bizlink-golang/internal/config"
	"github.com/bizlink/bizlink-golang/internal/database"
	"github.com/bizlink/bizlink-golang/internal/handlers"
	"github.com/bizlink/bizlink-golang/internal/routes"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		logrus.Warn("Could not find or load .env file. Relying on system environment variables.")
	}

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET environment variable is not set")
	}
	auth.Init(cfg.JWTSecret)

	// 1. --- Database Connection ---
	db, err := database.OpenDB(cfg.MySQLDSN)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 2. --- Application Setup ---
	app := &handlers.Handlers{DB: db}
	router := routes.SetupRouter(app, cfg.AllowedOrigin)

	// 3. --- Start Server ---
	logrus.Infof("Starting BizLink API server on %s...", cfg.HTTPAddr)
	if err := router.Run(cfg.HTTPAddr); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}
