package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"

	httpapi "librental-backend/internal/api/http"
	"librental-backend/internal/config"
	"librental-backend/internal/logger"
	"librental-backend/internal/repository/postgres"
	"librental-backend/internal/security"
	"librental-backend/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Library Rental Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("SMTP configuration", "host", cfg.SMTP.Host, "port", cfg.SMTP.Port)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry)

	// Initialize Email Service
	emailSvc := service.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.User,
		cfg.SMTP.Password,
		cfg.SMTP.From,
	)

	// Initialize Services
	authSvc := service.NewAuthService(store.UserRepository, tokenManager)
	bookSvc := service.NewBookService(store.BookRepository, store.UserRepository)
	userSvc := service.NewUserService(store.UserRepository, store.NotificationRepository)
	noteSvc := service.NewNotificationService(store.NotificationRepository)
	rentalSvc := service.NewRentalService(
		db,
		store.RentalRepository,
		store.BookRepository,
		store.UserRepository,
		store.NotificationRepository,
		emailSvc,
		cfg.Rental.DefaultDays,
	)
	requestSvc := service.NewRequestService(
		db,
		store.BookRequestRepository,
		store.RentalRepository,
		store.BookRepository,
		store.UserRepository,
		store.NotificationRepository,
		emailSvc,
	)
	reportSvc := service.NewReportService(
		store.BookRepository,
		store.UserRepository,
		store.RentalRepository,
		cfg.Rental.DueSoonDays,
	)

	// Initialize HTTP handlers and routes
	router := httpapi.NewRouter(httpapi.Handlers{
		Auth:         httpapi.NewAuthHandler(authSvc),
		Book:         httpapi.NewBookHandler(bookSvc),
		User:         httpapi.NewUserHandler(userSvc),
		Rental:       httpapi.NewRentalHandler(rentalSvc),
		Request:      httpapi.NewRequestHandler(requestSvc),
		Report:       httpapi.NewReportHandler(reportSvc),
		Notification: httpapi.NewNotificationHandler(noteSvc),
	}, tokenManager)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("Failed to serve HTTP", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
