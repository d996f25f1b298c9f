package main

import (
	"database/sql"
	"flag"
	"log"
	"os"

	_ "github.com/lib/pq"

	"librental-backend/internal/config"
	"librental-backend/internal/jobs"
	"librental-backend/internal/logger"
	"librental-backend/internal/repository/postgres"
	"librental-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	job := flag.String("job", "all", "Job to run once: 'mark-overdue', 'overdue-reminders', 'due-soon-reminders', or 'all'")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting maintenance runner...", "job", *job)

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

	// Initialize Services
	emailService := service.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.User,
		cfg.SMTP.Password,
		cfg.SMTP.From,
	)

	runner := jobs.NewJobRunner(store, &jobs.Services{Email: emailService}, cfg)

	switch *job {
	case "mark-overdue":
		runner.MarkOverdueRentals()
	case "overdue-reminders":
		runner.SendOverdueReminders()
	case "due-soon-reminders":
		runner.SendDueSoonReminders()
	case "all":
		runner.RunAllMaintenanceJobs()
	default:
		logger.Error("Unknown job", "job", *job)
		os.Exit(1)
	}

	logger.Info("Maintenance runner finished", "job", *job)
}
