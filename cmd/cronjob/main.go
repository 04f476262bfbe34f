package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"gearrent-backend/internal/clock"
	"gearrent-backend/internal/config"
	"gearrent-backend/internal/jobs"
	"gearrent-backend/internal/logger"
	"gearrent-backend/internal/notify"
	"gearrent-backend/internal/repository/postgres"
	"gearrent-backend/internal/scheduler"
	"gearrent-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'mark-overdue-transactions', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Gearrent Cronjob Runner...", "log_level", cfg.Log.Level, "timezone", cfg.Rental.Timezone)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
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
	clk := clock.NewSystem(cfg.Location())

	// Initialize Services
	mailer, err := notify.New(cfg)
	if err != nil {
		logger.Error("Failed to initialize mailer", "error", err)
		log.Fatalf("Failed to initialize mailer: %v", err)
	}
	emailService := service.NewEmailService(mailer)

	transactionService := service.NewTransactionService(
		store,
		store.TransactionRepository,
		store.ItemRepository,
		store.PromotionRepository,
		store.PaymentRepository,
		store.UserRepository,
		emailService,
		clk,
		service.RentalRules{
			StrictStock:     cfg.Rental.StrictStock,
			EnforceMinSpend: cfg.Rental.EnforceMinSpend,
		},
	)

	jobServices := &jobs.Services{
		Email:        emailService,
		Transactions: transactionService,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(store.TransactionRepository, jobServices, cfg, clk)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if err := jobRunner.RunByName(*runOnce); err != nil {
			logger.Error("Job failed", "job", *runOnce, "error", err)
			fmt.Printf("Available jobs:\n")
			for _, name := range jobs.JobNames() {
				fmt.Printf("  - %s\n", name)
			}
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		logger.Error("Failed to register jobs", "error", err)
		log.Fatalf("Failed to register jobs: %v", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}
