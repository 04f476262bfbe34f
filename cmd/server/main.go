package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "gearrent-backend/internal/api/http"
	"gearrent-backend/internal/clock"
	"gearrent-backend/internal/config"
	"gearrent-backend/internal/logger"
	"gearrent-backend/internal/notify"
	"gearrent-backend/internal/repository/postgres"
	"gearrent-backend/internal/security"
	"gearrent-backend/internal/service"

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
	logger.Info("Starting Gearrent Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Rental rules", "strict_stock", cfg.Rental.StrictStock, "enforce_min_spend", cfg.Rental.EnforceMinSpend,
		"auto_approve_members", cfg.Rental.AutoApproveMembers, "timezone", cfg.Rental.Timezone)

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)
	clk := clock.NewSystem(cfg.Location())
	rules := service.RentalRules{
		StrictStock:        cfg.Rental.StrictStock,
		EnforceMinSpend:    cfg.Rental.EnforceMinSpend,
		AutoApproveMembers: cfg.Rental.AutoApproveMembers,
	}

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	// Initialize Email Service
	mailer, err := notify.New(cfg)
	if err != nil {
		logger.Error("Failed to initialize mailer", "error", err)
		log.Fatalf("Failed to initialize mailer: %v", err)
	}
	emailSvc := service.NewEmailService(mailer)

	// Initialize Services
	userSvc := service.NewUserService(store.UserRepository, tokenManager, emailSvc, rules)
	catalogSvc := service.NewCatalogService(store, store.CategoryRepository, store.ItemRepository)
	inventorySvc := service.NewInventoryService(store, store.ItemRepository)
	promoSvc := service.NewPromotionService(store.PromotionRepository, clk, rules)
	txSvc := service.NewTransactionService(
		store,
		store.TransactionRepository,
		store.ItemRepository,
		store.PromotionRepository,
		store.PaymentRepository,
		store.UserRepository,
		emailSvc,
		clk,
		rules,
	)

	// Initialize HTTP handlers
	router := httpapi.NewRouter(httpapi.Handlers{
		Auth:         httpapi.NewAuthHandler(userSvc),
		Users:        httpapi.NewUserHandler(userSvc),
		Catalog:      httpapi.NewCatalogHandler(catalogSvc, inventorySvc),
		Transactions: httpapi.NewTransactionHandler(txSvc),
		Promotions:   httpapi.NewPromotionHandler(promoSvc),
	}, tokenManager)

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to serve HTTP", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	logger.Info("HTTP server stopped. Goodbye!")
}
