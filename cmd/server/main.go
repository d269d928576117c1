package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"
	"time"

	api "economy-core/internal/api/http"
	"economy-core/internal/config"
	"economy-core/internal/ledger"
	"economy-core/internal/logger"
	"economy-core/internal/repository/postgres"
	"economy-core/internal/security"
	"economy-core/internal/service"

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
	logger.Info("Starting economy core...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Ledger configuration", "base_url", cfg.Ledger.BaseURL, "timeout_seconds", cfg.Ledger.TimeoutSeconds)

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

	// Apply schema migrations
	if err := postgres.Migrate(db); err != nil {
		logger.Error("Failed to apply migrations", "error", err)
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Ledger Adapter
	ledgerClient := ledger.NewClient(
		cfg.Ledger.BaseURL,
		cfg.Ledger.Token,
		time.Duration(cfg.Ledger.TimeoutSeconds)*time.Second,
	)

	// Initialize Services. The admin and loan services register the replay
	// executors the approval endpoints need; the chat presentation layer
	// constructs the streak and payroll services where it consumes them.
	sink := service.NewLogSink()
	audit := service.NewAuditService(store.TransactionRepository, ledgerClient, sink, cfg.Audit.SuspiciousThreshold)
	orchestrator := service.NewOrchestrator(ledgerClient, store.TransactionRepository, audit)
	approvals := service.NewApprovalService(store.ApprovalRepository, time.Duration(cfg.Approval.WindowMinutes)*time.Minute)
	service.NewAdminService(orchestrator, approvals)

	if _, err := service.NewLoanService(store.LoanRepository, orchestrator, approvals, cfg.Loan.AnnualRatePercent, cfg.Loan.MaxActiveLoans); err != nil {
		log.Fatalf("Failed to initialize loan service: %v", err)
	}

	// Initialize ops API
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)
	server := api.NewServer(audit, orchestrator, approvals, tokenManager)

	addr := cfg.GetServerAddress()
	logger.Info("Ops API listening", "address", addr)
	if err := http.ListenAndServe(addr, server.Router()); err != nil {
		logger.Error("HTTP server stopped", "error", err)
		log.Fatalf("HTTP server stopped: %v", err)
	}
}
