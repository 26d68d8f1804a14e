package main

import (
	"github.com/gin-gonic/gin"

	"github.com/clinicasantafe/clinica-api/internal/application/service"
	"github.com/clinicasantafe/clinica-api/internal/config"
	"github.com/clinicasantafe/clinica-api/internal/infrastructure/database"
	"github.com/clinicasantafe/clinica-api/internal/infrastructure/repository"
	"github.com/clinicasantafe/clinica-api/internal/presentation/http/handler"
	"github.com/clinicasantafe/clinica-api/internal/presentation/http/routes"
	"github.com/clinicasantafe/clinica-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger := config.NewLogger(&cfg.App)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db, logger); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed the first cashier account
	if err := database.SeedDefaultData(db, &cfg.Admin, logger); err != nil {
		logger.Warnf("Failed to seed default data: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	patientRepo := repository.NewPatientRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	lineItemRepo := repository.NewLineItemRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	reportRepo := repository.NewPaymentReportRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager)
	patientService := service.NewPatientService(patientRepo)
	catalogService := service.NewCatalogService(catalogRepo)
	paymentService := service.NewPaymentService(paymentRepo, lineItemRepo, catalogRepo, patientRepo, invoiceRepo, logger)
	invoiceService := service.NewInvoiceService(invoiceRepo)
	reportService := service.NewReportService(reportRepo)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Payment: handler.NewPaymentHandler(paymentService),
		Catalog: handler.NewCatalogHandler(catalogService),
		Patient: handler.NewPatientHandler(patientService),
		Invoice: handler.NewInvoiceHandler(invoiceService),
		Report:  handler.NewReportHandler(reportService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		Logger:          logger,
		IdempotencyRepo: idempotencyRepo,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	logger.Infof("Starting %s server on port %s (%s)", cfg.App.Name, port, cfg.App.Env)

	if err := router.Run(":" + port); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
