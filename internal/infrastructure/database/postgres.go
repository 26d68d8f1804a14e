package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/clinicasantafe/clinica-api/internal/config"
	"github.com/clinicasantafe/clinica-api/internal/domain/entity"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, log *logrus.Logger) (*gorm.DB, error) {
	logLevel := logger.Warn

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Info("connected to PostgreSQL database")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB, log *logrus.Logger) error {
	log.Info("running database migrations")

	err := db.AutoMigrate(
		&entity.User{},
		&entity.Patient{},

		// Catalog
		&entity.CatalogItem{},
		&entity.ItemVariant{},

		// Billing
		&entity.Payment{},
		&entity.LineItem{},
		&entity.PartialPayment{},
		&entity.Refund{},
		&entity.Invoice{},
		&entity.InvoiceItem{},

		// System entities
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Document numbers come from a dedicated sequence so they survive
	// row deletions and concurrent checkouts.
	if err := db.Exec("CREATE SEQUENCE IF NOT EXISTS invoice_document_seq").Error; err != nil {
		return fmt.Errorf("failed to create invoice sequence: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}

// SeedDefaultData creates the first cashier account when configured and
// not already present.
func SeedDefaultData(db *gorm.DB, cfg *config.AdminConfig, log *logrus.Logger) error {
	if cfg.Email == "" || cfg.Password == "" {
		return nil
	}

	var existing entity.User
	if err := db.Where("email = ?", cfg.Email).First(&existing).Error; err == nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	name := cfg.Name
	if name == "" {
		name = "Administrador"
	}
	firstName := name
	lastName := ""
	for i, c := range name {
		if c == ' ' {
			firstName = name[:i]
			lastName = name[i+1:]
			break
		}
	}

	user := entity.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     cfg.Email,
		Password:  string(hashedPassword),
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.WithField("email", cfg.Email).Info("admin user created")
	return nil
}
