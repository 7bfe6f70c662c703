package database

import (
	"fmt"

	"github.com/gosimple/slug"
	"github.com/sangkips/quotebuilder-api/internal/config"
	"github.com/sangkips/quotebuilder-api/internal/domain/entity"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool, log *zap.Logger) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

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

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Info("connected to PostgreSQL", zap.String("host", cfg.Host), zap.String("database", cfg.Name))
	return db, nil
}

// Models lists every persisted entity in dependency order
func Models() []interface{} {
	return []interface{}{
		&entity.Tenant{},
		&entity.Category{},
		&entity.Product{},
		&entity.Customer{},
		&entity.Quote{},
		&entity.QuoteLineItem{},
		&entity.QuoteSequence{},
		&entity.IdempotencyKey{},
	}
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}

// SeedDefaultData creates a demo organization with starter categories when
// the database holds no organizations yet.
func SeedDefaultData(db *gorm.DB, settings entity.TenantSettings, log *zap.Logger) error {
	var count int64
	if err := db.Model(&entity.Tenant{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count tenants: %w", err)
	}
	if count > 0 {
		return nil
	}

	log.Info("seeding default data")

	tenant := entity.Tenant{
		Name:     "Demo Company",
		Slug:     slug.Make("Demo Company"),
		Settings: settings,
	}
	if err := db.Create(&tenant).Error; err != nil {
		return fmt.Errorf("failed to create demo tenant: %w", err)
	}

	for _, name := range []string{"Services", "Products", "Licences"} {
		category := entity.Category{TenantID: tenant.ID, Name: name, Slug: slug.Make(name)}
		if err := db.Omit("Tenant").Create(&category).Error; err != nil {
			log.Warn("failed to create category", zap.String("name", name), zap.Error(err))
		}
	}

	log.Info("seeded demo tenant", zap.String("tenant_id", tenant.ID.String()), zap.String("slug", tenant.Slug))
	return nil
}
