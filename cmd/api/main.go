package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sangkips/quotebuilder-api/internal/application/service"
	"github.com/sangkips/quotebuilder-api/internal/config"
	"github.com/sangkips/quotebuilder-api/internal/domain/entity"
	domainRepo "github.com/sangkips/quotebuilder-api/internal/domain/repository"
	"github.com/sangkips/quotebuilder-api/internal/infrastructure/database"
	"github.com/sangkips/quotebuilder-api/internal/infrastructure/draftstore"
	"github.com/sangkips/quotebuilder-api/internal/infrastructure/repository"
	"github.com/sangkips/quotebuilder-api/internal/presentation/http/handler"
	"github.com/sangkips/quotebuilder-api/internal/presentation/http/routes"
	"github.com/sangkips/quotebuilder-api/pkg/email"
	"github.com/sangkips/quotebuilder-api/pkg/logger"
	"github.com/sangkips/quotebuilder-api/pkg/utils"
	"github.com/sangkips/quotebuilder-api/pkg/validator"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tenantDefaults, err := tenantDefaultsFromConfig(&cfg.Quote)
	if err != nil {
		zlog.Fatal("invalid quote configuration", zap.Error(err))
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := database.AutoMigrate(db, zlog); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}

	if err := database.SeedDefaultData(db, tenantDefaults, zlog); err != nil {
		zlog.Warn("failed to seed default data", zap.Error(err))
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Initialize repositories
	tenantRepo := repository.NewTenantRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	drafts, closeDrafts := newDraftStore(ctx, &cfg.Redis, zlog)
	defer closeDrafts()

	emailService := email.NewEmailService(email.EmailConfig{
		SMTPHost:     cfg.Email.Host,
		SMTPPort:     cfg.Email.Port,
		SMTPUsername: cfg.Email.Username,
		SMTPPassword: cfg.Email.Password,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.From,
		Timeout:      cfg.Email.Timeout,
	})

	// Initialize services
	validate := validator.New()
	tenantService := service.NewTenantService(tenantRepo, tenantDefaults)
	categoryService := service.NewCategoryService(categoryRepo)
	productService := service.NewProductService(productRepo, categoryRepo, validate)
	customerService := service.NewCustomerService(customerRepo, validate, cfg.Quote.PhoneRegion)
	quoteService := service.NewQuoteService(quoteRepo, customerRepo, productRepo, tenantService, validate, zlog)
	wizardService := service.NewWizardService(drafts, productRepo, customerService, quoteService, tenantService, zlog)
	documentService := service.NewDocumentService(quoteService, tenantService, emailService, zlog)

	handlers := &routes.Handlers{
		Tenant:   handler.NewTenantHandler(tenantService),
		Product:  handler.NewProductHandler(productService),
		Category: handler.NewCategoryHandler(categoryService),
		Customer: handler.NewCustomerHandler(customerService),
		Wizard:   handler.NewWizardHandler(wizardService),
		Quote:    handler.NewQuoteHandler(quoteService),
		Document: handler.NewDocumentHandler(documentService),
	}

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		Log:             zlog,
		TenantRepo:      tenantRepo,
		IdempotencyRepo: idempotencyRepo,
	})

	go purgeIdempotencyKeys(ctx, idempotencyRepo, zlog)

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		zlog.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		zlog.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zlog.Error("graceful shutdown failed", zap.Error(err))
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server error", zap.Error(err))
		}
	}
}

// tenantDefaultsFromConfig builds the settings used for organizations that
// have not configured their own.
func tenantDefaultsFromConfig(cfg *config.QuoteConfig) (entity.TenantSettings, error) {
	settings := entity.DefaultTenantSettings()

	if cfg.DefaultTaxRate != "" {
		rate, err := decimal.NewFromString(cfg.DefaultTaxRate)
		if err != nil {
			return settings, fmt.Errorf("QUOTE_DEFAULT_TAX_RATE: %w", err)
		}
		if rate.IsNegative() {
			return settings, errors.New("QUOTE_DEFAULT_TAX_RATE must not be negative")
		}
		settings.TaxRate = decimal.NewNullDecimal(rate)
	}
	if cfg.TaxLabel != "" {
		settings.TaxLabel = cfg.TaxLabel
	}
	if cfg.ValidityDays > 0 {
		settings.QuoteValidityDays = cfg.ValidityDays
	}
	if cfg.NumberPrefix != "" {
		settings.QuotePrefix = cfg.NumberPrefix
	}
	if cfg.Currency != "" {
		settings.Currency = cfg.Currency
	}
	if cfg.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			return settings, fmt.Errorf("QUOTE_TIMEZONE: %w", err)
		}
		settings.Timezone = cfg.Timezone
	}
	return settings, nil
}

// newDraftStore uses Redis when configured so drafts survive restarts and
// are shared between instances. Otherwise drafts live in process memory.
func newDraftStore(ctx context.Context, cfg *config.RedisConfig, zlog *zap.Logger) (domainRepo.DraftRepository, func()) {
	if cfg.Addr == "" {
		store := draftstore.NewMemoryStore(cfg.DraftTTL, 5*time.Minute)
		zlog.Info("wizard drafts kept in memory")
		return store, store.Close
	}

	client, err := draftstore.NewRedisClient(ctx, cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		zlog.Fatal("failed to connect to redis", zap.Error(err))
	}
	zlog.Info("wizard drafts kept in redis", zap.String("addr", cfg.Addr))
	return draftstore.NewRedisStore(client, cfg.DraftTTL), func() { _ = client.Close() }
}

func purgeIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, zlog *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeleteExpired(ctx); err != nil {
				zlog.Warn("failed to purge idempotency keys", zap.Error(err))
			}
		}
	}
}
