package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sangkips/quotebuilder-api/internal/config"
	domainRepo "github.com/sangkips/quotebuilder-api/internal/domain/repository"
	"github.com/sangkips/quotebuilder-api/internal/presentation/http/handler"
	"github.com/sangkips/quotebuilder-api/internal/presentation/http/middleware"
	"github.com/sangkips/quotebuilder-api/pkg/utils"
	pkgValidator "github.com/sangkips/quotebuilder-api/pkg/validator"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Tenant   *handler.TenantHandler
	Product  *handler.ProductHandler
	Category *handler.CategoryHandler
	Customer *handler.CustomerHandler
	Wizard   *handler.WizardHandler
	Quote    *handler.QuoteHandler
	Document *handler.DocumentHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	Log             *zap.Logger
	TenantRepo      domainRepo.TenantRepository
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		pkgValidator.UseJSONNames(v)
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	rateLimiter := middleware.NewTenantRateLimiter(rateLimiterConfig(&deps.Cfg.RateLimit))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":       "ok",
			"service":      deps.Cfg.App.Name,
			"rate_limiter": rateLimiter.Stats(),
		})
	})

	// API v1 routes. Every route needs a token naming the organization.
	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(deps.JWTManager))
	v1.Use(middleware.TenantMiddleware(deps.TenantRepo))
	v1.Use(rateLimiter.Middleware())

	idempotency := middleware.Idempotency(middleware.IdempotencyConfig{
		Repo: deps.IdempotencyRepo,
		Log:  deps.Log,
	})

	registerOrganizationRoutes(v1, h)
	registerCatalogRoutes(v1, h)
	registerWizardRoutes(v1, h, idempotency)
	registerQuoteRoutes(v1, h, idempotency)

	return router
}

func rateLimiterConfig(cfg *config.RateLimitConfig) middleware.RateLimiterConfig {
	rl := middleware.DefaultRateLimiterConfig()
	if cfg.Requests > 0 && cfg.Duration > 0 {
		rl.RequestsPerSecond = float64(cfg.Requests) / float64(cfg.Duration)
		rl.BurstSize = cfg.Requests
	}
	rl.CleanupInterval = 5 * time.Minute
	rl.EntryTTL = 10 * time.Minute
	return rl
}

func registerOrganizationRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.GET("/organization", h.Tenant.GetCurrentTenant)
	rg.PUT("/organization", middleware.RequireRole("admin", "owner"), h.Tenant.UpdateTenant)
}

func registerCatalogRoutes(rg *gin.RouterGroup, h *Handlers) {
	products := rg.Group("/products")
	{
		products.GET("", h.Product.List)
		products.POST("", h.Product.Create)
		products.GET("/:id", h.Product.Get)
		products.PUT("/:id", h.Product.Update)
		products.POST("/:id/deactivate", h.Product.Deactivate)
		products.POST("/:id/activate", h.Product.Activate)
	}

	categories := rg.Group("/categories")
	{
		categories.GET("", h.Category.List)
		categories.POST("", h.Category.Create)
	}

	customers := rg.Group("/customers")
	{
		customers.GET("", h.Customer.List)
		customers.POST("", h.Customer.Create)
		customers.GET("/search", h.Customer.Search)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
	}
}

func registerWizardRoutes(rg *gin.RouterGroup, h *Handlers, idempotency gin.HandlerFunc) {
	wizards := rg.Group("/quote-wizards")
	{
		wizards.POST("", h.Wizard.Open)
		wizards.GET("/:id", h.Wizard.Get)
		wizards.DELETE("/:id", h.Wizard.Close)
		wizards.PUT("/:id/step", h.Wizard.SetStep)
		wizards.PUT("/:id/customer", h.Wizard.SelectCustomer)
		wizards.PUT("/:id/custom-customer", h.Wizard.SetCustomCustomer)
		wizards.POST("/:id/lines", h.Wizard.AddLine)
		wizards.PATCH("/:id/lines/:line_id", h.Wizard.UpdateLine)
		wizards.DELETE("/:id/lines/:line_id", h.Wizard.RemoveLine)
		wizards.PUT("/:id/pricing", h.Wizard.SetPricing)
		wizards.PUT("/:id/details", h.Wizard.SetDetails)
		wizards.POST("/:id/save", idempotency, h.Wizard.Save)
	}
}

func registerQuoteRoutes(rg *gin.RouterGroup, h *Handlers, idempotency gin.HandlerFunc) {
	quotes := rg.Group("/quotes")
	{
		quotes.GET("", h.Quote.List)
		quotes.POST("", idempotency, h.Quote.Create)
		quotes.GET("/:id", h.Quote.Get)
		quotes.DELETE("/:id", h.Quote.Delete)
		quotes.POST("/:id/send-status", h.Quote.MarkSent)
		quotes.POST("/:id/viewed", h.Quote.MarkViewed)
		quotes.POST("/:id/accepted", h.Quote.MarkAccepted)
		quotes.POST("/:id/rejected", h.Quote.MarkRejected)

		quotes.GET("/:id/document", h.Document.Render)
		quotes.GET("/:id/download", h.Document.Download)
		quotes.POST("/:id/send", idempotency, h.Document.Send)
	}
}
