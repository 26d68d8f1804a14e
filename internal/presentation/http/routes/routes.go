package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/clinicasantafe/clinica-api/internal/config"
	domainRepo "github.com/clinicasantafe/clinica-api/internal/domain/repository"
	"github.com/clinicasantafe/clinica-api/internal/presentation/http/handler"
	"github.com/clinicasantafe/clinica-api/internal/presentation/http/middleware"
	"github.com/clinicasantafe/clinica-api/pkg/billing"
	"github.com/clinicasantafe/clinica-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth    *handler.AuthHandler
	Payment *handler.PaymentHandler
	Catalog *handler.CatalogHandler
	Patient *handler.PatientHandler
	Invoice *handler.InvoiceHandler
	Report  *handler.ReportHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	Logger          *logrus.Logger
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	registerValidators()

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		// Per-user rate limiter
		rateLimiter := middleware.NewUserRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

// registerValidators adds the custom binding validators used by the
// request DTOs.
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("rtn", func(fl validator.FieldLevel) bool {
			return billing.ValidRTN(fl.Field().String())
		})
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Auth/Profile routes
	protected.GET("/profile", h.Auth.Me)
	protected.PUT("/profile/password", h.Auth.ChangePassword)

	// Payments
	registerPaymentRoutes(protected, h, deps)

	// Catalog
	registerCatalogRoutes(protected, h)

	// Patients
	registerPatientRoutes(protected, h)

	// Invoices
	invoices := protected.Group("/invoices")
	{
		invoices.GET("", h.Invoice.List)
		invoices.GET("/:id", h.Invoice.Get)
	}

	// Reports
	reports := protected.Group("/reports")
	{
		reports.GET("/daily", h.Report.DailySummary)
	}
}

func registerPaymentRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	payments := protected.Group("/payments")
	{
		payments.GET("", h.Payment.List)
		payments.POST("", h.Payment.Create)
		payments.GET("/:id", h.Payment.Get)
		payments.GET("/:id/totals", h.Payment.Totals)
		payments.GET("/:id/invoice", h.Invoice.ForPayment)
		payments.POST("/:id/items", h.Payment.AddItem)
		payments.PUT("/:id/items/:itemId", h.Payment.SetQuantity)
		payments.DELETE("/:id/items/:itemId", h.Payment.RemoveItem)
		payments.PUT("/:id/discount", h.Payment.SetDiscount)
		payments.DELETE("/:id/discount", h.Payment.ClearDiscount)
		payments.POST("/:id/cancel", h.Payment.Cancel)

		// Checkout and refunds use idempotency middleware so a retried
		// request cannot charge or refund twice
		idempotency := middleware.IdempotencyRequired(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		})
		payments.POST("/:id/checkout", idempotency, h.Payment.Checkout)
		payments.POST("/:id/refunds", idempotency, h.Payment.AddRefund)
	}
}

func registerCatalogRoutes(protected *gin.RouterGroup, h *Handlers) {
	catalog := protected.Group("/catalog")
	{
		catalog.GET("", h.Catalog.List)
		catalog.POST("", h.Catalog.Create)
		catalog.GET("/:id", h.Catalog.Get)
		catalog.PUT("/:id", h.Catalog.Update)
		catalog.DELETE("/:id", h.Catalog.Delete)
		catalog.POST("/:id/variants", h.Catalog.CreateVariant)
		catalog.PUT("/:id/variants/:variantId", h.Catalog.UpdateVariant)
		catalog.DELETE("/:id/variants/:variantId", h.Catalog.DeleteVariant)
	}
}

func registerPatientRoutes(protected *gin.RouterGroup, h *Handlers) {
	patients := protected.Group("/patients")
	{
		patients.GET("", h.Patient.List)
		patients.POST("", h.Patient.Create)
		patients.GET("/:id", h.Patient.Get)
		patients.PUT("/:id", h.Patient.Update)
		patients.DELETE("/:id", h.Patient.Delete)
	}
}
