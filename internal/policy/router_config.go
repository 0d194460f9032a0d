package policy

import (
	"net/http"

	"github.com/diewo77/go-pos/auth"
	"github.com/diewo77/go-pos/internal/config"
	"github.com/diewo77/go-pos/internal/handlers"
	"github.com/diewo77/go-pos/internal/services"
	"gorm.io/gorm"
)

// RouterConfig holds configured handlers and middleware for the application.
type RouterConfig struct {
	// Tokens signs and verifies admin session tokens
	Tokens *auth.TokenManager
	// Verifier caches "does this admin still exist" lookups
	Verifier *auth.CachedVerifier

	HealthHandler  *handlers.HealthHandler
	AuthHandler    *handlers.AuthHandler
	ProductHandler *handlers.ProductHandler
	OrderHandler   *handlers.OrderHandler
	PaymentHandler *handlers.PaymentHandler
	ReportHandler  *handlers.ReportHandler

	// Services
	Catalog  *services.CatalogService
	Orders   *services.OrderService
	Payments *services.PaymentService
	Admins   *services.AdminService
	Reports  *services.ReportService
}

// NewRouterConfig wires services, handlers and the auth verifier.
func NewRouterConfig(db *gorm.DB, authCfg config.AuthConfig) *RouterConfig {
	catalog := services.NewCatalogService(db)
	orders := services.NewOrderService(db, catalog)
	payments := services.NewPaymentService(db)
	admins := services.NewAdminService(db)
	reports := services.NewReportService(db)

	tokens := auth.NewTokenManager(authCfg.Secret, authCfg.TokenTTL)
	verifier := auth.NewCachedVerifier(admins.Exists, authCfg.VerifyCacheTTL)

	return &RouterConfig{
		Tokens:         tokens,
		Verifier:       verifier,
		HealthHandler:  handlers.NewHealthHandler(db),
		AuthHandler:    handlers.NewAuthHandler(admins, tokens),
		ProductHandler: handlers.NewProductHandler(catalog),
		OrderHandler:   handlers.NewOrderHandler(orders),
		PaymentHandler: handlers.NewPaymentHandler(payments),
		ReportHandler:  handlers.NewReportHandler(reports),
		Catalog:        catalog,
		Orders:         orders,
		Payments:       payments,
		Admins:         admins,
		Reports:        reports,
	}
}

// RequireAuth rejects requests without a valid bearer token for an existing admin.
func (c *RouterConfig) RequireAuth(next http.Handler) http.Handler {
	return c.Tokens.RequireAuth(c.Verifier.Verify)(next)
}
