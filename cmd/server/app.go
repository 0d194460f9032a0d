package main

import (
	"net/http"

	"github.com/diewo77/go-pos/internal/logging"
	"github.com/diewo77/go-pos/internal/policy"
	"github.com/rs/zerolog"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	handler   http.Handler
	routerCfg *policy.RouterConfig
}

// NewApp creates a new application with all routes configured.
func NewApp(routerCfg *policy.RouterConfig, logger zerolog.Logger) *App {
	app := &App{
		mux:       http.NewServeMux(),
		routerCfg: routerCfg,
	}
	app.setupRoutes()
	app.handler = logging.Middleware(logger)(app.mux)
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	// ─────────────────────────────────────────────────────────────────────────
	// Public routes (no auth required)
	// ─────────────────────────────────────────────────────────────────────────
	hh := a.routerCfg.HealthHandler
	ah := a.routerCfg.AuthHandler

	a.mux.HandleFunc("GET /api/health", hh.Health)
	a.mux.HandleFunc("GET /api/healthz", hh.Ready)
	a.mux.HandleFunc("POST /api/auth/register", ah.Register)
	a.mux.HandleFunc("POST /api/auth/login", ah.Login)

	// ─────────────────────────────────────────────────────────────────────────
	// Authenticated routes (require a bearer token)
	// ─────────────────────────────────────────────────────────────────────────
	ph := a.routerCfg.ProductHandler
	oh := a.routerCfg.OrderHandler
	pay := a.routerCfg.PaymentHandler
	rh := a.routerCfg.ReportHandler

	a.protect("GET /api/me", ah.Me)

	for _, prefix := range []string{"/api/products", "/api/productos"} {
		a.protect("GET "+prefix, ph.List)
		a.protect("POST "+prefix, ph.Create)
		a.protect("GET "+prefix+"/{id}", ph.View)
		a.protect("PATCH "+prefix+"/{id}", ph.Update)
		a.protect("DELETE "+prefix+"/{id}", ph.Delete)
	}

	for _, prefix := range []string{"/api/orders", "/api/pedidos"} {
		a.protect("GET "+prefix, oh.List)
		a.protect("POST "+prefix, oh.Create)
		a.protect("GET "+prefix+"/{id}", oh.View)
		a.protect("POST "+prefix+"/{id}/items", oh.AppendItems)
	}
	a.protect("PATCH /api/orders/{id}/status", oh.SetStatus)
	a.protect("PATCH /api/pedidos/{id}/estado", oh.SetStatus)

	a.protect("POST /api/payments", pay.Create)
	a.protect("POST /api/pagos", pay.Create)

	a.protect("GET /api/reports/sales", rh.Sales)
}

func (a *App) protect(pattern string, h http.HandlerFunc) {
	a.mux.Handle(pattern, a.routerCfg.RequireAuth(h))
}
