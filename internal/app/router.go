package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/alhaja/alhaja-admin/internal/auth"
	"github.com/alhaja/alhaja-admin/internal/catalog"
	"github.com/alhaja/alhaja-admin/internal/customers"
	"github.com/alhaja/alhaja-admin/internal/dashboard"
	"github.com/alhaja/alhaja-admin/internal/imports"
	"github.com/alhaja/alhaja-admin/internal/orders"
	"github.com/alhaja/alhaja-admin/internal/shared"
	"github.com/alhaja/alhaja-admin/internal/stock"
	"github.com/alhaja/alhaja-admin/internal/supplierorders"
	"github.com/alhaja/alhaja-admin/internal/suppliers"
	"github.com/alhaja/alhaja-admin/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler          *auth.Handler
	DashboardHandler     *dashboard.Handler
	SupplierHandler      *suppliers.Handler
	CatalogHandler       *catalog.Handler
	CustomerHandler      *customers.Handler
	OrderHandler         *orders.Handler
	StockHandler         *stock.Handler
	ImportHandler        *imports.Handler
	SupplierOrderHandler *supplierorders.Handler
}

// NewRouter constructs the chi.Router for the admin application.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	params.AuthHandler.MountRoutes(r)

	// Everything below requires a live credential pair.
	r.Group(func(r chi.Router) {
		r.Use(params.AuthHandler.RequireAuth)

		params.DashboardHandler.MountRoutes(r)
		r.Route("/suppliers", params.SupplierHandler.MountRoutes)
		r.Route("/products", params.CatalogHandler.MountProductRoutes)
		r.Route("/categories", params.CatalogHandler.MountCategoryRoutes)
		r.Route("/customers", params.CustomerHandler.MountRoutes)
		r.Route("/orders", params.OrderHandler.MountRoutes)
		r.Route("/stock", params.StockHandler.MountRoutes)
		r.Route("/imports", params.ImportHandler.MountRoutes)
		r.Route("/supplier-orders", params.SupplierOrderHandler.MountRoutes)
	})

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
