package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/alhaja/alhaja-admin/internal/app"
	"github.com/alhaja/alhaja-admin/internal/auth"
	"github.com/alhaja/alhaja-admin/internal/catalog"
	"github.com/alhaja/alhaja-admin/internal/customers"
	"github.com/alhaja/alhaja-admin/internal/dashboard"
	"github.com/alhaja/alhaja-admin/internal/gateway"
	"github.com/alhaja/alhaja-admin/internal/importer"
	"github.com/alhaja/alhaja-admin/internal/imports"
	"github.com/alhaja/alhaja-admin/internal/orders"
	"github.com/alhaja/alhaja-admin/internal/orders/export"
	"github.com/alhaja/alhaja-admin/internal/platform/cache"
	"github.com/alhaja/alhaja-admin/internal/platform/httpx"
	"github.com/alhaja/alhaja-admin/internal/shared"
	"github.com/alhaja/alhaja-admin/internal/stock"
	"github.com/alhaja/alhaja-admin/internal/supplierorders"
	"github.com/alhaja/alhaja-admin/internal/suppliers"
	"github.com/alhaja/alhaja-admin/internal/uploads"
	"github.com/alhaja/alhaja-admin/internal/view"
)

const wizardTTL = 30 * time.Minute

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect session store", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "alhaja_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	client := gateway.New(cfg.BackendAPIURL, cfg.BackendAPITimeout, logger)
	failures := &httpx.GatewayErrors{Logger: logger, Sessions: sessionManager}

	uploader := &uploads.Uploader{
		Auth:      client,
		UploadURL: cfg.ImageCDNUploadURL,
		PublicKey: cfg.ImageCDNPublicKey,
	}

	pdfExporter, err := export.NewPDFExporter(cfg.GotenbergURL, http.DefaultClient, cfg.PaymentPhone)
	if err != nil {
		logger.Error("parse pdf template", slog.Any("error", err))
		os.Exit(1)
	}

	wizardStore := importer.NewStore(wizardTTL)
	wizardStore.StartJanitor(ctx, 5*time.Minute)

	authService := auth.NewService(client)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,

		AuthHandler:          authHandler,
		DashboardHandler:     dashboard.NewHandler(logger, client, templates, csrfManager, failures),
		SupplierHandler:      suppliers.NewHandler(logger, client, templates, csrfManager, failures),
		CatalogHandler:       catalog.NewHandler(logger, client, uploader, templates, csrfManager, failures),
		CustomerHandler:      customers.NewHandler(logger, client, templates, csrfManager, failures),
		OrderHandler:         orders.NewHandler(logger, client, pdfExporter, templates, csrfManager, failures),
		StockHandler:         stock.NewHandler(logger, client, templates, csrfManager, failures),
		ImportHandler:        imports.NewHandler(logger, client, wizardStore, templates, csrfManager, failures),
		SupplierOrderHandler: supplierorders.NewHandler(logger, client, templates, csrfManager, failures),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
