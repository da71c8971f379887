package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/aaravmahajanofficial/pos-admin-platform/docs"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/api/handlers"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/api/middleware"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/cache"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/config"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/health"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/metrics"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/models"
	repository "github.com/aaravmahajanofficial/pos-admin-platform/internal/repositories"
	service "github.com/aaravmahajanofficial/pos-admin-platform/internal/services"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/telemetry"
	"github.com/aaravmahajanofficial/pos-admin-platform/pkg/events"
	"github.com/aaravmahajanofficial/pos-admin-platform/pkg/sendGrid"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

//	@title			POS Admin Platform API
//	@version		1.0
//	@description	Registers, carts, checkout and invoices for multi-shop point of sale.
//	@BasePath		/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the JWT.

func main() {
	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, &cfg.Otel, cfg.Env)
	if err != nil {
		slog.Error("❌ Error setting up tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Database setup
	repos, err := repository.New(ctx, cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Database connection closed")
		}
	}()

	// Redis setup
	redisClient, err := repository.NewRedisClient(ctx, &cfg.RedisConnect)
	if err != nil {
		slog.Error("❌ Error accessing the redis instance", slog.String("error", err.Error()))
		os.Exit(1)
	}

	redisCache := cache.NewRedisCache(redisClient, &cfg.Cache)
	defer redisCache.Close()

	taxRate, err := cfg.Checkout.Rate()
	if err != nil {
		slog.Error("❌ Invalid checkout configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	publisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.WriteTimeout)
	defer publisher.Close()

	jwtKey := []byte(cfg.Security.JWTKey)
	jwtExpiry := time.Duration(cfg.Security.JWTExpiryHours) * time.Hour
	sendGridClient := sendGrid.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)

	staffRepo := repository.NewStaffRepo(repos.DB)
	productRepo := repository.NewProductRepo(repos.DB)
	customerRepo := repository.NewCustomerRepo(repos.DB)
	invoiceRepo := repository.NewInvoiceRepo(repos.DB)
	notificationRepo := repository.NewNotificationRepo(repos.DB)
	rateLimitRepo := repository.NewRateLimitRepo(redisClient, &cfg.RateConfig)

	staffService := service.NewStaffService(staffRepo, rateLimitRepo, jwtKey, jwtExpiry)
	catalogService := service.NewCatalogService(productRepo, redisCache)
	customerService := service.NewCustomerService(customerRepo)
	receiptService := service.NewReceiptService(notificationRepo, sendGridClient)
	invoiceService := service.NewInvoiceService(invoiceRepo, customerRepo, receiptService, publisher, redisCache, cfg.Checkout.Currency)
	registerService := service.NewRegisterService(catalogService, customerService, invoiceService, service.RegisterConfig{
		TaxRate:           taxRate,
		CompletionDisplay: cfg.Checkout.CompletionDisplay,
	})

	staffHandler := handlers.NewStaffHandler(staffService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)
	registerHandler := handlers.NewRegisterHandler(registerService)
	authMiddleware := middleware.NewAuthMiddleware(jwtKey)

	healthChecker, err := health.NewHealthHandler(cfg)
	if err != nil {
		slog.Error("❌ Error creating health checks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("version", health.Version))

	auth := authMiddleware.Authenticate
	admins := func(next http.Handler) http.HandlerFunc {
		return auth(middleware.RequireRole(next, models.RoleSuperAdmin, models.RoleVendorAdmin))
	}

	// Setup router
	routerMux := http.NewServeMux()
	routerMux.HandleFunc("POST /api/v1/auth/login", staffHandler.Login())
	routerMux.HandleFunc("GET /api/v1/auth/profile", auth(staffHandler.Profile()))
	routerMux.HandleFunc("POST /api/v1/staff", admins(staffHandler.CreateStaff()))

	routerMux.HandleFunc("GET /api/v1/catalog", auth(catalogHandler.Search()))
	routerMux.HandleFunc("GET /api/v1/catalog/categories", auth(catalogHandler.Categories()))
	routerMux.HandleFunc("DELETE /api/v1/catalog/cache", admins(catalogHandler.Invalidate()))

	routerMux.HandleFunc("POST /api/v1/registers", auth(registerHandler.OpenRegister()))
	routerMux.HandleFunc("GET /api/v1/registers/{id}", auth(registerHandler.GetRegister()))
	routerMux.HandleFunc("DELETE /api/v1/registers/{id}", auth(registerHandler.CloseRegister()))
	routerMux.HandleFunc("POST /api/v1/registers/{id}/items", auth(registerHandler.AddItem()))
	routerMux.HandleFunc("DELETE /api/v1/registers/{id}/items", auth(registerHandler.ClearCart()))
	routerMux.HandleFunc("PUT /api/v1/registers/{id}/items/{productId}", auth(registerHandler.UpdateQuantity()))
	routerMux.HandleFunc("DELETE /api/v1/registers/{id}/items/{productId}", auth(registerHandler.RemoveItem()))
	routerMux.HandleFunc("PUT /api/v1/registers/{id}/items/{productId}/discount", auth(registerHandler.ApplyItemDiscount()))
	routerMux.HandleFunc("PUT /api/v1/registers/{id}/discount", auth(registerHandler.ApplyCartDiscount()))

	routerMux.HandleFunc("POST /api/v1/registers/{id}/checkout", auth(registerHandler.OpenCheckout()))
	routerMux.HandleFunc("DELETE /api/v1/registers/{id}/checkout", auth(registerHandler.CancelCheckout()))
	routerMux.HandleFunc("PUT /api/v1/registers/{id}/checkout/method", auth(registerHandler.SelectMethod()))
	routerMux.HandleFunc("PUT /api/v1/registers/{id}/checkout/tender", auth(registerHandler.EnterTender()))
	routerMux.HandleFunc("PUT /api/v1/registers/{id}/checkout/customer", auth(registerHandler.AttachCustomer()))
	routerMux.HandleFunc("POST /api/v1/registers/{id}/checkout/complete", auth(registerHandler.CompleteCheckout()))

	routerMux.HandleFunc("POST /api/v1/customers", auth(customerHandler.CreateCustomer()))
	routerMux.HandleFunc("GET /api/v1/customers", auth(customerHandler.FindCustomer()))

	routerMux.HandleFunc("GET /api/v1/invoices", auth(invoiceHandler.ListInvoices()))
	routerMux.HandleFunc("GET /api/v1/invoices/{id}", auth(invoiceHandler.GetInvoice()))
	routerMux.HandleFunc("POST /api/v1/invoices/{id}/receipt", auth(invoiceHandler.ResendReceipt()))

	routerMux.Handle("GET /health", healthChecker.Handler())
	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = middleware.Logging(handler)
	handler = metrics.Middleware(handler)
	handler = otelhttp.NewHandler(handler, cfg.Otel.ServiceName)

	// Setup http server
	server := http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	// open registers hold unfinished sales only; completed ones are already stored
	registerService.Shutdown()

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("⚠️ Error flushing traces", slog.String("error", err.Error()))
	}
}
