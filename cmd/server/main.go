package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/drayage/backend/internal/application/billing"
	complianceapp "github.com/drayage/backend/internal/application/compliance"
	streetturnapp "github.com/drayage/backend/internal/application/streetturn"
	"github.com/drayage/backend/internal/domain/shared"
	"github.com/drayage/backend/internal/infrastructure/cache"
	"github.com/drayage/backend/internal/infrastructure/config"
	"github.com/drayage/backend/internal/infrastructure/event"
	"github.com/drayage/backend/internal/infrastructure/logger"
	"github.com/drayage/backend/internal/infrastructure/persistence"
	"github.com/drayage/backend/internal/infrastructure/telemetry"
	"github.com/drayage/backend/internal/interfaces/http/handler"
	"github.com/drayage/backend/internal/interfaces/http/middleware"
	"github.com/drayage/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Drayage Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Root context cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize tracing
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Initialize database connection
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogLevel)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Register database query tracing when enabled
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DefaultDBTracingConfig(), log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Initialize repositories
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	containerRepo := persistence.NewGormContainerRepository(db.DB)
	candidateRepo := persistence.NewGormCandidateRepository(db.DB)

	// Idempotency store: Redis when enabled, in-memory fallback otherwise
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Build domain rule sets from configuration. Load() already validated
	// them, so errors here are unreachable in practice.
	rateRules, err := cfg.Rates.BuildRateRules()
	if err != nil {
		log.Fatal("Invalid rate rules", zap.Error(err))
	}
	matcherConfig, err := cfg.StreetTurn.BuildMatcherConfig()
	if err != nil {
		log.Fatal("Invalid matcher configuration", zap.Error(err))
	}

	// Initialize event bus with the ops alert handler behind idempotent
	// delivery, so a redelivered event cannot page twice.
	eventBus := event.NewInMemoryEventBus(log)
	alertHandler := event.NewOpsAlertHandler(log)
	for _, h := range event.WrapHandlersWithIdempotency(
		[]shared.EventHandler{alertHandler}, idempotencyStore, log,
	) {
		eventBus.Subscribe(h)
	}
	log.Info("Event handlers registered", zap.Strings("alert_events", alertHandler.EventTypes()))

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize application services
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, eventBus, idempotencyStore, billingapp.BillingPolicy{
		AllowOverpayment: cfg.Billing.AllowOverpayment,
		DefaultTaxRate:   decimal.NewFromFloat(cfg.Billing.DefaultTaxRate),
		PaymentTermsDays: cfg.Billing.PaymentTermsDays,
		IdempotencyTTL:   cfg.Billing.IdempotencyTTL,
	})
	chargeService, err := billingapp.NewChargeService(rateRules)
	if err != nil {
		log.Fatal("Failed to create charge service", zap.Error(err))
	}
	intakeService, err := complianceapp.NewIntakeService(containerRepo, eventBus, cfg.Compliance.BuildWeightRules())
	if err != nil {
		log.Fatal("Failed to create intake service", zap.Error(err))
	}
	matchService, err := streetturnapp.NewMatchService(candidateRepo, matcherConfig)
	if err != nil {
		log.Fatal("Failed to create match service", zap.Error(err))
	}

	// Overdue sweep: periodically persists OVERDUE for past-due invoices
	if cfg.Sweep.Enabled {
		go runOverdueSweep(ctx, invoiceService, cfg.Sweep.Interval, log)
		log.Info("Overdue sweep enabled", zap.Duration("interval", cfg.Sweep.Interval))
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Report binding failures by json field name
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, outermost first: request ID, panic recovery,
	// request logging, security headers, CORS, body limit, rate limit,
	// tracing.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanErrorMarker())
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Register domain handlers
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(handler.NewInvoiceHandler(invoiceService)).
		Register(handler.NewChargeHandler(chargeService)).
		Register(handler.NewContainerHandler(intakeService)).
		Register(handler.NewStreetTurnHandler(matchService)).
		Register(handler.NewSystemHandler(db)).
		Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// runOverdueSweep marks past-due invoices OVERDUE on a fixed interval until
// the context is cancelled.
func runOverdueSweep(ctx context.Context, invoiceService *billingapp.InvoiceService, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			marked, err := invoiceService.SweepOverdue(ctx, now)
			if err != nil {
				log.Error("Overdue sweep failed", zap.Error(err))
				continue
			}
			if marked > 0 {
				log.Info("Overdue sweep completed", zap.Int("invoices_marked", marked))
			}
		}
	}
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
