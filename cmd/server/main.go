package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v82"
	"golang.org/x/sync/errgroup"

	"github.com/manicvanity/storefront/internal"
	"github.com/manicvanity/storefront/internal/billing"
	"github.com/manicvanity/storefront/internal/cart"
	"github.com/manicvanity/storefront/internal/cookie"
	"github.com/manicvanity/storefront/internal/email"
	"github.com/manicvanity/storefront/internal/events"
	"github.com/manicvanity/storefront/internal/handler"
	"github.com/manicvanity/storefront/internal/handler/admin"
	"github.com/manicvanity/storefront/internal/handler/storefront"
	"github.com/manicvanity/storefront/internal/handler/webhook"
	"github.com/manicvanity/storefront/internal/middleware"
	"github.com/manicvanity/storefront/internal/postgres"
	"github.com/manicvanity/storefront/internal/pricing"
	"github.com/manicvanity/storefront/internal/router"
	"github.com/manicvanity/storefront/internal/routes"
	"github.com/manicvanity/storefront/internal/service"
	"github.com/manicvanity/storefront/internal/telemetry"
	"github.com/manicvanity/storefront/internal/worker"
)

const metricsNamespace = "manicvanity"

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	flushSentry, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:              cfg.Sentry.DSN,
		Enabled:          cfg.Sentry.Enabled,
		Environment:      cfg.Sentry.Environment,
		Release:          cfg.Sentry.Release,
		SampleRate:       cfg.Sentry.SampleRate,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
	}, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer flushSentry()

	// Run migrations over database/sql, then switch to a pgx pool
	logger.Info("Running database migrations...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return fmt.Errorf("database ping failed: %w", err)
	}
	if err := internal.RunMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return fmt.Errorf("migration failed: %w", err)
	}
	sqlDB.Close()
	logger.Info("Database migrations completed successfully")

	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()
	store := postgres.NewStore(pool)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	// Metrics: one registry for HTTP, business and runtime collectors
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	business := telemetry.NewBusinessMetrics(metricsNamespace, registry)
	httpMetrics := middleware.NewMetrics(metricsNamespace, registry)

	calc, err := pricing.NewCalculator(cfg.Pricing.TaxRate, cfg.Pricing.ShippingCents)
	if err != nil {
		return fmt.Errorf("invalid pricing config: %w", err)
	}

	// Stripe, behind a circuit breaker, with traced outbound calls
	stripeProvider, err := billing.NewStripeProvider(billing.StripeConfig{
		APIKey:        cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		Backend: stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			HTTPClient: &http.Client{
				Timeout:   30 * time.Second,
				Transport: &telemetry.HTTPTransport{Transport: http.DefaultTransport},
			},
			MaxNetworkRetries: stripe.Int64(2),
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Stripe provider: %w", err)
	}
	provider := billing.NewBreakerProvider(stripeProvider, billing.BreakerConfig{
		MaxFailures: cfg.Stripe.BreakerMaxFailures,
		Timeout:     cfg.Stripe.BreakerTimeout,
	}, logger)

	publisher, err := events.Open(cfg.Events.Backend, cfg.Events.Brokers, cfg.Events.NATSURL, cfg.Events.Topic)
	if err != nil {
		return fmt.Errorf("failed to open event publisher: %w", err)
	}
	defer publisher.Close()
	logger.Info("Event publisher ready", "backend", cfg.Events.Backend)

	var sender email.Sender
	if cfg.Email.Host != "" {
		sender = email.NewSMTPSender(&email.SMTPConfig{
			Host:     cfg.Email.Host,
			Port:     int(cfg.Email.Port),
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
			FromName: cfg.Email.FromName,
		}, logger)
	} else {
		logger.Warn("SMTP_HOST not set; confirmation emails are only logged")
		sender = email.NewLogSender(logger)
	}
	emailService, err := email.NewService(sender, cfg.Email.From, cfg.Email.FromName, business)
	if err != nil {
		return fmt.Errorf("failed to initialize email service: %w", err)
	}

	// Services
	carts := cart.NewService(store, rdb, cfg.Redis.GuestCartTTL, logger)
	checkoutService := service.NewCheckoutService(store, provider, calc, service.CheckoutConfig{
		BaseURL:  cfg.BaseURL,
		Currency: cfg.Pricing.Currency,
	}, business, logger)
	paymentService := service.NewPaymentService(store, publisher, business, logger)
	orderService := service.NewOrderService(store, logger)
	demoService := service.NewDemoService(store, calc, cfg.Pricing.Currency, nil, logger)

	// Middleware
	cookies := cookie.NewConfig("", cfg.Env == "prod", cfg.SessionSecret)

	securityConfig := middleware.DefaultSecurityHeadersConfig()
	if cfg.Env == "dev" {
		securityConfig.HSTSMaxAge = 0
	}

	checkoutLimiter := middleware.NewRateLimiter(middleware.CheckoutRateLimiterConfig())
	defer checkoutLimiter.Stop()
	adminLimiter := middleware.NewRateLimiter(middleware.StrictRateLimiterConfig())
	defer adminLimiter.Stop()

	r := router.New(
		router.Recovery(logger),
		telemetry.SentryMiddleware(),
		middleware.RequestID,
		middleware.Identity(cookies),
		telemetry.SentryContextMiddleware(ownerForSentry),
		middleware.WithRequestLogger(logger),
		router.Logger(logger),
		middleware.SecurityHeaders(securityConfig),
		router.CORS([]string{cfg.BaseURL}),
		httpMetrics.Middleware,
	)

	routes.RegisterOpsRoutes(r, routes.OpsDeps{
		Health: handler.Health(map[string]handler.HealthCheck{
			"postgres": pool.Ping,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}, 2*time.Second),
		Metrics: httpMetrics.Handler(),
	})
	routes.RegisterStorefrontRoutes(r, routes.StorefrontDeps{
		CartHandler:     storefront.NewCartHandler(carts, calc, cookies, cfg.Redis.GuestCartTTL),
		CheckoutHandler: storefront.NewCheckoutHandler(checkoutService, carts),
		OrderHandler:    storefront.NewOrderHandler(orderService, carts),
		CheckoutLimiter: checkoutLimiter.Middleware,
	})
	routes.RegisterAdminRoutes(r, routes.AdminDeps{
		DemoHandler: admin.NewDemoHandler(demoService),
		Secret:      cfg.Admin.Secret,
		Limiter:     adminLimiter.Middleware,
	})
	routes.RegisterWebhookRoutes(r, routes.WebhookDeps{
		StripeHandler: webhook.NewStripeHandler(provider, paymentService, business, logger).HandleWebhook,
	})
	if cfg.Admin.Secret == "" {
		logger.Warn("ADMIN_SECRET not set; demo-data endpoints are disabled")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server", "address", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	if cfg.Worker.Enabled {
		w := worker.NewWorker(store, emailService, business, worker.Config{
			PollInterval:      cfg.Worker.PollInterval,
			MaxConcurrency:    cfg.Worker.Concurrency,
			StaleReportEvery:  cfg.Worker.StaleReportEvery,
			StalePendingAfter: cfg.Worker.StalePendingAfter,
		}, logger)
		g.Go(func() error { return w.Start(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func ownerForSentry(ctx context.Context) *telemetry.UserInfo {
	if id := middleware.GetOwnerID(ctx); id != uuid.Nil {
		return &telemetry.UserInfo{ID: id.String()}
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
