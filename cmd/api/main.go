package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/docuforge/docuforge/config"
	"github.com/docuforge/docuforge/pkg/ai/llm"
	"github.com/docuforge/docuforge/pkg/api/handlers"
	custommw "github.com/docuforge/docuforge/pkg/api/middleware"
	"github.com/docuforge/docuforge/pkg/auth"
	"github.com/docuforge/docuforge/pkg/billing"
	"github.com/docuforge/docuforge/pkg/cache"
	"github.com/docuforge/docuforge/pkg/database"
	"github.com/docuforge/docuforge/pkg/documents"
	"github.com/docuforge/docuforge/pkg/email"
	"github.com/docuforge/docuforge/pkg/esign"
	"github.com/docuforge/docuforge/pkg/jobs"
	"github.com/docuforge/docuforge/pkg/logger"
	"github.com/docuforge/docuforge/pkg/metrics"
	custommiddleware "github.com/docuforge/docuforge/pkg/middleware"
	"github.com/docuforge/docuforge/pkg/oauth"
	"github.com/docuforge/docuforge/pkg/sms"
	"github.com/docuforge/docuforge/pkg/store/postgres"
	"github.com/docuforge/docuforge/pkg/users"
)

func main() {
	// Load configuration
	cfg := config.Load()
	appLog := logger.New(cfg.LogLevel, cfg.LogFormat)
	appLog.Info("configuration loaded", "environment", cfg.APIEnvironment)

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.APIEnvironment,
			TracesSampleRate: 1.0, // Capture 100% of transactions in development, adjust in production
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.APIEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Initialize database and run migrations
	db, err := database.NewClient(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(startupCtx, db.Pool); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	// Initialize Redis cache
	redisClient, err := cache.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize Prometheus metrics
	prometheusMetrics := metrics.New()
	log.Printf("✅ Prometheus metrics initialized")

	// Initialize stores
	userStore := postgres.NewUserRepository(db.Pool)
	documentStore := postgres.NewDocumentRepository(db.Pool)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Initialize rate limiters
	globalRateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	planRateLimiter := custommiddleware.NewPlanRateLimiter() // Plan-based limits for AI endpoints
	authRateLimiter := custommiddleware.NewRateLimiter(5, 2) // 5 req/min for login
	registerRateLimiter := custommiddleware.NewRateLimiter(3, 1)
	webhookRateLimiter := custommiddleware.NewRateLimiter(100, 20) // Stripe webhooks

	// Global middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			appLog.Info("request", "method", c.Request().Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	// Sentry error tracking middleware (if configured)
	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true, // Repanic after capturing to let the Recover middleware handle it
		}))
	}

	// Prometheus metrics middleware
	e.Use(prometheusMetrics.Middleware())

	// CORS with restricted origins
	e.Use(middleware.CORSWithConfig(custommiddleware.CORSConfig(cfg.CORSAllowedOrigins)))

	e.Use(middleware.Gzip())
	e.Use(custommiddleware.SecurityHeaders(custommiddleware.DefaultSecurityHeadersConfig()))

	// Global rate limiting
	e.Use(globalRateLimiter.RateLimitMiddleware())

	// Health check endpoints (public)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"name":        "DocuForge API",
			"version":     "0.1.0",
			"status":      "running",
			"environment": cfg.APIEnvironment,
			"timestamp":   time.Now().Unix(),
		})
	})

	e.GET("/health", func(c echo.Context) error {
		// Check database connection
		if err := db.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":   "unhealthy",
				"database": "down",
			})
		}

		// Check Redis connection
		if _, err := redisClient.Redis.Ping(c.Request().Context()).Result(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status": "unhealthy",
				"cache":  "down",
			})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"status":   "healthy",
			"database": "up",
			"cache":    "up",
		})
	})

	// Prometheus metrics endpoint (public)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Initialize JWT blacklist
	tokenBlacklist := auth.NewTokenBlacklist(redisClient)

	// Initialize email service
	emailService := email.NewService(
		cfg.EmailFrom,
		cfg.EmailFromName,
		cfg.FrontendURL,
		cfg.SendGridAPIKey,
	)
	// Service logs its own initialization status

	// Initialize SMS service (console mode until a provider is configured)
	smsService := sms.NewService(nil)

	// Initialize OAuth providers
	oauthService := oauth.NewService(cfg.AppleClientID, cfg.GithubClientID, cfg.GithubClientSecret)

	// Initialize LLM client
	var llmClient llm.Client
	switch cfg.AIProvider {
	case "ollama":
		llmClient = llm.NewOllamaClient(llm.OllamaConfig{
			BaseURL: cfg.OllamaBaseURL,
			Model:   cfg.OllamaModel,
		}, nil)
		log.Printf("✅ LLM provider: ollama (%s)", cfg.OllamaModel)
	default:
		llmClient = llm.NewOpenAIClient(llm.Config{
			APIKey:    cfg.OpenAIAPIKey,
			Model:     cfg.OpenAIModel,
			MaxTokens: cfg.OpenAIMaxTokens,
		}, nil)
		log.Printf("✅ LLM provider: openai (%s)", cfg.OpenAIModel)
	}

	// Initialize e-signature provider
	var esignService *esign.Service
	if cfg.PandaDocAPIKey != "" {
		esignService = esign.NewService(esign.NewPandaDocClient(cfg.PandaDocAPIKey, cfg.PandaDocBaseURL))
		log.Printf("✅ E-signature provider: PandaDoc")
	} else {
		esignService = esign.NewService(nil)
		log.Printf("ℹ️  E-signature provider disabled, signing runs locally")
	}

	// Initialize services
	documentService := documents.NewService(documentStore, userStore, llmClient, redisClient, esignService)
	documentService.SetNotifier(emailService)
	documentService.SetRecorder(prometheusMetrics)
	userService := users.NewService(userStore)
	billingService := billing.NewService(userStore, &billing.StripeConfig{
		SecretKey:              cfg.StripeSecretKey,
		WebhookSecret:          cfg.StripeWebhookSecret,
		PricePremiumMonthly:    cfg.StripePricePremiumMonthly,
		PricePremiumAnnual:     cfg.StripePricePremiumAnnual,
		PriceEnterpriseMonthly: cfg.StripePriceEnterpriseMonth,
		PriceEnterpriseAnnual:  cfg.StripePriceEnterpriseAnnual,
		SuccessURL:             cfg.FrontendURL + "/settings/billing?success=true",
		CancelURL:              cfg.FrontendURL + "/settings/billing?canceled=true",
		BaseURL:                cfg.FrontendURL,
	})
	billingService.SetEmailSender(billing.NewEmailServiceAdapter(emailService))

	// Initialize cron manager for account maintenance jobs
	cronManager := jobs.NewCronManager(userStore, log.Default())
	if err := cronManager.SetupJobs(); err != nil {
		log.Fatalf("❌ Failed to setup cron jobs: %v", err)
	}
	cronManager.Start()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userStore, cfg, tokenBlacklist, redisClient, emailService, smsService, oauthService)
	documentHandler := handlers.NewDocumentHandler(documentService)
	userHandler := handlers.NewUserHandler(userService)
	subscriptionHandler := handlers.NewSubscriptionHandler(billingService, cfg)

	// API v1 routes
	v1 := e.Group("/api/v1")

	requireAuth := custommw.JWTMiddlewareWithBlacklist(cfg.JWTSecret, tokenBlacklist, userStore)
	requireAuthFromQuery := custommw.JWTFromQueryOrHeader(cfg.JWTSecret, tokenBlacklist, userStore)

	// Authentication routes (public)
	authRoutes := v1.Group("/auth")
	{
		// Register with strict rate limit
		authRoutes.POST("/register", authHandler.Register, registerRateLimiter.RateLimitMiddleware())
		// Login with rate limit to slow brute force
		authRoutes.POST("/login", authHandler.Login, authRateLimiter.RateLimitMiddleware())
		// External provider exchange (apple, github)
		authRoutes.POST("/login/:provider", authHandler.ProviderLogin, authRateLimiter.RateLimitMiddleware())
		// Phone login
		authRoutes.POST("/phone/start", authHandler.PhoneStart, authRateLimiter.RateLimitMiddleware())
		authRoutes.POST("/phone/verify", authHandler.PhoneVerify, authRateLimiter.RateLimitMiddleware())
		// Email verification (public)
		authRoutes.GET("/verify-email/:token", authHandler.VerifyEmail)
		// Password reset (public)
		authRoutes.POST("/forgot-password", authHandler.ForgotPassword)
		authRoutes.POST("/reset-password", authHandler.ResetPassword)

		// Session endpoints (require JWT)
		authRoutes.GET("/me", authHandler.Me, requireAuth)
		authRoutes.PUT("/me", userHandler.UpdateProfile, requireAuth)
		authRoutes.POST("/logout", authHandler.Logout, requireAuth)
		authRoutes.POST("/resend-verification", authHandler.ResendVerification, requireAuth)
		authRoutes.POST("/change-password", authHandler.ChangePassword, requireAuth)
	}

	// Public billing routes
	v1.GET("/plans", subscriptionHandler.Plans)
	// Stripe webhook with higher rate limit
	v1.POST("/webhook/stripe", subscriptionHandler.StripeWebhook, webhookRateLimiter.RateLimitMiddleware())

	// Protected routes (require JWT with blacklist validation)
	protected := v1.Group("")
	protected.Use(requireAuth)
	{
		// Document routes
		docGroup := protected.Group("/documents")
		{
			docGroup.POST("", documentHandler.Create)
			docGroup.GET("/user", documentHandler.ListMine)
			docGroup.GET("/list", documentHandler.ListAll, custommiddleware.RequireAdmin(userStore))

			// AI operations carry plan-based rate limits and need a
			// verified email so anonymous throwaway accounts cannot
			// burn LLM quota
			aiGroup := docGroup.Group("")
			aiGroup.Use(custommiddleware.RequireVerifiedEmail(userStore))
			aiGroup.Use(planRateLimiter.Middleware())
			{
				aiGroup.POST("/generate", documentHandler.Generate)
				aiGroup.POST("/generate/template", documentHandler.GenerateFromTemplate)
				aiGroup.POST("/generate/conversation", documentHandler.Converse)
				aiGroup.POST("/generate/conversation/:id", documentHandler.Converse)
				aiGroup.POST("/analyze", documentHandler.Analyze)
				aiGroup.POST("/:id/edit", documentHandler.AIEdit)
				aiGroup.POST("/:id/translate", documentHandler.Translate)
				aiGroup.POST("/:id/merge", documentHandler.Merge)
			}

			docGroup.GET("/:id", documentHandler.Get)
			docGroup.PUT("/:id", documentHandler.Update)
			docGroup.PATCH("/:id/status", documentHandler.UpdateStatus)
			docGroup.DELETE("/:id", documentHandler.Delete)

			// Version history
			docGroup.GET("/:id/versions", documentHandler.Versions)
			docGroup.POST("/:id/versions", documentHandler.RestoreVersion)
			docGroup.GET("/:id/versions/:version", documentHandler.GetVersion)

			// Sharing
			docGroup.POST("/:id/share", documentHandler.Share)
			docGroup.GET("/:id/collaborators", documentHandler.Collaborators)
			docGroup.PUT("/:id/collaborators/:userId", documentHandler.UpdateCollaborator)
			docGroup.DELETE("/:id/collaborators/:userId", documentHandler.RemoveCollaborator)

			// Signature workflow
			docGroup.POST("/:id/sign/prepare", documentHandler.PrepareSignature)
			docGroup.GET("/:id/sign/status", documentHandler.SignatureStatus)
			docGroup.POST("/:id/sign/signers", documentHandler.RecordSignerDecision)
			docGroup.POST("/:id/sign/complete", documentHandler.CompleteSigning)
		}

		// Usage endpoint
		protected.GET("/usage", userHandler.Usage)

		// Subscription routes
		subGroup := protected.Group("/subscriptions")
		{
			subGroup.GET("/my-subscription", subscriptionHandler.MySubscription)
			subGroup.POST("/subscribe", subscriptionHandler.Subscribe, custommiddleware.RequireVerifiedEmail(userStore))
			subGroup.POST("/cancel", subscriptionHandler.Cancel)
			subGroup.POST("/change-plan", subscriptionHandler.ChangePlan)
			subGroup.POST("/portal", subscriptionHandler.Portal)
		}

		// Admin user management
		adminGroup := protected.Group("/users")
		adminGroup.Use(custommiddleware.RequireAdmin(userStore))
		{
			adminGroup.GET("", userHandler.List)
			adminGroup.GET("/:id", userHandler.Get)
			adminGroup.PUT("/:id", userHandler.Update)
			adminGroup.DELETE("/:id", userHandler.Delete)
			adminGroup.POST("/:id/toggle-status", userHandler.ToggleStatus)
		}
	}

	// Export downloads accept the token as a query parameter so plain
	// browser links work
	exportGroup := v1.Group("/documents")
	exportGroup.Use(requireAuthFromQuery)
	{
		exportGroup.GET("/:id/export/txt", documentHandler.Export("txt"))
		exportGroup.GET("/:id/export/html", documentHandler.Export("html"))
	}

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 DocuForge API starting on %s", address)
	log.Printf("🔐 JWT expiration: %d hours", cfg.JWTExpirationHours)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d), login 5/min, register 3/min", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	log.Printf("⏰ Cron jobs: hourly subscription sweep, daily 4AM token purge")

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	// Stop cron jobs
	cronManager.Stop()

	// Gracefully shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}
