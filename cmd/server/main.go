package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rcmp123/backend/docs"
	"github.com/rcmp123/backend/internal/config"
	"github.com/rcmp123/backend/internal/database"
	"github.com/rcmp123/backend/internal/handlers"
	"github.com/rcmp123/backend/internal/mailer"
	mW "github.com/rcmp123/backend/internal/middleware"
	"github.com/rcmp123/backend/internal/payments"
	"github.com/rcmp123/backend/internal/ratelimit"
	"github.com/rcmp123/backend/internal/services"
	"github.com/rcmp123/backend/internal/store"
	"github.com/rcmp123/backend/internal/token"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title RCMP123 Marketplace API
// @version 1.0
// @description Two-sided marketplace backend with hosted checkout
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

func main() {
	// Initialize config
	viper.SetConfigFile(".env") // explicitly point to .env file
	viper.AutomaticEnv()        // allow environment variables to override .env

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("stripe.secret_key", "STRIPE_SECRET_KEY")
	viper.BindEnv("stripe.webhook_secret", "STRIPE_WEBHOOK_SECRET")
	viper.BindEnv("stripe.api_base", "STRIPE_API_BASE")

	viper.BindEnv("reset.token_secret", "RESET_TOKEN_SECRET")
	viper.BindEnv("smtp.host", "SMTP_SERVER")
	viper.BindEnv("smtp.port", "SMTP_PORT")
	viper.BindEnv("smtp.user", "SMTP_USER")
	viper.BindEnv("smtp.password", "SMTP_PASS")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("jwt.expiry_hours", "JWT_EXPIRY_HOURS")
	viper.BindEnv("argon2.time", "ARGON2_TIME")
	viper.BindEnv("argon2.memory", "ARGON2_MEMORY")
	viper.BindEnv("argon2.threads", "ARGON2_THREADS")
	viper.BindEnv("argon2.key_length", "ARGON2_KEY_LENGTH")
	viper.BindEnv("argon2.salt_length", "ARGON2_SALT_LENGTH")

	viper.BindEnv("images.dir", "IMAGES_DIR")
	viper.BindEnv("frontend.base_url", "FRONTEND_URL")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	viper.SetDefault("stripe.api_base", "https://api.stripe.com")
	viper.SetDefault("jwt.expiry_hours", 24)
	viper.SetDefault("argon2.time", 1)
	viper.SetDefault("argon2.memory", 64*1024)
	viper.SetDefault("argon2.threads", 4)
	viper.SetDefault("argon2.key_length", 32)
	viper.SetDefault("argon2.salt_length", 16)
	viper.SetDefault("frontend.base_url", "http://127.0.0.1:5500/frontend")

	// Initialize Swagger docs
	docs.SwaggerInfo.Title = "RCMP123 Marketplace API"
	docs.SwaggerInfo.Description = "Two-sided marketplace backend with hosted checkout"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:8080"
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	// Initialize infrastructure
	db := database.InitDatabase()
	defer db.Close()

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	accountStore := store.NewAccountStore(db)
	listingStore := store.NewListingStore(db)

	checkoutCfg := config.LoadCheckoutConfig()
	resetCfg := config.LoadResetConfig()

	paymentClient := payments.NewClient(
		viper.GetString("stripe.secret_key"),
		viper.GetString("stripe.api_base"),
		checkoutCfg.RequestTimeout,
	)

	resetTokens := token.NewResetService(
		[]byte(viper.GetString("reset.token_secret")),
		resetCfg.TokenTTL,
	)

	// Initialize services
	authService := services.NewAuthService(accountStore, redisClient)
	listingService := services.NewListingService(listingStore, accountStore)
	checkoutService := services.NewCheckoutService(listingStore, accountStore, paymentClient, checkoutCfg)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	fulfillmentService := services.NewFulfillmentService(listingStore, redisClient,
		[]byte(viper.GetString("stripe.webhook_secret")))
	webhookHandler := handlers.NewWebhookHandler(fulfillmentService)
	resetService := services.NewResetService(accountStore, resetTokens, mailer.NewSMTPMailer(), resetCfg)

	// Abuse limiter for credential endpoints, with a background reaper so the
	// per-IP map does not grow for the life of the process.
	limiter := ratelimit.New(resetCfg.RateLimitMax, resetCfg.RateLimitWindow)
	go func() {
		ticker := time.NewTicker(resetCfg.RateLimitWindow)
		defer ticker.Stop()
		for range ticker.C {
			limiter.Reap()
		}
	}()

	// Initialize auth middleware with Redis
	mW.InitAuthMiddleware(redisClient)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Access-Control-Allow-Origin"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// Buyer return pages the processor redirects to after checkout
	r.Get("/payment_success", handlers.PaymentSuccess)
	r.Get("/payment_cancel", handlers.PaymentCancel)

	// Listing images
	r.Handle("/images/*", http.StripPrefix("/images/",
		mW.StaticFileServer(viper.GetString("images.dir"))))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", authService.Register)
		r.Post("/auth/login", authService.Login)
		r.Post("/auth/logout", authService.Logout)
		r.Get("/listings", listingService.GetListings)
		r.Get("/listings/{listingId}/qr", listingService.GetListingQR)
		r.Post("/checkout", checkoutHandler.CreateCheckout)
		r.Post("/payments/webhook", webhookHandler.HandleWebhook)

		// Credential recovery, rate-limited per caller IP
		r.Group(func(r chi.Router) {
			r.Use(mW.RateLimit(limiter))
			r.Post("/auth/forgot-password", resetService.ForgotPassword)
			r.Post("/auth/reset-password", resetService.ResetPassword)
		})

		// Protected endpoints (auth required)
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			r.Get("/auth/account", authService.GetAccount)
			r.Post("/listings", listingService.CreateListing)
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
